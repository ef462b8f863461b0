package bookshelf_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf"
	"github.com/stretchr/testify/assert"
)

func TestIsAllowedFileType(t *testing.T) {
	tt := []struct {
		Name string
		File string
		Want bool
	}{
		{Name: "epub", File: "book.epub", Want: true},
		{Name: "pdf", File: "book.pdf", Want: true},
		{Name: "mobi", File: "book.mobi", Want: true},
		{Name: "azw", File: "book.azw", Want: true},
		{Name: "txt", File: "book.txt", Want: true},
		{Name: "doc", File: "book.doc", Want: true},
		{Name: "docx", File: "book.docx", Want: true},
		{Name: "uppercase", File: "BOOK.PDF", Want: true},
		{Name: "mixed case", File: "Book.EpUb", Want: true},
		{Name: "double extension uses last", File: "book.exe.pdf", Want: true},

		{Name: "executable", File: "virus.exe", Want: false},
		{Name: "azw3 is not azw", File: "book.azw3", Want: false},
		{Name: "no extension", File: "README", Want: false},
		{Name: "extension only in name", File: "pdf", Want: false},
		{Name: "trailing dot", File: "book.", Want: false},
		{Name: "pdf then exe", File: "book.pdf.exe", Want: false},
		{Name: "empty", File: "", Want: false},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, bookshelf.IsAllowedFileType(tc.File))
		})
	}
}

func TestFileType(t *testing.T) {
	assert.Equal(t, "epub", bookshelf.FileType("A.EPUB"))
	assert.Equal(t, "pdf", bookshelf.FileType("dir/a.b.pdf"))
	assert.Equal(t, "", bookshelf.FileType("noext"))
	assert.Len(t, bookshelf.AllowedFileTypes(), 7)
}

func TestTitleFromFileName(t *testing.T) {
	assert.Equal(t, "My Book", bookshelf.TitleFromFileName("My Book.epub"))
	assert.Equal(t, "archive.tar", bookshelf.TitleFromFileName("archive.tar.pdf"))
	assert.Equal(t, "book", bookshelf.TitleFromFileName(`C:\Users\me\book.pdf`))
	assert.Equal(t, "book", bookshelf.TitleFromFileName("../../book.txt"))
	assert.Equal(t, "", bookshelf.TitleFromFileName(".epub"))
}

func TestIsValidStoredName(t *testing.T) {
	id := uuid.NewString()

	tt := []struct {
		Name string
		In   string
		Want bool
	}{
		{Name: "generated name", In: id + ".epub", Want: true},
		{Name: "docx", In: id + ".docx", Want: true},
		{Name: "uppercase extension", In: id + ".EPUB", Want: false},
		{Name: "disallowed extension", In: id + ".exe", Want: false},
		{Name: "no extension", In: id, Want: false},
		{Name: "not a uuid", In: "book.epub", Want: false},
		{Name: "uppercase uuid", In: "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11.pdf", Want: false},
		{Name: "traversal", In: "../" + id + ".pdf", Want: false},
		{Name: "nested", In: "x/" + id + ".pdf", Want: false},
		{Name: "double extension", In: id + ".pdf.epub", Want: false},
		{Name: "empty", In: "", Want: false},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, bookshelf.IsValidStoredName(tc.In))
		})
	}
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `100\%`, bookshelf.EscapeLikePattern("100%"))
	assert.Equal(t, `a\_b`, bookshelf.EscapeLikePattern("a_b"))
	assert.Equal(t, `c:\\d`, bookshelf.EscapeLikePattern(`c:\d`))
	assert.Equal(t, "plain", bookshelf.EscapeLikePattern("plain"))
}
