package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/bookshelf/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBook() clientcli.Book {
	return clientcli.Book{
		ID:               uuid.MustParse("6f1c1a52-8f5e-4a8e-9f3e-2b1d2c3d4e5f"),
		Title:            "Dune",
		Author:           "Frank Herbert",
		Category:         "scifi",
		OriginalFileName: "dune.epub",
		FileType:         "epub",
		FileSize:         2048,
		IsFavorite:       true,
		UploadedAt:       time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		_, ok := clientcli.NewFormatter(true, false).(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		hf, ok := clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatSession(t *testing.T) {
	session := clientcli.Session{Token: "tok"}
	session.User.Name = "Ada"
	session.User.Email = "ada@example.com"

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatSession(&buf, session))
	assert.Equal(t, "Logged in as Ada <ada@example.com>\n", buf.String())
	assert.NotContains(t, buf.String(), "tok")
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	book := sampleBook()
	results := []clientcli.UploadResult{
		{LocalPath: "dune.epub", Book: &book},
		{LocalPath: "broken.pdf", Err: errors.New("upload failed")},
	}

	t.Run("normal", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, results))

		output := buf.String()
		assert.Contains(t, output, "Uploaded: dune.epub -> Dune (2.0 KB)")
		assert.Contains(t, output, "ID: "+book.ID.String())
		assert.Contains(t, output, "Error: broken.pdf - upload failed")
	})

	t.Run("quiet still reports errors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, results))
		assert.NotContains(t, buf.String(), "Uploaded")
		assert.Contains(t, buf.String(), "Error: broken.pdf")
	})
}

func TestHumanFormatter_FormatDownload(t *testing.T) {
	result := &clientcli.DownloadResult{
		FileName:  "dune.epub",
		LocalPath: "out/dune.epub",
		Size:      2048,
		ETag:      "etag123",
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatDownload(&buf, result))

	output := buf.String()
	assert.Contains(t, output, "Downloaded: dune.epub -> out/dune.epub (2.0 KB)")
	assert.Contains(t, output, "ETag: etag123")
}

func TestHumanFormatter_FormatDelete(t *testing.T) {
	ok := uuid.New()
	bad := uuid.New()
	results := []clientcli.DeleteResult{
		{ID: ok, Deleted: true},
		{ID: bad, Err: errors.New("not found")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatDelete(&buf, results))

	output := buf.String()
	assert.Contains(t, output, "Deleted: "+ok.String())
	assert.Contains(t, output, "Error: "+bad.String()+" - not found")
}

func TestHumanFormatter_FormatList(t *testing.T) {
	t.Run("with books", func(t *testing.T) {
		other := sampleBook()
		other.ID = uuid.New()
		other.Title = strings.Repeat("Long title ", 10)
		other.IsFavorite = false
		other.FileSize = 1024 * 1024

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, []clientcli.Book{sampleBook(), other}))

		output := buf.String()
		assert.Contains(t, output, "TITLE")
		assert.Contains(t, output, "*Dune")
		assert.Contains(t, output, "...")
		assert.Contains(t, output, "2024-05-06 07:08:09")
		assert.Contains(t, output, "2 book(s) (1.0 MB total)")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, nil))
		assert.Equal(t, "No books found\n", buf.String())
	})
}

func TestHumanFormatter_FormatBook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatBook(&buf, sampleBook()))

	output := buf.String()
	assert.Contains(t, output, "Title:     Dune")
	assert.Contains(t, output, "Author:    Frank Herbert")
	assert.Contains(t, output, "Favorite:  true")
	assert.Contains(t, output, "File:      dune.epub (epub, 2.0 KB)")
}

func TestJSONFormatter(t *testing.T) {
	f := &clientcli.JSONFormatter{}

	t.Run("list of nil is an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatList(&buf, nil))
		assert.JSONEq(t, `[]`, buf.String())
	})

	t.Run("book uses api field names", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatBook(&buf, sampleBook()))

		var fields map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
		assert.Equal(t, "Dune", fields["title"])
		assert.Equal(t, true, fields["isFavorite"])
	})

	t.Run("upload errors become strings", func(t *testing.T) {
		book := sampleBook()
		var buf bytes.Buffer
		require.NoError(t, f.FormatUpload(&buf, []clientcli.UploadResult{
			{LocalPath: "a.epub", Book: &book},
			{LocalPath: "b.pdf", Err: errors.New("boom")},
		}))

		var out []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 2)
		assert.Contains(t, out[0], "book")
		assert.NotContains(t, out[0], "error")
		assert.Equal(t, "boom", out[1]["error"])
		assert.NotContains(t, out[1], "book")
	})

	t.Run("delete", func(t *testing.T) {
		id := uuid.New()
		var buf bytes.Buffer
		require.NoError(t, f.FormatDelete(&buf, []clientcli.DeleteResult{{ID: id, Err: errors.New("gone")}}))
		assert.JSONEq(t, `{"results":[{"id":"`+id.String()+`","deleted":false,"error":"gone"}]}`, buf.String())
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatError(&buf, errors.New("nope")))
		assert.JSONEq(t, `{"error":"nope"}`, buf.String())
	})
}

func TestFormatProfiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "home", Endpoint: "http://home:5000", Email: "ada@example.com", Token: "abcdefghijklmnop"},
		{Name: "work", Endpoint: "http://work:5000"},
	}

	t.Run("human list masks tokens", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "home", false))

		output := buf.String()
		assert.Contains(t, output, "* home")
		assert.Contains(t, output, "abcd...mnop")
		assert.NotContains(t, output, "abcdefghijklmnop")
		assert.Contains(t, output, "(not set)")
	})

	t.Run("json show reveals with flag", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileShow(&buf, profiles[0], true, true))
		assert.JSONEq(t, `{"name":"home","endpoint":"http://home:5000","email":"ada@example.com","token":"abcdefghijklmnop","default":true}`, buf.String())
	})

	t.Run("short token fully masked", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, clientcli.Profile{Name: "x", Token: "short"}, false, false))
		assert.Contains(t, buf.String(), "Token:    ********")
	})
}
