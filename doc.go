// Package bookshelf implements a personal e-book library: user accounts with
// token authentication, owner-scoped book metadata and filesystem-backed
// storage of the uploaded files.
//
// # Key Components
//
//   - AccountService: registration, password login and token verification
//   - CatalogService: create, list, get, update, delete and download of books
//   - BlobStore: per-owner file layout, upload type and size policy
//   - UserRepo, BookRepo: metadata persistence (PostgreSQL, SQLite)
//   - FileStorage: physical file operations (filesystem)
//   - TokenService: signed, time-limited identity tokens
//
// # Ownership
//
// Every book operation takes the acting user's id. A book that belongs to
// someone else is reported as ErrNotFound, exactly like a missing book.
//
// # Example Usage
//
//	blobs, err := bookshelf.NewBlobStore(storage, bookshelf.DefaultMaxFileSize)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	catalog, err := bookshelf.NewCatalogService(db.Books(), blobs, bookshelf.CatalogConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	book, err := catalog.Upload(ctx, user.ID, bookshelf.BookMetadata{}, "dune.epub", r)
//
// See the http package for the REST API and the database package for the
// metadata backends.
package bookshelf
