// Package http serves the bookshelf REST API.
//
// # Routes
//
//	POST   /api/auth/register        create an account, returns {token, user}
//	POST   /api/auth/login           returns {token, user}
//	GET    /api/books                list the caller's books (?category=, ?search=)
//	POST   /api/books/upload         multipart upload, file field "ebook" or "file"
//	GET    /api/books/{id}           one book
//	GET    /api/books/{id}/download  the book's file as an attachment
//	PUT    /api/books/{id}           partial update of title, author, category, isFavorite
//	DELETE /api/books/{id}           delete the record and its file
//	GET    /healthz                  metadata store ping
//
// Every /api/books route requires "Authorization: Bearer <token>". The user
// resolved by AuthMiddleware is available through UserFromContext.
//
// # Errors
//
// Errors are JSON objects with a stable machine code and message:
//
//	{"error": "not_found", "message": "Book not found"}
//
// HandleError maps the bookshelf sentinel errors to status codes. A book that
// belongs to someone else and a malformed id are both reported as 404.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{Health: db}, accounts, catalog)
//	srv := &stdhttp.Server{Addr: ":5000", Handler: handler.Router()}
package http
