// Package database connects the catalog to one of its SQL backends.
//
// # Supported Backends
//
//   - PostgreSQL: production backend using a pgx connection pool
//   - SQLite: single-node backend using modernc.org/sqlite
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{
//	    Type:   "sqlite",
//	    DSN:    "bookshelf.db",
//	    Tables: bookshelf.Tables{Users: "users", Books: "books"},
//	}, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	users, books := db.Users(), db.Books()
//
// Connect only opens the backend. Open additionally pings it, runs
// migrations when asked to and validates the schema.
package database
