// Package config provides configuration loading and validation for bookshelf.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (BOOKSHELF_ prefix, plus PORT, DATABASE_URL and JWT_SECRET)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with BOOKSHELF_ prefix:
//   - server.port → BOOKSHELF_SERVER_PORT (or PORT)
//   - database.dsn → BOOKSHELF_DATABASE_DSN (or DATABASE_URL)
//   - auth.jwt_secret → BOOKSHELF_AUTH_JWT_SECRET (or JWT_SECRET)
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port and max_upload_size
//   - Service: cleanup_timeout and orphan_grace
//   - Database: type, DSN, table names and auto_migrate
//   - Storage: directory holding the uploaded files
//   - Auth: jwt_secret, token_ttl and bcrypt_cost
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
package config
