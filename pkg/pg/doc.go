// Package pg wraps pgx pool construction, schema migration and common
// PostgreSQL error classification for the application's storage layer.
package pg
