// Package db embeds the SQL schema migrations so deployments never depend
// on migration files being present on disk.
package db

import "embed"

// Migrations holds the goose migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations passed to goose.
const MigrationsDir = "migrations"
