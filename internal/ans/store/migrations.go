package store

import "embed"

// Migrations holds the PostgreSQL schema, applied by internal/platform/postgres.
//
//go:embed migrations/*.sql
var Migrations embed.FS
