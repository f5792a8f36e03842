// Package db provides the embedded database schema for the postgres backend.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables, including
// the notify triggers the order watch relies on.
//
//go:embed migrations/001_schema.sql
var Schema string
