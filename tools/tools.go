//go:build tools

package tools

// Pins the goose CLI for running the embedded migrations by hand
// (goose -dir internal/adapters/postgres/migrations postgres "$DATABASE_URL" status).
// Run `go mod tidy` after adding/removing tools here.

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
