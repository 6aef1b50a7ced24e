package storage

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the embedded DDL shared by the sqlite and postgres drivers.
func Schema() string {
	return schemaSQL
}

// Apply creates every table and index that does not exist yet. Statements
// run in order inside one transaction.
func Apply(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("storage: database not configured")
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, statement := range statements(schemaSQL) {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return fmt.Errorf("storage: apply schema: %w", err)
			}
		}
		return nil
	})
}

func statements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
