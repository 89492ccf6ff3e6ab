// Package cmd provides shared initialization helpers for the command-line
// binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/decisionflow/decisionflow/pkg/persistence"
	"github.com/decisionflow/decisionflow/pkg/persistence/file"
	"github.com/decisionflow/decisionflow/pkg/persistence/postgres"
)

// NewPersistence selects a persistence implementation from the database URL
// scheme: "postgres://" connects to PostgreSQL, anything else is treated as
// a file-system root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch provider(databaseURL) {
	case "postgres", "postgresql":
		return postgres.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL)
	}
}

func provider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
