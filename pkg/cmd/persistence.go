// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storeops/stocksync/pkg/persistence"
	"github.com/storeops/stocksync/pkg/persistence/postgresql"
)

// NewPersistence creates the store for a database URL. PostgreSQL is the only
// supported backend; the scheme check catches obviously wrong URLs before the
// driver does.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return nil, fmt.Errorf("database URL %q has no scheme", databaseURL)
	}

	switch provider {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported persistence provider: %s", provider)
	}
}
