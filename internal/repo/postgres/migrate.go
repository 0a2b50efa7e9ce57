package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ivankudzin/pawmatch/migrations"
)

type MigrationResult struct {
	Applied []string `json:"applied"`
	Version int64    `json:"version"`
}

// Migrate applies the embedded goose migrations. goose needs database/sql, so
// this opens a short-lived stdlib connection next to the pgx pool.
func Migrate(ctx context.Context, dsn string) (MigrationResult, error) {
	if dsn == "" {
		return MigrationResult{}, fmt.Errorf("postgres dsn is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return MigrationResult{}, mapError(err, "ping postgres")
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("goose up: %w", err)
	}

	out := MigrationResult{Applied: make([]string, 0, len(results))}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		out.Applied = append(out.Applied, res.Source.Path)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("goose version: %w", err)
	}
	out.Version = version

	return out, nil
}
