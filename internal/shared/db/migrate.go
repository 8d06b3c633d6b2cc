package db_conn

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationNames returns embedded migration files in apply order.
func MigrationNames() ([]string, error) {
	entries, err := MigrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies all *.sql files in internal/shared/db/migrations in lexicographic order.
// Each file runs in its own transaction. SQL files themselves MUST NOT contain BEGIN/COMMIT
// and must be idempotent (IF NOT EXISTS).
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	names, err := MigrationNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		sqlb, err := MigrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(sqlb)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s failed: %w", name, err)
		}
		log.Debug(logger.Entry{Action: "migration_applied", Message: name})
	}

	log.Info(logger.Entry{
		Action:  "db_migrated",
		Message: fmt.Sprintf("%d migrations applied", len(names)),
	})
	return nil
}
