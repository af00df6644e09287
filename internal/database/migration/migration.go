package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_books",
		SQL: `CREATE TABLE IF NOT EXISTS books (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title          TEXT        NOT NULL,
  author         TEXT        NOT NULL,
  description    TEXT        NOT NULL DEFAULT '',
  tags           JSONB       NOT NULL DEFAULT '[]'::jsonb,
  file_path      TEXT        NOT NULL UNIQUE,
  file_name      TEXT        NOT NULL,
  file_size      BIGINT      NOT NULL CHECK (file_size >= 0),
  upload_date    TIMESTAMPTZ NOT NULL DEFAULT now(),
  download_count BIGINT      DEFAULT 0 CHECK (download_count >= 0),
  uploaded_by    TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_books_upload_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_upload_date ON books (upload_date DESC, id DESC);`,
	},
	{
		Name: "create_index_books_tags",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_tags ON books USING GIN (tags jsonb_path_ops);`,
	},
}

// SQLite has no native timestamp or array types: upload_date holds unix
// nanoseconds and tags a JSON array.
var sqliteSteps = []migrationStep{
	{
		Name: "create_table_books",
		SQL: `CREATE TABLE IF NOT EXISTS books (
  id             TEXT    NOT NULL PRIMARY KEY,
  title          TEXT    NOT NULL,
  author         TEXT    NOT NULL,
  description    TEXT    NOT NULL DEFAULT '',
  tags           TEXT    NOT NULL DEFAULT '[]',
  file_path      TEXT    NOT NULL UNIQUE,
  file_name      TEXT    NOT NULL,
  file_size      INTEGER NOT NULL CHECK (file_size >= 0),
  upload_date    INTEGER NOT NULL,
  download_count INTEGER DEFAULT 0 CHECK (download_count >= 0),
  uploaded_by    TEXT    NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_books_upload_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_upload_date ON books (upload_date DESC, id DESC);`,
	},
}

var sentinelQueries = map[string]string{
	"postgres": "SELECT to_regclass('public.books') IS NOT NULL",
	"sqlite":   "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'books')",
}

var dialectSteps = map[string][]migrationStep{
	"postgres": postgresSteps,
	"sqlite":   sqliteSteps,
}

// EnsureMigrated checks if the 'books' table exists and runs migrations if it doesn't.
// dialect is the metadata store driver name ("postgres" or "sqlite").
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect string, log *slog.Logger) error {
	steps, ok := dialectSteps[dialect]
	if !ok {
		return fmt.Errorf("unsupported migration dialect: %q", dialect)
	}
	log = log.With("component", "database", "dialect", dialect)
	start := time.Now()

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQueries[dialect]).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
