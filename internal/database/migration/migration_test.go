package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureMigrated_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, EnsureMigrated(ctx, db, "sqlite", discard()))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count))
	assert.Equal(t, 0, count)

	// Second run is a no-op.
	assert.NoError(t, EnsureMigrated(ctx, db, "sqlite", discard()))
}

func TestEnsureMigrated_Postgres(t *testing.T) {
	ctx := context.Background()

	t.Run("runs all steps on a fresh database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQueries["postgres"])).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for _, step := range postgresSteps {
			mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		assert.NoError(t, EnsureMigrated(ctx, db, "postgres", discard()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips when schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQueries["postgres"])).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.NoError(t, EnsureMigrated(ctx, db, "postgres", discard()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure stops the run", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQueries["postgres"])).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(postgresSteps[0].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, "postgres", discard())
		assert.ErrorContains(t, err, "migration step create_extension_uuid_ossp failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinelQueries["postgres"])).WillReturnError(errors.New("conn reset"))

		err = EnsureMigrated(ctx, db, "postgres", discard())
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestEnsureMigrated_UnknownDialect(t *testing.T) {
	err := EnsureMigrated(context.Background(), nil, "mysql", discard())
	assert.ErrorContains(t, err, "unsupported migration dialect")
}
