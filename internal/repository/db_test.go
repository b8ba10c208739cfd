package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
)

func TestHealthCheck(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectPing()
		require.NoError(t, HealthCheck(t.Context(), mock, time.Second, discardLogger()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		err = HealthCheck(t.Context(), mock, 0, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrDatabase)
		assert.Contains(t, err.Error(), "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sqlite", func(t *testing.T) {
		db, err := Open(t.Context(), Config{DSN: filepath.Join(t.TempDir(), "h.db")}, discardLogger())
		require.NoError(t, err)
		defer db.Close()
		assert.NoError(t, HealthCheck(t.Context(), db, time.Second, discardLogger()))
		assert.Equal(t, "sqlite3", db.Dialect())
	})
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(t.Context(), Config{Driver: "mysql", DSN: "x"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, dsn, path string
	}{
		{"resources/normanpd.db", "file:resources/normanpd.db?_pragma=foreign_keys(1)", "resources/normanpd.db"},
		{"file:a.db?cache=shared", "file:a.db?cache=shared&_pragma=foreign_keys(1)", "a.db"},
		{"file:resources/normanpd.db?_pragma=foreign_keys(1)", "file:resources/normanpd.db?_pragma=foreign_keys(1)", "resources/normanpd.db"},
		{":memory:", ":memory:?_pragma=foreign_keys(1)", ""},
		{"file:x?mode=memory&cache=shared", "file:x?mode=memory&cache=shared&_pragma=foreign_keys(1)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := sqliteDSN(tt.in)
			assert.Equal(t, tt.dsn, got)
			assert.Equal(t, tt.path, sqlitePath(got))
		})
	}
}
