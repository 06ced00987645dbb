package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// TestPostgresStore_RoundTrip needs a disposable database, e.g.
// GIFTSHOP_POSTGRES_DSN=postgres://postgres@localhost/giftshop_test.
func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("GIFTSHOP_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GIFTSHOP_POSTGRES_DSN not set")
	}

	conn, err := pgx.Connect(context.Background(), dsn)
	require.NoError(t, err)
	_, err = conn.Exec(context.Background(), "DROP TABLE IF EXISTS invalid_ids, runs, rules, inputs, schema_version")
	require.NoError(t, err)
	require.NoError(t, conn.Close(context.Background()))

	s, err := New(Config{Path: dsn})
	require.NoError(t, err)
	defer s.Close()

	require.IsType(t, &PostgresStore{}, s)
	exerciseStore(t, s)

	_, err = s.(*PostgresStore).conn.Exec(context.Background(), "DELETE FROM invalid_ids; DELETE FROM runs; DELETE FROM rules")
	require.NoError(t, err)
	exerciseSaveRun(t, s)
}

func TestNewPostgres_BadDSN(t *testing.T) {
	_, err := NewPostgres("postgres://%zz")
	require.Error(t, err)
}
