package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// newTestRepo connects to the database named by TEST_DATABASE_URL, applies
// migrations and truncates all tables. Tests that need a live database skip
// when the variable is unset or in short mode.
func newTestRepo(t *testing.T) (coursevault.Repository, *pgxpool.Pool) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping database test: TEST_DATABASE_URL not set")
	}

	err := Migrate(connString)
	require.NoError(t, err, "Failed to apply migrations")

	pool, err := Connect(context.Background(), connString)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	truncateAll(t, pool)

	return NewWithPool(pool), pool
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	for _, table := range []string{"content", "people", "attendance", "sms_log"} {
		_, err := pool.Exec(ctx, "TRUNCATE "+table)
		require.NoError(t, err, "Failed to truncate %s table", table)
	}
}
