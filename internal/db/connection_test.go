package db_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/starterkit/internal/db"
	"github.com/nkiryanov/starterkit/internal/testutil"
)

func TestMigrations(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	tableExists := func(t *testing.T, name string) bool {
		var exists bool
		err := pg.Pool.QueryRow(t.Context(), "SELECT to_regclass($1) IS NOT NULL", "public."+name).Scan(&exists)
		require.NoError(t, err)
		return exists
	}

	tables := []string{"users", "refresh_tokens", "posts", "products"}
	for _, table := range tables {
		require.True(t, tableExists(t, table), "table %s must be created", table)
	}

	require.NoError(t, db.Migrate(pg.DSN), "second run has nothing to apply")

	require.NoError(t, db.MigrateDown(pg.DSN))
	for _, table := range tables {
		require.False(t, tableExists(t, table), "table %s must be dropped", table)
	}

	require.NoError(t, db.Migrate(pg.DSN), "schema can be created again")
	require.True(t, tableExists(t, "users"))
}

func TestConnect_BadDSN(t *testing.T) {
	_, err := db.Connect(t.Context(), "not a dsn ://")

	require.Error(t, err)
}
