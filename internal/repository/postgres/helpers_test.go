package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/starterkit/internal/testutil"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

// Start postgres container terminated on test cleanup
func startPostgres(t *testing.T) *pgxpool.Pool {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)
	return pg.Pool
}

func withTx(pool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx)) {
	testutil.WithTx(pool, t, fn)
}
