package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://tasks@localhost:5432/tasks?pool_max_conns=4")
	require.NoError(t, err)
	require.Equal(t, int32(4), cfg.MaxConns)

	WithMaxConns(0)(cfg)
	WithMaxConnIdleTime(0)(cfg)
	assert.Equal(t, int32(4), cfg.MaxConns, "zero keeps the parsed value")

	WithMaxConns(12)(cfg)
	WithMaxConnIdleTime(time.Minute)(cfg)
	assert.Equal(t, int32(12), cfg.MaxConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
}
