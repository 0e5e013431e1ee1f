package procs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPostgresPoolPanicsBeforeStart(t *testing.T) {
	p := NewPostgresPool("postgres://localhost:5432/chartos")
	require.Panics(t, func() { p.Pool() })
}

func TestRedisPoolPanicsBeforeStart(t *testing.T) {
	p := NewRedisPool("redis://localhost:6379/0")
	require.Panics(t, func() { p.Client() })
}

func TestPostgresPoolStopBeforeStartIsNoop(t *testing.T) {
	p := NewPostgresPool("postgres://localhost:5432/chartos")
	require.NoError(t, p.Stop(nil))
}

func TestRedisPoolStopBeforeStartIsNoop(t *testing.T) {
	p := NewRedisPool("redis://localhost:6379/0")
	require.NoError(t, p.Stop(nil))
}
