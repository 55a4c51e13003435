package purger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/starterkit/internal/logger"
)

type purgeFunc func(ctx context.Context) (int64, error)

func (f purgeFunc) PurgeExpiredTokens(ctx context.Context) (int64, error) { return f(ctx) }

func TestPurger(t *testing.T) {
	t.Run("purge on every tick", func(t *testing.T) {
		var calls atomic.Int32
		p := New(10*time.Millisecond, purgeFunc(func(context.Context) (int64, error) {
			calls.Add(1)
			return 1, nil
		}), logger.NewNoOpLogger())

		ctx, cancel := context.WithCancel(t.Context())
		stopped := p.Run(ctx)

		require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()
		<-stopped
	})

	t.Run("keep going on errors", func(t *testing.T) {
		var calls atomic.Int32
		p := New(10*time.Millisecond, purgeFunc(func(context.Context) (int64, error) {
			calls.Add(1)
			return 0, errors.New("db is down")
		}), logger.NewNoOpLogger())

		ctx, cancel := context.WithCancel(t.Context())
		stopped := p.Run(ctx)

		require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()
		<-stopped
	})

	t.Run("default interval", func(t *testing.T) {
		p := New(0, purgeFunc(nil), logger.NewNoOpLogger())
		require.Equal(t, time.Hour, p.interval)
	})
}
