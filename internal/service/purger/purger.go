// Package purger periodically removes refresh tokens that expired.
package purger

import (
	"context"
	"time"

	"github.com/nkiryanov/starterkit/internal/logger"
)

const defaultInterval = time.Hour

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Purger struct {
	interval time.Duration
	logger   logger.Logger
	tokens   tokenPurger
}

// New purger; not positive interval means default one (1 hour)
func New(interval time.Duration, tokens tokenPurger, logger logger.Logger) *Purger {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Purger{interval: interval, logger: logger, tokens: tokens}
}

// Run purges tokens every interval until context is done.
// Returned channel is closed when the purger stopped.
func (p *Purger) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	p.logger.Debug("Starting purger", "interval", p.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Purger stopped by context")
				return

			case <-ticker.C:
				n, err := p.tokens.PurgeExpiredTokens(ctx)
				if err != nil {
					if ctx.Err() == nil {
						p.logger.Error("Failed to purge expired refresh tokens", "error", err)
					}
					continue
				}
				p.logger.Debug("Expired refresh tokens purged", "count", n)
			}
		}
	}()

	return idleStopped
}
