package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// JobPurge removes expired token revocations and old finished jobs.
const JobPurge = "maintenance.purge"

// TokenPurger deletes revocations that expired before the cutoff, given
// in unix milliseconds.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, before int64) (int64, error)
}

// PurgeHandler returns the handler for JobPurge. Finished jobs are kept for
// retain before they are deleted.
func PurgeHandler(repo *Repository, tokens TokenPurger, retain time.Duration, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *Job) error {
		now := repo.now()

		nTokens, err := tokens.PurgeExpiredTokens(ctx, now.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("purge tokens: %w", err)
		}
		nJobs, err := repo.PurgeDone(ctx, now.Add(-retain))
		if err != nil {
			return fmt.Errorf("purge jobs: %w", err)
		}

		logger.Info("purged", slog.Int64("tokens", nTokens), slog.Int64("jobs", nJobs))
		return nil
	}
}

// Schedule enqueues a job of type typ every interval until ctx is done.
// The first job is enqueued immediately.
func (p *WorkerPool) Schedule(ctx context.Context, typ string, interval time.Duration) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			if _, err := p.Enqueue(ctx, typ, struct{}{}, 0); err != nil {
				p.logger.Error("schedule", slog.String("type", typ), slog.Any("err", err))
			}
			select {
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
}
