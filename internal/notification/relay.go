package notification

import (
	"context"
	"fmt"

	"github.com/ridloal/apparel-store/internal/platform/logger"
	"github.com/robfig/cron/v3"
)

const defaultBatchSize = 50

// Relay memindahkan event dari outbox ke broker. Event yang gagal dicoba lagi
// pada putaran berikutnya sampai maxAttempts.
type Relay struct {
	outbox      OutboxRepository
	publisher   Publisher
	batchSize   int
	maxAttempts int
}

func NewRelay(outbox OutboxRepository, publisher Publisher, maxAttempts int) *Relay {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Relay{outbox: outbox, publisher: publisher, batchSize: defaultBatchSize, maxAttempts: maxAttempts}
}

// RunOnce mengirim satu batch dan mengembalikan jumlah event yang terkirim.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	tx, err := r.outbox.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("relay: begin tx failed: %w", err)
	}
	defer tx.Rollback() // Rollback jika tidak di-commit

	events, err := r.outbox.FetchPending(ctx, tx, r.batchSize, r.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("relay: fetch pending failed: %w", err)
	}

	published := 0
	for _, ev := range events {
		if pubErr := r.publisher.Publish(ctx, ev.Topic, ev.Key, ev.Payload); pubErr != nil {
			fields := logger.Fields{"id": ev.ID, "key": ev.Key, "attempt": ev.Attempts + 1}
			if ev.Attempts+1 >= r.maxAttempts {
				logger.Error("Relay: giving up on event", pubErr, fields)
			} else {
				logger.Warn("Relay: publish failed, will retry", fields)
			}
			if err := r.outbox.MarkFailed(ctx, tx, ev.ID, pubErr.Error()); err != nil {
				return published, fmt.Errorf("relay: mark failed: %w", err)
			}
			continue
		}
		if err := r.outbox.MarkPublished(ctx, tx, ev.ID); err != nil {
			return published, fmt.Errorf("relay: mark published: %w", err)
		}
		published++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("relay: commit failed: %w", err)
	}
	return published, nil
}

// Start menjadwalkan RunOnce dengan spec cron (mendukung detik).
func (r *Relay) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		n, err := r.RunOnce(context.Background())
		if err != nil {
			logger.Error("Relay: run failed", err)
			return
		}
		if n > 0 {
			logger.Info("Relay: published %d event(s)", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid relay schedule %q: %w", spec, err)
	}
	c.Start()
	logger.Info("Notification relay scheduled with spec '%s'", spec)
	return c, nil
}
