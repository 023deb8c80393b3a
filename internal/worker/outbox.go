package worker

import (
	"context"
	"time"

	"clicker_backend/internal/domain"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/repository"
	"clicker_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	outboxBatchSize   = 100
	outboxMaxAttempts = 5
)

// Outbox drains the recalc_outbox table: profit-propagation events written
// inside mutation transactions are applied here, out of the request path.
// Failed events are retried on later passes until the attempt cap.
type Outbox struct {
	repo     *repository.OutboxRepository
	social   *service.SocialService
	content  *service.ContentService
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewOutbox(db *pgxpool.Pool, social *service.SocialService, content *service.ContentService, interval time.Duration) *Outbox {
	return &Outbox{
		repo:     repository.NewOutboxRepository(db),
		social:   social,
		content:  content,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (w *Outbox) Start(ctx context.Context) {
	logger.Get().Info("outbox worker started", "interval", w.interval)
	go w.run(ctx)
}

func (w *Outbox) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logger.Get().Info("outbox worker stopped")
}

func (w *Outbox) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain processes pending events until the queue is empty or a fetch fails.
func (w *Outbox) drain(ctx context.Context) {
	for {
		events, err := w.repo.FetchPending(ctx, outboxBatchSize, outboxMaxAttempts)
		if err != nil {
			logger.Get().Error("outbox fetch failed", "err", err)
			return
		}
		if len(events) == 0 {
			return
		}
		for _, ev := range events {
			w.apply(ctx, ev)
		}
		if len(events) < outboxBatchSize {
			return
		}
	}
}

func (w *Outbox) apply(ctx context.Context, ev domain.RecalcEvent) {
	var err error
	switch ev.Kind {
	case domain.RecalcReferral:
		err = w.social.RecalcReferralProfit(ctx, ev.TargetID)
	case domain.RecalcCell:
		_, cfg := w.content.Current()
		if cfg == nil {
			return // config not loaded yet, retry later
		}
		err = w.social.RecalcCellBonus(ctx, ev.TargetID, cfg)
	default:
		err = domain.Validation("unknown outbox kind: " + ev.Kind)
	}

	// recalcs on vanished targets are done, not failed
	if err != nil && domain.IsNotFound(err) {
		err = nil
	}

	if err != nil {
		OutboxProcessed.WithLabelValues(ev.Kind, "failed").Inc()
		logger.Get().Error("outbox event failed",
			"id", ev.ID, "kind", ev.Kind, "target_id", ev.TargetID, "attempt", ev.Attempts+1, "err", err)
		if markErr := w.repo.MarkFailed(ctx, ev.ID, err.Error()); markErr != nil {
			logger.Get().Error("outbox mark failed", "id", ev.ID, "err", markErr)
		}
		return
	}

	OutboxProcessed.WithLabelValues(ev.Kind, "done").Inc()
	if markErr := w.repo.MarkDone(ctx, ev.ID); markErr != nil {
		logger.Get().Error("outbox mark done", "id", ev.ID, "err", markErr)
	}
}
