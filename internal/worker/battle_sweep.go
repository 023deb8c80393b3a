package worker

import (
	"context"
	"time"

	"clicker_backend/internal/logger"
	"clicker_backend/internal/service"
)

// BattleSweep drives the battle lifecycle on a timer: it settles battles
// whose window has closed and opens the next scheduled one.
type BattleSweep struct {
	battles  *service.BattleService
	content  *service.ContentService
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewBattleSweep(battles *service.BattleService, content *service.ContentService, interval time.Duration) *BattleSweep {
	return &BattleSweep{
		battles:  battles,
		content:  content,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (w *BattleSweep) Start(ctx context.Context) {
	logger.Get().Info("battle sweep started", "interval", w.interval)
	go w.run(ctx)
}

// Stop signals the loop and waits for the current sweep to finish.
func (w *BattleSweep) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logger.Get().Info("battle sweep stopped")
}

func (w *BattleSweep) run(ctx context.Context) {
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
			w.sweep(ctx)
		}
	}
}

func (w *BattleSweep) sweep(ctx context.Context) {
	_, cfg := w.content.Current()
	if cfg == nil {
		return
	}
	settled, err := w.battles.Tick(ctx, cfg)
	if err != nil {
		logger.Get().Error("battle sweep failed", "err", err)
		return
	}
	if settled > 0 {
		BattlesSettled.Add(float64(settled))
	}
}
