package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketplace/backend/internal/domain/catalog"
)

// ShopSource lists the shops whose feeds should be refreshed
type ShopSource interface {
	FindRefreshable(ctx context.Context) ([]catalog.Shop, error)
}

// RefreshTriggerConfig holds the trigger interval
type RefreshTriggerConfig struct {
	Interval time.Duration
	// RunOnStart enqueues a refresh immediately instead of waiting one interval
	RunOnStart bool
}

// RefreshTrigger enqueues a refresh job per refreshable shop on every tick
type RefreshTrigger struct {
	config    RefreshTriggerConfig
	scheduler *Scheduler
	source    ShopSource
	logger    *zap.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
}

// NewRefreshTrigger creates a new trigger
func NewRefreshTrigger(config RefreshTriggerConfig, scheduler *Scheduler, source ShopSource, logger *zap.Logger) (*RefreshTrigger, error) {
	if config.Interval <= 0 {
		return nil, ErrInvalidConfig
	}
	return &RefreshTrigger{
		config:    config,
		scheduler: scheduler,
		source:    source,
		logger:    logger,
	}, nil
}

// Start starts the trigger loop
func (t *RefreshTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.runLoop(ctx)

	t.logger.Info("Feed refresh trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop stops the trigger loop and waits for it to exit
func (t *RefreshTrigger) Stop() {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return
	}
	t.isRunning = false
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	cancel()
	<-done
	t.logger.Info("Feed refresh trigger stopped")
}

func (t *RefreshTrigger) runLoop(ctx context.Context) {
	defer close(t.done)

	if t.config.RunOnStart {
		t.trigger(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.trigger(ctx)
		}
	}
}

func (t *RefreshTrigger) trigger(ctx context.Context) {
	queued, err := t.TriggerNow(ctx)
	if err != nil {
		t.logger.Error("Feed refresh trigger failed", zap.Error(err))
		return
	}
	t.logger.Debug("Feed refresh triggered", zap.Int("queued", queued))
}

// TriggerNow enqueues a job for every refreshable shop and returns how many
// were queued. Shops that still have a job in flight are skipped.
func (t *RefreshTrigger) TriggerNow(ctx context.Context) (int, error) {
	shops, err := t.source.FindRefreshable(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, shop := range shops {
		job := NewJob(shop.ID, shop.OwnerID, shop.URL, t.scheduler.config.RetryAttempts)
		err := t.scheduler.SubmitJob(job)
		switch {
		case err == nil:
			queued++
		case errors.Is(err, ErrShopAlreadyQueued):
			t.logger.Debug("Skipping shop with refresh in flight", zap.Int64("shop_id", shop.ID))
		default:
			return queued, err
		}
	}
	return queued, nil
}
