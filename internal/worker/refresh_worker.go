package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher reloads the dashboard cache and archive
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshWorker periodically refreshes the cached exchange data so that
// requests are served without waiting on the exchange
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once

	mu          sync.RWMutex
	lastRefresh time.Time
	lastErr     error
}

// NewRefreshWorker creates a new refresh worker. timeout bounds a single
// refresh; zero means no bound.
func NewRefreshWorker(refresher Refresher, interval, timeout time.Duration) *RefreshWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		stopChan:  make(chan struct{}),
	}
}

// Start refreshes immediately and then on every tick until Stop is called or
// ctx is done. It blocks.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Printf("Refresh Worker started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)
		case <-ctx.Done():
			log.Println("Refresh Worker stopped")
			return
		case <-w.stopChan:
			log.Println("Refresh Worker stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (w *RefreshWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// LastRefresh returns when the last successful refresh finished and the
// error of the most recent attempt
func (w *RefreshWorker) LastRefresh() (time.Time, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastRefresh, w.lastErr
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	err := w.refresher.Refresh(ctx)

	w.mu.Lock()
	w.lastErr = err
	if err == nil {
		w.lastRefresh = time.Now()
	}
	w.mu.Unlock()

	if err != nil {
		log.Printf("Refresh Worker: refresh failed: %v", err)
		return
	}
	log.Printf("Refresh Worker: refreshed in %v", time.Since(start).Round(time.Millisecond))
}
