package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/binance-dashboard/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestRefreshWorker_RefreshesImmediatelyAndOnTick(t *testing.T) {
	r := &countingRefresher{}
	w := worker.NewRefreshWorker(r, 20*time.Millisecond, time.Second)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()
	w.Stop()
	<-done

	last, err := w.LastRefresh()
	assert.NoError(t, err)
	assert.False(t, last.IsZero())
}

func TestRefreshWorker_RecordsFailure(t *testing.T) {
	boom := errors.New("exchange down")
	r := &countingRefresher{err: boom}
	w := worker.NewRefreshWorker(r, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, err := w.LastRefresh()
		return err != nil
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	last, err := w.LastRefresh()
	assert.ErrorIs(t, err, boom)
	assert.True(t, last.IsZero())
}

func TestNewRefreshWorker_DefaultInterval(t *testing.T) {
	w := worker.NewRefreshWorker(&countingRefresher{}, 0, 0)
	w.Stop()
	w.Start(context.Background())

	_, err := w.LastRefresh()
	assert.NoError(t, err)
}
