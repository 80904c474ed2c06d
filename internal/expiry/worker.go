package expiry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Queue adalah sisi consume dari delayed queue; diimplementasi RedisScheduler.
// Schedule dipakai lagi di sini utk mengembalikan job yang handler-nya gagal.
type Queue interface {
	Due(ctx context.Context, now time.Time, limit int64) ([]int64, error)
	Claim(ctx context.Context, paymentID int64) (bool, error)
	Schedule(ctx context.Context, paymentID int64, fireAt time.Time) error
}

type Handler func(ctx context.Context, paymentID int64) error

// Worker polling job yang jatuh tempo lalu menjalankan handler expiry.
// Claim dulu baru handle, supaya dua worker tidak menjalankan job yang sama.
type Worker struct {
	Queue    Queue
	Handle   Handler
	Interval time.Duration
	Batch    int64
	Retry    time.Duration // jeda re-queue saat handler gagal
	Log      *zap.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}
	batch := w.Batch
	if batch <= 0 {
		batch = 100
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.tick(ctx, batch)
		}
	}
}

func (w *Worker) tick(ctx context.Context, batch int64) {
	due, err := w.Queue.Due(ctx, time.Now(), batch)
	if err != nil {
		w.log().Error("poll expiry queue", zap.Error(err))
		return
	}
	for _, id := range due {
		claimed, err := w.Queue.Claim(ctx, id)
		if err != nil {
			w.log().Error("claim expiry job", zap.Int64("payment_id", id), zap.Error(err))
			continue
		}
		if !claimed {
			continue // worker lain yang dapat
		}
		if err := w.Handle(ctx, id); err != nil {
			w.log().Error("expire payment", zap.Int64("payment_id", id), zap.Error(err))
			// claim sudah menghapus job dari queue; tanpa re-queue, error
			// transient (DB down) membuat order menggantung selamanya
			retry := w.Retry
			if retry <= 0 {
				retry = 30 * time.Second
			}
			if rerr := w.Queue.Schedule(ctx, id, time.Now().Add(retry)); rerr != nil {
				w.log().Error("requeue expiry job", zap.Int64("payment_id", id), zap.Error(rerr))
			}
		}
	}
}

func (w *Worker) log() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}
