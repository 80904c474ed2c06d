package expiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeQueue struct {
	mu    sync.Mutex
	due   []int64
	owned map[int64]bool // id -> masih bisa di-claim
}

func (q *fakeQueue) Due(context.Context, time.Time, int64) ([]int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]int64(nil), q.due...), nil
}

func (q *fakeQueue) Claim(_ context.Context, id int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.owned[id] {
		return false, nil
	}
	q.owned[id] = false
	for i, d := range q.due {
		if d == id {
			q.due = append(q.due[:i], q.due[i+1:]...)
			break
		}
	}
	return true, nil
}

func (q *fakeQueue) Schedule(_ context.Context, id int64, _ time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.due = append(q.due, id)
	q.owned[id] = true
	return nil
}

func TestWorkerTick(t *testing.T) {
	q := &fakeQueue{
		due:   []int64{1, 2, 3},
		owned: map[int64]bool{1: true, 3: true}, // 2 sudah di-claim worker lain
	}

	var handled []int64
	w := &Worker{
		Queue: q,
		Handle: func(_ context.Context, paymentID int64) error {
			handled = append(handled, paymentID)
			return nil
		},
	}

	w.tick(context.Background(), 100)

	if len(handled) != 2 || handled[0] != 1 || handled[1] != 3 {
		t.Errorf("handled = %v, want [1 3]", handled)
	}
}

func TestWorkerTickHandlerErrorContinues(t *testing.T) {
	q := &fakeQueue{
		due:   []int64{1, 2},
		owned: map[int64]bool{1: true, 2: true},
	}

	var handled []int64
	w := &Worker{
		Queue: q,
		Handle: func(_ context.Context, paymentID int64) error {
			handled = append(handled, paymentID)
			if paymentID == 1 {
				return errors.New("db down")
			}
			return nil
		},
	}

	w.tick(context.Background(), 100)

	if len(handled) != 2 {
		t.Errorf("error satu job tidak boleh menghentikan batch, handled = %v", handled)
	}
}

func TestWorkerTickRequeuesOnHandlerError(t *testing.T) {
	// claim menghapus job dari queue, jadi error handler harus
	// mengembalikannya; kalau tidak, order menggantung di PENDING_PAYMENT
	q := &fakeQueue{
		due:   []int64{1},
		owned: map[int64]bool{1: true},
	}

	attempts := 0
	w := &Worker{
		Queue: q,
		Handle: func(context.Context, int64) error {
			attempts++
			if attempts == 1 {
				return errors.New("db transient outage")
			}
			return nil
		},
		Retry: time.Millisecond,
	}

	w.tick(context.Background(), 100)
	if attempts != 1 {
		t.Fatalf("attempts = %d setelah tick pertama, want 1", attempts)
	}
	q.mu.Lock()
	requeued := len(q.due) == 1 && q.due[0] == 1
	q.mu.Unlock()
	if !requeued {
		t.Fatal("job gagal harus kembali ke queue")
	}

	w.tick(context.Background(), 100)
	if attempts != 2 {
		t.Fatalf("attempts = %d setelah tick kedua, want 2", attempts)
	}
	q.mu.Lock()
	empty := len(q.due) == 0
	q.mu.Unlock()
	if !empty {
		t.Error("job sukses tidak boleh di-requeue lagi")
	}
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	q := &fakeQueue{owned: map[int64]bool{}}
	w := &Worker{
		Queue:    q,
		Handle:   func(context.Context, int64) error { return nil },
		Interval: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker tidak berhenti setelah cancel")
	}
}
