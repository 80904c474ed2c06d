package expiry

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scheduler menjadwalkan satu job cancel tertunda per payment PENDING.
// Cancel bersifat best-effort: kalau kalah balapan, handler onExpire yang
// idempotent jadi jaring pengaman.
type Scheduler interface {
	Schedule(ctx context.Context, paymentID int64, fireAt time.Time) error
	Cancel(ctx context.Context, paymentID int64) error
}

// RedisScheduler: ZSET dengan member = payment id, score = unix fire-at.
// Durable lintas restart proses; sama sekali tidak pegang timer in-memory.
type RedisScheduler struct {
	R   *redis.Client
	Key string
}

func (s *RedisScheduler) Schedule(ctx context.Context, paymentID int64, fireAt time.Time) error {
	return s.R.ZAdd(ctx, s.Key, redis.Z{
		Score:  float64(fireAt.Unix()),
		Member: strconv.FormatInt(paymentID, 10),
	}).Err()
}

func (s *RedisScheduler) Cancel(ctx context.Context, paymentID int64) error {
	return s.R.ZRem(ctx, s.Key, strconv.FormatInt(paymentID, 10)).Err()
}

// Due mengembalikan payment id yang sudah jatuh tempo (belum di-claim).
func (s *RedisScheduler) Due(ctx context.Context, now time.Time, limit int64) ([]int64, error) {
	members, err := s.R.ZRangeByScore(ctx, s.Key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// Claim: ZRem atomik; hanya satu worker yang dapat count 1, jadi tiap job
// jalan paling banyak sekali per schedule.
func (s *RedisScheduler) Claim(ctx context.Context, paymentID int64) (bool, error) {
	n, err := s.R.ZRem(ctx, s.Key, strconv.FormatInt(paymentID, 10)).Result()
	return n == 1, err
}
