package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop-backend.git/internal/expiry"
	kafkax "github.com/ariefcatur/go-shop-backend.git/internal/kafka"
	"github.com/ariefcatur/go-shop-backend.git/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Store adalah bagian repo yang dipakai Service utk mutasi.
type Store interface {
	CreateOrderTx(ctx context.Context, userID int64, recv Receiver, cartItemIDs []int64) (*Order, error)
	CancelOrderTx(ctx context.Context, id uuid.UUID, userID int64) (*Order, error)
	ExpirePaymentTx(ctx context.Context, paymentID int64) (*Order, bool, error)
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Repo        Store
	Sched       expiry.Scheduler
	Created     EventPublisher // topic order.created
	Cancelled   EventPublisher // topic order.cancelled
	Redis       *redis.Client  // optional, cache status
	Log         *zap.Logger
	ServiceName string
	Expiry      time.Duration
}

func (s *Service) CreateOrder(ctx context.Context, userID int64, recv Receiver, cartItemIDs []int64) (*Order, error) {
	ord, err := s.Repo.CreateOrderTx(ctx, userID, recv, cartItemIDs)
	if err != nil {
		return nil, err
	}

	// job expiry dijadwalkan setelah commit; kalau gagal, order tetap sah --
	// worker no-op path yang jadi backstop, tapi tetap dicatat.
	if err := s.Sched.Schedule(ctx, ord.PaymentID, time.Now().Add(s.Expiry)); err != nil {
		s.log().Error("schedule payment expiry", zap.Int64("payment_id", ord.PaymentID), zap.Error(err))
	}

	s.cacheStatus(ctx, ord.ID, ord.UserID, ord.Status)

	if s.Created != nil {
		evItems := make([]ItemEvent, 0, len(ord.Items))
		for _, it := range ord.Items {
			evItems = append(evItems, ItemEvent{
				SKUID: it.SKUID, Quantity: it.Quantity, PriceCents: it.SKUPriceCents, Name: it.ProductName,
			})
		}
		s.publish(s.Created, EventOrderCreated, ord.ID, OrderCreatedPayload{
			OrderID:    ord.ID,
			UserID:     ord.UserID,
			PaymentID:  ord.PaymentID,
			Items:      evItems,
			TotalCents: SnapshotTotalCents(ord.Items),
		})
	}
	return ord, nil
}

// ExpirePayment dipanggil worker saat job delayed jatuh tempo. Idempotent:
// payment yang sudah final cuma menghasilkan no-op.
func (s *Service) ExpirePayment(ctx context.Context, paymentID int64) error {
	ord, expired, err := s.Repo.ExpirePaymentTx(ctx, paymentID)
	if err != nil {
		return err
	}
	if !expired {
		s.log().Debug("expiry no-op, payment already final", zap.Int64("payment_id", paymentID))
		return nil
	}

	s.cacheStatus(ctx, ord.ID, ord.UserID, StatusCancelled)
	if s.Cancelled != nil {
		s.publish(s.Cancelled, EventOrderCancelled, ord.ID, OrderCancelledPayload{
			OrderID: ord.ID, UserID: ord.UserID, PaymentID: paymentID, Reason: CancelReasonExpired,
		})
	}
	return nil
}

func (s *Service) CancelOrder(ctx context.Context, id uuid.UUID, userID int64) (*Order, error) {
	ord, err := s.Repo.CancelOrderTx(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	// best-effort; kalau gagal, onExpire akan no-op sendiri
	if err := s.Sched.Cancel(ctx, ord.PaymentID); err != nil {
		s.log().Warn("cancel expiry job", zap.Int64("payment_id", ord.PaymentID), zap.Error(err))
	}

	s.cacheStatus(ctx, ord.ID, ord.UserID, StatusCancelled)
	if s.Cancelled != nil {
		s.publish(s.Cancelled, EventOrderCancelled, ord.ID, OrderCancelledPayload{
			OrderID: ord.ID, UserID: ord.UserID, PaymentID: ord.PaymentID, Reason: CancelReasonUser,
		})
	}
	return ord, nil
}

func (s *Service) publish(p EventPublisher, eventType string, orderID uuid.UUID, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID.String(),
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID.String()), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) cacheStatus(ctx context.Context, orderID uuid.UUID, userID int64, st Status) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID, userID)
	_ = s.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, st), redisx.TTLStatusCache).Err()
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
