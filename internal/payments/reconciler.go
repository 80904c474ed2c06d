package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-shop-backend.git/internal/expiry"
	kafkax "github.com/ariefcatur/go-shop-backend.git/internal/kafka"
	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/ariefcatur/go-shop-backend.git/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const txDateLayout = "2006-01-02 15:04:05"

var ErrInvalidPayload = errors.New("invalid webhook payload")

// WebhookPayload: body notifikasi transfer bank dari gateway.
type WebhookPayload struct {
	ID              int64   `json:"id"`
	Gateway         string  `json:"gateway"`
	TransactionDate string  `json:"transactionDate"` // yyyy-MM-dd HH:mm:ss
	AccountNumber   *string `json:"accountNumber"`
	Code            *string `json:"code"`
	Content         *string `json:"content"`
	TransferType    string  `json:"transferType"` // "in" | "out"
	TransferAmount  int64   `json:"transferAmount"`
	Accumulated     int64   `json:"accumulated"`
	SubAccount      *string `json:"subAccount"`
	ReferenceCode   *string `json:"referenceCode"`
	Description     string  `json:"description"`
}

// Store: bagian repo orders yang dipakai reconciler.
type Store interface {
	HasTransaction(ctx context.Context, txID int64) (bool, error)
	GetPaymentWithOrder(ctx context.Context, paymentID int64) (*orders.Payment, *orders.Order, error)
	SettlePaymentTx(ctx context.Context, ptx orders.PaymentTransaction) (bool, error)
}

// Reconciler mencocokkan webhook bank ke Payment PENDING:
// gate idempotency -> parse referensi -> cek jumlah vs total snapshot ->
// settle atomik -> batalkan job expiry -> publish event sukses.
type Reconciler struct {
	Repo        Store
	Sched       expiry.Scheduler
	Succeeded   orders.EventPublisher // topic payment.succeeded
	Redis       *redis.Client         // optional, dedup fast-path
	Log         *zap.Logger
	ServiceName string
	RefPrefix   string
}

func (r *Reconciler) Receive(ctx context.Context, p WebhookPayload) error {
	if p.ID <= 0 {
		return ErrInvalidPayload
	}
	if p.TransferType != "in" {
		return ErrInvalidPayload
	}
	txDate, err := time.Parse(txDateLayout, p.TransactionDate)
	if err != nil {
		return ErrInvalidPayload
	}

	// fast-path dedup via Redis; kebenaran tetap di ledger DB
	dkey := fmt.Sprintf(redisx.KeyDedupWebhook, p.ID)
	if r.Redis != nil {
		if seen, _ := redisx.Exists(ctx, r.Redis, dkey); seen {
			return orders.ErrDuplicateTransaction
		}
	}
	if seen, err := r.Repo.HasTransaction(ctx, p.ID); err != nil {
		return err
	} else if seen {
		return orders.ErrDuplicateTransaction
	}

	paymentID, err := ParseReference(r.RefPrefix, p.Code, p.Content)
	if err != nil {
		return err
	}

	_, ord, err := r.Repo.GetPaymentWithOrder(ctx, paymentID)
	if err != nil {
		return err
	}

	// tagihan dihitung ulang dari snapshot order, bukan harga SKU live
	expected := orders.SnapshotTotalCents(ord.Items)
	if expected != p.TransferAmount {
		// payment dibiarkan PENDING untuk review manual, bukan auto-FAILED
		r.log().Warn("transfer amount mismatch",
			zap.Int64("payment_id", paymentID),
			zap.Int64("expected_cents", expected),
			zap.Int64("got_cents", p.TransferAmount))
		return orders.ErrAmountMismatch
	}

	settled, err := r.Repo.SettlePaymentTx(ctx, orders.PaymentTransaction{
		ID:                  p.ID,
		Gateway:             p.Gateway,
		TransactionDate:     txDate,
		AccountNumber:       p.AccountNumber,
		Code:                p.Code,
		Content:             p.Content,
		TransferType:        p.TransferType,
		TransferAmountCents: p.TransferAmount,
		AccumulatedCents:    p.Accumulated,
		SubAccount:          p.SubAccount,
		ReferenceCode:       p.ReferenceCode,
		Description:         p.Description,
		PaymentID:           paymentID,
	})
	if err != nil {
		return err
	}
	if !settled {
		// kalah balapan dengan expiry: uang masuk tapi payment sudah final
		return orders.ErrPaymentFinalized
	}

	if r.Redis != nil {
		_ = r.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
		skey := fmt.Sprintf(redisx.KeyOrderStatus, ord.ID, ord.UserID)
		_ = r.Redis.Set(ctx, skey, fmt.Sprintf(`{"status":%q}`, orders.StatusPendingPickup), redisx.TTLStatusCache).Err()
	}

	// best-effort; no-op idempotent di onExpire yang jadi safety net
	if r.Sched != nil {
		if err := r.Sched.Cancel(ctx, paymentID); err != nil {
			r.log().Warn("cancel expiry job", zap.Int64("payment_id", paymentID), zap.Error(err))
		}
	}

	if r.Succeeded != nil {
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventPaymentSucceeded,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      r.ServiceName,
			CorrelationID: ord.ID.String(),
			Payload: kafkax.MustMarshal(orders.PaymentSucceededPayload{
				PaymentID:   paymentID,
				OrderID:     ord.ID,
				UserID:      ord.UserID,
				AmountCents: p.TransferAmount,
			}),
		}
		r.Succeeded.Publish(orders.PartitionKey(ord.ID.String()), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventPaymentSucceeded)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
	return nil
}

func (r *Reconciler) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
