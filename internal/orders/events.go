package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventPaymentSucceeded = "PaymentSucceeded"
	EventOrderCancelled   = "OrderCancelled"
)

// Alasan cancel, masuk payload OrderCancelled.
const (
	CancelReasonExpired = "PAYMENT_EXPIRED"
	CancelReasonUser    = "USER_CANCELLED"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ItemEvent struct {
	SKUID      int64  `json:"sku_id"`
	Quantity   int32  `json:"qty"`
	PriceCents int64  `json:"price_cents"`
	Name       string `json:"name"`
}

type OrderCreatedPayload struct {
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     int64       `json:"user_id"`
	PaymentID  int64       `json:"payment_id"`
	Items      []ItemEvent `json:"items"`
	TotalCents int64       `json:"total_cents"`
}

type PaymentSucceededPayload struct {
	PaymentID   int64     `json:"payment_id"`
	OrderID     uuid.UUID `json:"order_id"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
}

type OrderCancelledPayload struct {
	OrderID   uuid.UUID `json:"order_id"`
	UserID    int64     `json:"user_id"`
	PaymentID int64     `json:"payment_id"`
	Reason    string    `json:"reason"`
}
