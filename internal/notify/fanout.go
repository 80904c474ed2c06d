package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	kafkax "github.com/ariefcatur/go-shop-backend.git/internal/kafka"
	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/ariefcatur/go-shop-backend.git/internal/ws"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Store: sisi tulis repo notifikasi.
type Store interface {
	Create(ctx context.Context, userID int64, content string) (*Notification, error)
}

// Fanout: handler consumer kafka di proses API. Tiap transisi status yang
// terlihat user menghasilkan satu row notifikasi ("at least once") plus
// broadcast best-effort ke room websocket. Lewat kafka, jadi transisi yang
// terjadi di proses worker tetap sampai ke koneksi ws yang dipegang API.
type Fanout struct {
	Repo Store
	Hub  *ws.Hub
	Log  *zap.Logger
}

func (f *Fanout) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}
	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Order %s created, waiting for payment.", p.OrderID)
	if _, err := f.Repo.Create(ctx, p.UserID, content); err != nil {
		return err
	}
	f.notifyUser(p.UserID, content)
	return nil
}

func (f *Fanout) HandlePaymentSucceeded(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventPaymentSucceeded {
		return nil
	}
	p, err := kafkax.UnwrapPayload[orders.PaymentSucceededPayload](env.Payload)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Payment for order %s received, order is being prepared.", p.OrderID)
	if _, err := f.Repo.Create(ctx, p.UserID, content); err != nil {
		return err
	}
	f.Hub.Publish(ws.RoomPayment, strconv.FormatInt(p.PaymentID, 10), ws.EventPaymentSuccess, p.PaymentID)
	f.notifyUser(p.UserID, content)
	return nil
}

func (f *Fanout) HandleOrderCancelled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCancelled {
		return nil
	}
	p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Order %s was cancelled.", p.OrderID)
	if p.Reason == orders.CancelReasonExpired {
		content = fmt.Sprintf("Order %s was cancelled because payment was not received in time.", p.OrderID)
	}
	if _, err := f.Repo.Create(ctx, p.UserID, content); err != nil {
		return err
	}
	f.notifyUser(p.UserID, content)
	return nil
}

func (f *Fanout) notifyUser(userID int64, content string) {
	n := f.Hub.Publish(ws.RoomUser, strconv.FormatInt(userID, 10), ws.EventNewNotification, content)
	if f.Log != nil {
		f.Log.Debug("notify user", zap.Int64("user_id", userID), zap.Int("subscribers", n))
	}
}
