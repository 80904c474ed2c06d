package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/ariefcatur/go-shop-backend.git/internal/payments"
	"github.com/go-chi/chi/v5"
)

type fakeReconciler struct {
	receiveFunc func(ctx context.Context, p payments.WebhookPayload) error
	got         []payments.WebhookPayload
}

func (f *fakeReconciler) Receive(ctx context.Context, p payments.WebhookPayload) error {
	f.got = append(f.got, p)
	if f.receiveFunc != nil {
		return f.receiveFunc(ctx, p)
	}
	return nil
}

const webhookBody = `{
	"id": 9001,
	"gateway": "VCB",
	"transactionDate": "2026-03-01 10:15:00",
	"code": "DH42",
	"transferType": "in",
	"transferAmount": 30000
}`

func webhookRouter(rec WebhookReconciler, apiKey string) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(apiKey))
		(&WebhookHandler{Rec: rec}).Register(r)
	})
	return r
}

func TestWebhookReceive(t *testing.T) {
	rec := &fakeReconciler{}
	r := webhookRouter(rec, "sekrit")

	req := httptest.NewRequest(http.MethodPost, "/payment/receiver", strings.NewReader(webhookBody))
	req.Header.Set("Authorization", "Apikey sekrit")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(rec.got) != 1 {
		t.Fatalf("reconciler dipanggil %d kali, want 1", len(rec.got))
	}
	p := rec.got[0]
	if p.ID != 9001 || p.TransferAmount != 30000 || p.Code == nil || *p.Code != "DH42" {
		t.Errorf("payload = %+v", p)
	}
	if !strings.Contains(w.Body.String(), "payment received") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestWebhookRequiresAPIKey(t *testing.T) {
	rec := &fakeReconciler{}
	r := webhookRouter(rec, "sekrit")

	for _, auth := range []string{"", "Apikey salah", "Bearer sekrit"} {
		req := httptest.NewRequest(http.MethodPost, "/payment/receiver", strings.NewReader(webhookBody))
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("auth %q: status = %d, want 401", auth, w.Code)
		}
	}
	if len(rec.got) != 0 {
		t.Error("request tanpa api key tidak boleh sampai ke reconciler")
	}
}

func TestWebhookErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{orders.ErrDuplicateTransaction, http.StatusConflict},
		{orders.ErrPaymentFinalized, http.StatusConflict},
		{orders.ErrMalformedReference, http.StatusBadRequest},
		{orders.ErrAmountMismatch, http.StatusBadRequest},
		{payments.ErrInvalidPayload, http.StatusBadRequest},
		{orders.ErrPaymentNotFound, http.StatusNotFound},
	}

	for _, c := range cases {
		rec := &fakeReconciler{
			receiveFunc: func(context.Context, payments.WebhookPayload) error { return c.err },
		}
		r := webhookRouter(rec, "sekrit")

		req := httptest.NewRequest(http.MethodPost, "/payment/receiver", strings.NewReader(webhookBody))
		req.Header.Set("Authorization", "Apikey sekrit")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != c.want {
			t.Errorf("%v: status = %d, want %d", c.err, w.Code, c.want)
		}
	}
}

func TestWebhookInvalidJSON(t *testing.T) {
	r := webhookRouter(&fakeReconciler{}, "sekrit")

	req := httptest.NewRequest(http.MethodPost, "/payment/receiver", strings.NewReader("{bukan json"))
	req.Header.Set("Authorization", "Apikey sekrit")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
