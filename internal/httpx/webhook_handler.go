package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-shop-backend.git/internal/payments"
	"github.com/go-chi/chi/v5"
)

type WebhookReconciler interface {
	Receive(ctx context.Context, p payments.WebhookPayload) error
}

// WebhookHandler menerima notifikasi transfer dari gateway bank.
// Catatan retry: gateway TIDAK boleh kirim ulang id transaksi yang sudah
// diterima sukses; retry setelah error 5xx aman karena idempotency gate.
type WebhookHandler struct {
	Rec WebhookReconciler
}

func (h *WebhookHandler) Register(r chi.Router) {
	r.Post("/payment/receiver", h.receive)
}

func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	var p payments.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Rec.Receive(ctx, p); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "payment received"})
}
