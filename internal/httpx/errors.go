package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-shop-backend.git/internal/cart"
	"github.com/ariefcatur/go-shop-backend.git/internal/catalog"
	"github.com/ariefcatur/go-shop-backend.git/internal/notify"
	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/ariefcatur/go-shop-backend.git/internal/payments"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr memetakan error domain ke status + pesan stabil; error storage
// tak dikenal tidak bocor ke caller.
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, orders.ErrCartItemNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, orders.ErrPaymentNotFound),
		errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, cart.ErrSKUNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, notify.ErrNotificationNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, orders.ErrOutOfStock),
		errors.Is(err, orders.ErrDuplicateTransaction),
		errors.Is(err, orders.ErrPaymentFinalized),
		errors.Is(err, orders.ErrCannotCancel):
		code, msg = http.StatusConflict, err.Error()
	case errors.Is(err, orders.ErrMalformedReference),
		errors.Is(err, orders.ErrAmountMismatch),
		errors.Is(err, payments.ErrInvalidPayload):
		code, msg = http.StatusBadRequest, err.Error()
	}

	writeJSON(w, code, map[string]string{"error": msg})
}
