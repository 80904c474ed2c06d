package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-shop-backend.git/internal/ws"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WSHandler: upgrade ke websocket per-namespace. Token dicek oleh middleware
// RequireUser sebelum sampai sini (lewat header atau ?token=).
type WSHandler struct {
	Hub *ws.Hub
	Log *zap.Logger
}

func (h *WSHandler) Register(r chi.Router) {
	r.Get("/ws/{namespace}", h.connect)
}

func (h *WSHandler) connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var kind ws.RoomKind
	switch chi.URLParam(r, "namespace") {
	case "payment":
		kind = ws.RoomPayment
	case "product":
		kind = ws.RoomProduct
	case "notification":
		kind = ws.RoomUser
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown namespace"})
		return
	}

	ws.Serve(h.Hub, h.Log, kind, userID, w, r)
}
