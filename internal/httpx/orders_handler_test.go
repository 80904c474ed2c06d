package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeOrderService struct {
	createFunc func(ctx context.Context, userID int64, recv orders.Receiver, cartItemIDs []int64) (*orders.Order, error)
	cancelFunc func(ctx context.Context, id uuid.UUID, userID int64) (*orders.Order, error)
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, userID int64, recv orders.Receiver, ids []int64) (*orders.Order, error) {
	return f.createFunc(ctx, userID, recv, ids)
}

func (f *fakeOrderService) CancelOrder(ctx context.Context, id uuid.UUID, userID int64) (*orders.Order, error) {
	return f.cancelFunc(ctx, id, userID)
}

type fakeOrderReader struct {
	getFunc    func(ctx context.Context, id uuid.UUID, userID int64) (*orders.Order, error)
	listFunc   func(ctx context.Context, userID int64) ([]orders.Order, error)
	statusFunc func(ctx context.Context, id uuid.UUID, userID int64) (orders.Status, error)
}

func (f *fakeOrderReader) GetByIDForUser(ctx context.Context, id uuid.UUID, userID int64) (*orders.Order, error) {
	return f.getFunc(ctx, id, userID)
}

func (f *fakeOrderReader) ListForUser(ctx context.Context, userID int64) ([]orders.Order, error) {
	return f.listFunc(ctx, userID)
}

func (f *fakeOrderReader) GetStatusForUser(ctx context.Context, id uuid.UUID, userID int64) (orders.Status, error) {
	return f.statusFunc(ctx, id, userID)
}

// asUser menyuntik user id seolah sudah lewat middleware JWT.
func asUser(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

func ordersRouter(h *OrdersHandler, userID int64) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(asUser(userID))
		h.Register(r)
	})
	return r
}

func TestCreateOrderHandler(t *testing.T) {
	ord := &orders.Order{ID: uuid.New(), UserID: 7, Status: orders.StatusPendingPayment, PaymentID: 42}
	h := &OrdersHandler{
		Svc: &fakeOrderService{
			createFunc: func(_ context.Context, userID int64, recv orders.Receiver, ids []int64) (*orders.Order, error) {
				if userID != 7 {
					t.Errorf("userID = %d, want 7", userID)
				}
				if recv.Name != "Budi" || len(ids) != 2 {
					t.Errorf("recv = %+v, ids = %v", recv, ids)
				}
				return ord, nil
			},
		},
	}
	r := ordersRouter(h, 7)

	body := `{"receiver":{"name":"Budi","phone":"0812","address":"Jl. Mawar 1"},"cartItemIds":[1,2]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got orders.Order
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != ord.ID || got.Status != orders.StatusPendingPayment {
		t.Errorf("got %+v", got)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	called := false
	h := &OrdersHandler{
		Svc: &fakeOrderService{
			createFunc: func(context.Context, int64, orders.Receiver, []int64) (*orders.Order, error) {
				called = true
				return nil, nil
			},
		},
	}
	r := ordersRouter(h, 7)

	bodies := []string{
		`{"receiver":{"name":"Budi","phone":"0812","address":"Jl. Mawar 1"},"cartItemIds":[]}`,
		`{"receiver":{"phone":"0812","address":"Jl. Mawar 1"},"cartItemIds":[1]}`,
		`{"receiver":{"name":"Budi","address":"Jl. Mawar 1"},"cartItemIds":[1]}`,
		`{"receiver":{"name":"Budi","phone":"0812"},"cartItemIds":[1]}`,
	}
	for i, b := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(b))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, w.Code)
		}
	}
	if called {
		t.Error("request invalid tidak boleh sampai ke service")
	}
}

func TestCreateOrderOutOfStock(t *testing.T) {
	h := &OrdersHandler{
		Svc: &fakeOrderService{
			createFunc: func(context.Context, int64, orders.Receiver, []int64) (*orders.Order, error) {
				return nil, orders.ErrOutOfStock
			},
		},
	}
	r := ordersRouter(h, 7)

	body := `{"receiver":{"name":"Budi","phone":"0812","address":"Jl. Mawar 1"},"cartItemIds":[1]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestGetOrderStatusFromDB(t *testing.T) {
	id := uuid.New()
	h := &OrdersHandler{
		Repo: &fakeOrderReader{
			statusFunc: func(_ context.Context, got uuid.UUID, userID int64) (orders.Status, error) {
				if got != id {
					t.Errorf("id = %s, want %s", got, id)
				}
				if userID != 7 {
					t.Errorf("userID = %d, want 7", userID)
				}
				return orders.StatusPendingPickup, nil
			},
		},
	}
	r := ordersRouter(h, 7)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+id.String()+"/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != string(orders.StatusPendingPickup) {
		t.Errorf("resp = %v", resp)
	}
}

func TestGetOrderStatusScopedToOwner(t *testing.T) {
	// user lain yang tahu UUID order tidak boleh bisa poll statusnya
	id := uuid.New()
	h := &OrdersHandler{
		Repo: &fakeOrderReader{
			statusFunc: func(_ context.Context, _ uuid.UUID, userID int64) (orders.Status, error) {
				if userID == 7 {
					return orders.StatusPendingPickup, nil
				}
				return "", orders.ErrOrderNotFound
			},
		},
	}
	r := ordersRouter(h, 99) // token milik user 99, order milik user 7

	req := httptest.NewRequest(http.MethodGet, "/orders/"+id.String()+"/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	h := &OrdersHandler{
		Repo: &fakeOrderReader{
			getFunc: func(context.Context, uuid.UUID, int64) (*orders.Order, error) {
				return nil, orders.ErrOrderNotFound
			},
		},
	}
	r := ordersRouter(h, 7)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCancelOrderHandler(t *testing.T) {
	id := uuid.New()
	ord := &orders.Order{ID: id, UserID: 7, Status: orders.StatusCancelled, PaymentID: 42}
	h := &OrdersHandler{
		Svc: &fakeOrderService{
			cancelFunc: func(_ context.Context, gotID uuid.UUID, userID int64) (*orders.Order, error) {
				if gotID != id || userID != 7 {
					t.Errorf("cancel args: id=%s user=%d", gotID, userID)
				}
				return ord, nil
			},
		},
	}
	r := ordersRouter(h, 7)

	req := httptest.NewRequest(http.MethodPut, "/orders/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCancelOrderGuard(t *testing.T) {
	h := &OrdersHandler{
		Svc: &fakeOrderService{
			cancelFunc: func(context.Context, uuid.UUID, int64) (*orders.Order, error) {
				return nil, orders.ErrCannotCancel
			},
		},
	}
	r := ordersRouter(h, 7)

	req := httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestListOrdersEmpty(t *testing.T) {
	h := &OrdersHandler{
		Repo: &fakeOrderReader{
			listFunc: func(context.Context, int64) ([]orders.Order, error) { return nil, nil },
		},
	}
	r := ordersRouter(h, 7)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}
