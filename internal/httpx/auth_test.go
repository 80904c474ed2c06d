package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authedEcho(t *testing.T) http.Handler {
	return RequireUser(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFrom(r.Context())
		if !ok {
			t.Error("user id tidak ada di context")
		}
		if uid != 7 {
			t.Errorf("uid = %d, want 7", uid)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireUserBearer(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	authedEcho(t).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireUserQueryToken(t *testing.T) {
	// handshake websocket browser tidak bisa set header
	tok := signToken(t, jwt.MapClaims{"sub": float64(7), "exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/ws/payment?token="+tok, nil)
	w := httptest.NewRecorder()
	authedEcho(t).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireUserRejects(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	wrongKey := signToken(t, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()}, []byte("kunci-lain"))
	noSub := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	cases := map[string]string{
		"tanpa token":   "",
		"token expired": "Bearer " + expired,
		"kunci salah":   "Bearer " + wrongKey,
		"tanpa sub":     "Bearer " + noSub,
		"bukan jwt":     "Bearer abc.def.ghi",
	}

	h := RequireUser(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler tidak boleh terpanggil")
	}))

	for name, auth := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if auth != "" {
				req.Header.Set("Authorization", auth)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
