package payments

import (
	"errors"
	"testing"

	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
)

func strp(s string) *string { return &s }

func TestParseReference(t *testing.T) {
	cases := []struct {
		name    string
		code    *string
		content *string
		want    int64
		wantErr bool
	}{
		{"code biasa", strp("DH42"), nil, 42, false},
		{"code menang atas content", strp("DH42"), strp("DH99"), 42, false},
		{"fallback ke content", nil, strp("transfer utk DH123 terima kasih"), 123, false},
		{"code kosong fallback", strp(""), strp("DH7"), 7, false},
		{"trailing text diabaikan", strp("DH55-REF"), nil, 55, false},
		{"tanpa prefix", strp("42"), nil, 0, true},
		{"prefix tanpa digit", strp("DHX"), nil, 0, true},
		{"dua-duanya kosong", nil, nil, 0, true},
		{"content tanpa referensi", nil, strp("pembayaran tagihan"), 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseReference("DH", c.code, c.content)
			if c.wantErr {
				if !errors.Is(err, orders.ErrMalformedReference) {
					t.Fatalf("err = %v, want ErrMalformedReference", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReference: %v", err)
			}
			if got != c.want {
				t.Errorf("got %d, want %d", got, c.want)
			}
		})
	}
}
