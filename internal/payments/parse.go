package payments

import (
	"strconv"
	"strings"

	"github.com/ariefcatur/go-shop-backend.git/internal/orders"
)

// ParseReference mengekstrak payment id dari field code, atau kalau kosong
// dari free-text content, dengan konvensi prefix tetap (mis. "DH42" -> 42).
// Digit setelah prefix yang dipakai; sisa teks di belakangnya diabaikan.
func ParseReference(prefix string, code, content *string) (int64, error) {
	src := ""
	if code != nil && *code != "" {
		src = *code
	} else if content != nil {
		src = *content
	}
	if src == "" {
		return 0, orders.ErrMalformedReference
	}

	idx := strings.Index(src, prefix)
	if idx < 0 {
		return 0, orders.ErrMalformedReference
	}
	rest := src[idx+len(prefix):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, orders.ErrMalformedReference
	}
	id, err := strconv.ParseInt(rest[:end], 10, 64)
	if err != nil {
		return 0, orders.ErrMalformedReference
	}
	return id, nil
}
