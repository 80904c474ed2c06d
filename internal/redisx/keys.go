package redisx

import "time"

const (
	// Dedup webhook bank: dedup:webhook:{gateway_tx_id} -> "1"
	KeyDedupWebhook = "dedup:webhook:%d"

	// Cache status order: order_status:{order_id}:{user_id} -> {"status": "..."}
	// User id ikut di key supaya fast-path cache tetap terkunci ke pemilik.
	KeyOrderStatus = "order_status:%s:%d"

	// Delayed queue expiry payment: ZSET member=payment_id, score=unix fire-at.
	KeyPaymentExpiryQueue = "payments:expiry"
)

var (
	TTLDedup       = 48 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
