package orders

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPendingPickup  Status = "PENDING_PICKUP"
	StatusCancelled      Status = "CANCELLED"
	StatusDelivered      Status = "DELIVERED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// SUCCESS/FAILED dan CANCELLED itu terminal: tidak ada transisi keluar.
var validNext = map[Status]map[Status]bool{
	StatusPendingPayment: {StatusPendingPickup: true, StatusCancelled: true},
	StatusPendingPickup:  {StatusDelivered: true},
	StatusCancelled:      {},
	StatusDelivered:      {},
}

var validNextPayment = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending: {PaymentSuccess: true, PaymentFailed: true},
	PaymentSuccess: {},
	PaymentFailed:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	return validNextPayment[from][to]
}
