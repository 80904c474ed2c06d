package orders

import "errors"

var (
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrOutOfStock           = errors.New("out of stock")
	ErrOrderNotFound        = errors.New("order not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrMalformedReference   = errors.New("malformed payment reference")
	ErrAmountMismatch       = errors.New("transfer amount mismatch")
	ErrPaymentFinalized     = errors.New("payment already finalized")
	ErrCannotCancel         = errors.New("order cannot be cancelled in its current status")
)
