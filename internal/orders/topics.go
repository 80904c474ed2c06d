package orders

const (
	TopicOrderCreated     = "order.created"
	TopicPaymentSucceeded = "payment.succeeded"
	TopicOrderCancelled   = "order.cancelled"
)

// Partition key = order_id, supaya event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
