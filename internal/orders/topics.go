package orders

const (
	TopicOrderPlaced    = "order.placed"
	TopicOrderCancelled = "order.cancelled"
)

// Partition key = order_id, so every event for one order stays ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
