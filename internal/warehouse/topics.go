package warehouse

import "strconv"

const (
	TopicOrderCreated = "warehouse.order.created"
	TopicOrderStatus  = "warehouse.order.status"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID int64) []byte {
	return []byte(strconv.FormatInt(orderID, 10))
}
