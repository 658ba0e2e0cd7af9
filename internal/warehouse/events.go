package warehouse

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "warehouse-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id sebagai string
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderCreatedPayload struct {
	OrderID      int64       `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Items        []OrderItem `json:"items"`
	TotalPrice   float64     `json:"total_price"`
}

type RestockedItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderStatusChangedPayload struct {
	OrderID   int64           `json:"order_id"`
	OldStatus Status          `json:"old_status"`
	NewStatus Status          `json:"new_status"`
	Restocked []RestockedItem `json:"restocked,omitempty"` // terisi hanya saat cancel
}

type OrderDeletedPayload struct {
	OrderID int64 `json:"order_id"`
}
