package redisx

import "time"

const (
	// Cache order utuh (JSON): order:{order_id}. Di-refresh pada create &
	// update status, dihapus pada delete. DB tetap jadi kebenaran.
	KeyOrder = "order:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
