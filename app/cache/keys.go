package cache

import "time"

const (
	// delivery:{state}:{city}:{subtotal} -> resolved charge JSON
	KeyDelivery       = "delivery:%s:%s:%s"
	KeyDeliveryPrefix = "delivery:"

	// idem:order:create:{idempotency-key} -> order id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// dedup:webhook:{provider}:{event id}
	KeyDedupWebhook = "dedup:webhook:%s:%s"
)

var (
	TTLDelivery    = 10 * time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
