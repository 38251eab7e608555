package redisx

import "time"

const (
	// Bearer session: auth:token:{token} -> user_id
	KeyAuthToken = "auth:token:%s"

	// Cache order status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Dashboard counter per artisan: artisan:orders:{artisan_id}
	KeyArtisanOrders = "artisan:orders:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
