package services

// Broadcaster pushes live updates to admin dashboards.
type Broadcaster interface {
	Broadcast(eventType string, data any)
}

const (
	BroadcastOrderCreated = "order.created"
	BroadcastOrderUpdated = "order.updated"
)
