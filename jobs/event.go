// Package jobs carries subscription lifecycle events from the webhook to the background
// worker over RabbitMQ.
package jobs

import "context"

const (
	EventSubscriptionExpired     = "subscription/expired"
	EventSubscriptionCancelled   = "subscription/cancelled"
	EventSubscriptionReactivated = "subscription/reactivated"
)

type EventData struct {
	TenantID string `json:"tenantId"`
	// WasDeleted is only set on reactivation.
	WasDeleted *bool `json:"wasDeleted,omitempty"`
}

type Event struct {
	Name string    `json:"name"`
	Data EventData `json:"data"`
}

// Dispatcher hands an event to the job runtime. A nil error means the runtime accepted it.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}
