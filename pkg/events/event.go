package events

import "time"

// Billing event codes published on the bus. Downstream services (dashboard,
// notifications) key off these.
const (
	SubscriptionCreated = "SUBSCRIPTION_CREATED"
	SubscriptionExpired = "SUBSCRIPTION_EXPIRED"
	SubscriptionBlocked = "SUBSCRIPTION_BLOCKED"
	AccessRestored      = "ACCESS_RESTORED"
	PaymentSucceeded    = "PAYMENT_SUCCEEDED"
	PaymentFailed       = "PAYMENT_FAILED"
	MaintenanceNotice   = "MAINTENANCE_NOTICE"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PAYMENT_SUCCEEDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete event used throughout the billing service.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewBillingEvent stamps a billing event for a company with the current time.
func NewBillingEvent(eventType, companyId string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["company_id"] = companyId
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
