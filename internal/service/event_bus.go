// FILE: internal/service/event_bus.go
package service

import (
	"encoding/json"
	"time"

	"phluowise-billing-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// BillingEventsTopic is the in-process bus topic all billing transitions go
// through. The notifier consumes it and fans out to mail, websocket and NATS.
const BillingEventsTopic = "billing_events"

// billingEnvelope is the wire form on the watermill bus.
type billingEnvelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// PublishBillingEvent puts one event on the in-process bus.
func PublishBillingEvent(pubSub *gochannel.GoChannel, ev events.BaseEvent) error {
	payload, err := json.Marshal(billingEnvelope{
		Type:       ev.EventType(),
		OccurredAt: ev.Timestamp(),
		Data:       ev.Payload(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return pubSub.Publish(BillingEventsTopic, msg)
}

func decodeBillingEvent(payload []byte) (events.BaseEvent, error) {
	var env billingEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return events.BaseEvent{}, err
	}
	return events.BaseEvent{
		Type:       env.Type,
		Data:       env.Data,
		OccurredAt: env.OccurredAt,
	}, nil
}
