// FILE: internal/service/notifier_service.go
package service

import (
	"context"
	"log"
	"time"

	"phluowise-billing-be/internal/pkg/logger"
	"phluowise-billing-be/internal/pkg/mailer"
	"phluowise-billing-be/internal/websocket"
	"phluowise-billing-be/pkg/events"
	natsbus "phluowise-billing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NotifierService drains the in-process billing bus and fans each transition
// out to the dashboard (websocket), email and the cross-service NATS stream.
type NotifierService interface {
	Consume(ctx context.Context) error
}

type notifierService struct {
	pubSub      *gochannel.GoChannel
	hub         *websocket.Hub
	mail        mailer.IEmailService
	natsPub     *natsbus.Publisher
	notifyEmail string // ops mailbox fallback when the event carries no address
	logger      logger.ILogger
}

func NewNotifierService(
	pubSub *gochannel.GoChannel,
	hub *websocket.Hub,
	mail mailer.IEmailService,
	natsPub *natsbus.Publisher,
	notifyEmail string,
	log logger.ILogger,
) NotifierService {
	return &notifierService{
		pubSub:      pubSub,
		hub:         hub,
		mail:        mail,
		natsPub:     natsPub,
		notifyEmail: notifyEmail,
		logger:      log,
	}
}

func (ns *notifierService) Consume(ctx context.Context) error {
	messages, err := ns.pubSub.Subscribe(ctx, BillingEventsTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ns.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ns *notifierService) processMessage(ctx context.Context, msg *message.Message) {
	ev, err := decodeBillingEvent(msg.Payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal billing event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	companyId, _ := ev.Data["company_id"].(string)
	if companyId == "" {
		msg.Ack()
		return
	}

	switch ev.Type {
	case events.SubscriptionExpired, events.SubscriptionBlocked:
		ns.pushBlocked(companyId, ev)
		ns.sendExpiryMail(companyId, ev)
	case events.PaymentSucceeded:
		ns.hub.SendGate(companyId, websocket.GateMessage{State: GateStateOpen})
		ns.sendReceiptMail(companyId, ev)
	case events.AccessRestored:
		ns.hub.SendGate(companyId, websocket.GateMessage{State: GateStateOpen})
	case events.MaintenanceNotice:
		ns.hub.Broadcast("maintenance", ev.Data)
	}

	// Everything also leaves the process for sibling services.
	if ns.natsPub != nil {
		if err := ns.natsPub.Publish(ctx, ev); err != nil {
			ns.logger.Warn("Notifier", "NATS publish failed", map[string]interface{}{
				"event": ev.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}

func (ns *notifierService) pushBlocked(companyId string, ev events.BaseEvent) {
	gate := websocket.GateMessage{
		State:  GateStateBlocked,
		Reason: ev.Type,
	}

	switch ev.Type {
	case events.SubscriptionExpired:
		gate.Title = "Subscription Expired"
		gate.Message = "Your subscription has expired. Renew within the grace period to restore full access."
	case events.SubscriptionBlocked:
		gate.Title = "Payment Overdue"
		gate.Message = "Your payment is overdue. Settle the outstanding amount to restore access."
	}

	if amount, ok := ev.Data["amount_due"].(float64); ok {
		gate.AmountDue = &amount
	}

	ns.hub.SendGate(companyId, gate)
}

func (ns *notifierService) sendExpiryMail(companyId string, ev events.BaseEvent) {
	to := ns.recipient(ev)
	if to == "" {
		return
	}

	amount, _ := ev.Data["amount_due"].(float64)
	graceEnd := time.Now()
	if raw, ok := ev.Data["grace_period_end"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			graceEnd = parsed
		}
	}

	if err := ns.mail.SendExpiryNotice(to, companyId, amount, graceEnd); err != nil {
		ns.logger.Warn("Notifier", "Expiry mail failed", map[string]interface{}{
			"company_id": companyId,
			"error":      err.Error(),
		})
	}
}

func (ns *notifierService) sendReceiptMail(companyId string, ev events.BaseEvent) {
	to := ns.recipient(ev)
	if to == "" {
		return
	}

	amount, _ := ev.Data["amount"].(float64)
	externalId, _ := ev.Data["external_id"].(string)

	if err := ns.mail.SendPaymentReceipt(to, companyId, amount, externalId, ev.OccurredAt); err != nil {
		ns.logger.Warn("Notifier", "Receipt mail failed", map[string]interface{}{
			"company_id": companyId,
			"error":      err.Error(),
		})
	}
}

// recipient prefers an address on the event; billing has no tenant directory
// of its own, so the ops mailbox is the fallback.
func (ns *notifierService) recipient(ev events.BaseEvent) string {
	if email, ok := ev.Data["email"].(string); ok && email != "" {
		return email
	}
	return ns.notifyEmail
}
