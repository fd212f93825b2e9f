// Package lifecycle holds the subscription state machine: pure functions over a
// subscription record and a point in time. No I/O happens here; persistence and
// notification are the caller's concern.
package lifecycle

import (
	"time"

	"phluowise-billing-be/internal/entity"
)

const (
	TrialPeriod   = 20 * 24 * time.Hour
	BillingPeriod = 30 * 24 * time.Hour
	GracePeriod   = 7 * 24 * time.Hour
)

// PlanPrice is a fixed lookup, not a computation.
func PlanPrice(plan entity.PlanType) float64 {
	switch plan {
	case entity.PlanTypeFreeTrial:
		return 29.99
	case entity.PlanTypeBasic:
		return 29.99
	case entity.PlanTypePremium:
		return 59.99
	case entity.PlanTypeEnterprise:
		return 99.99
	default:
		return 29.99
	}
}

// NewFreeTrial builds the initial record for a company's first login.
func NewFreeTrial(companyId string, now time.Time) entity.Subscription {
	trialEnd := now.Add(TrialPeriod)
	return entity.Subscription{
		CompanyId:    companyId,
		PlanType:     entity.PlanTypeFreeTrial,
		Status:       entity.SubscriptionStatusFreeTrial,
		StartDate:    now,
		EndDate:      trialEnd,
		TrialEndDate: &trialEnd,
		IsBlocked:    false,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Evaluate advances the record's time-driven transitions and returns the result
// together with whether anything changed. Calling it again at the same instant
// on its own output is a no-op. Zero or missing deadlines never expire a record:
// blocking is a business decision, so malformed timestamps fail open.
func Evaluate(sub entity.Subscription, now time.Time) (entity.Subscription, bool) {
	changed := false

	switch sub.Status {
	case entity.SubscriptionStatusFreeTrial:
		deadline := sub.EndDate
		if sub.TrialEndDate != nil {
			deadline = *sub.TrialEndDate
		}
		if expired(deadline, now) {
			expire(&sub, now)
			changed = true
		}
	case entity.SubscriptionStatusActive:
		if expired(sub.EndDate, now) {
			expire(&sub, now)
			changed = true
		}
	}

	if sub.Status == entity.SubscriptionStatusExpired &&
		sub.PaymentDueDate != nil && expired(*sub.PaymentDueDate, now) {
		sub.Status = entity.SubscriptionStatusPaymentOverdue
		if !sub.IsBlocked {
			sub.IsBlocked = true
			blockedAt := now
			sub.BlockedAt = &blockedAt
		}
		changed = true
	}

	if changed {
		sub.UpdatedAt = now
	}
	return sub, changed
}

// ApplyPayment performs the event-driven transition back to active after a
// successful charge. The caller persists the result and the transaction record.
func ApplyPayment(sub entity.Subscription, now time.Time) entity.Subscription {
	sub.Status = entity.SubscriptionStatusActive
	sub.IsBlocked = false
	sub.BlockedAt = nil
	sub.AmountDue = nil
	sub.PaymentDueDate = nil
	sub.GracePeriodEnd = nil
	paidAt := now
	sub.LastPaymentDate = &paidAt
	sub.StartDate = now
	sub.EndDate = now.Add(BillingPeriod)
	if sub.PlanType == entity.PlanTypeFreeTrial {
		sub.PlanType = entity.PlanTypeBasic
	}
	sub.UpdatedAt = now
	return sub
}

func expired(deadline, now time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return now.After(deadline)
}

func expire(sub *entity.Subscription, now time.Time) {
	sub.Status = entity.SubscriptionStatusExpired
	if !sub.IsBlocked {
		sub.IsBlocked = true
		blockedAt := now
		sub.BlockedAt = &blockedAt
	}
	due := now.Add(GracePeriod)
	sub.PaymentDueDate = &due
	sub.GracePeriodEnd = &due
	amount := PlanPrice(sub.PlanType)
	sub.AmountDue = &amount
}
