// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type PlanType string

const (
	SubscriptionStatusFreeTrial      SubscriptionStatus = "free_trial"
	SubscriptionStatusActive         SubscriptionStatus = "active"
	SubscriptionStatusExpired        SubscriptionStatus = "expired"
	SubscriptionStatusPaymentOverdue SubscriptionStatus = "payment_overdue"
	SubscriptionStatusBlocked        SubscriptionStatus = "blocked"

	PlanTypeFreeTrial  PlanType = "free_trial"
	PlanTypeBasic      PlanType = "basic"
	PlanTypePremium    PlanType = "premium"
	PlanTypeEnterprise PlanType = "enterprise"
)

// Subscription is the one-per-company billing record. Status and IsBlocked are
// owned by the lifecycle evaluator and the payment flow; nothing else writes them.
type Subscription struct {
	Id              uuid.UUID
	CompanyId       string
	PlanType        PlanType
	Status          SubscriptionStatus
	StartDate       time.Time
	EndDate         time.Time
	TrialEndDate    *time.Time
	PaymentDueDate  *time.Time
	GracePeriodEnd  *time.Time
	AmountDue       *float64
	IsBlocked       bool
	BlockedAt       *time.Time
	LastPaymentDate *time.Time
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DaysRemaining reports whole days until the current period ends, floored at zero.
func (s *Subscription) DaysRemaining(now time.Time) int {
	days := int(s.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days
}

func (s *Subscription) StatusText() string {
	switch s.Status {
	case SubscriptionStatusFreeTrial:
		return "Free Trial"
	case SubscriptionStatusActive:
		return "Active"
	case SubscriptionStatusExpired:
		return "Expired"
	case SubscriptionStatusPaymentOverdue:
		return "Payment Overdue"
	case SubscriptionStatusBlocked:
		return "Blocked"
	default:
		return "Unknown"
	}
}

func (s *Subscription) PlanText() string {
	switch s.PlanType {
	case PlanTypeFreeTrial:
		return "Free Trial"
	case PlanTypeBasic:
		return "Basic Plan"
	case PlanTypePremium:
		return "Premium Plan"
	case PlanTypeEnterprise:
		return "Enterprise Plan"
	default:
		return "Unknown Plan"
	}
}
