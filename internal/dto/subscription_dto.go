// FILE: internal/dto/subscription_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatusResponse struct {
	SubscriptionId uuid.UUID  `json:"subscription_id"`
	PlanType       string     `json:"plan_type"`
	PlanName       string     `json:"plan_name"`
	Status         string     `json:"status"`
	StatusText     string     `json:"status_text"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	TrialEndDate   *time.Time `json:"trial_end_date,omitempty"`
	PaymentDueDate *time.Time `json:"payment_due_date,omitempty"`
	GracePeriodEnd *time.Time `json:"grace_period_end,omitempty"`
	AmountDue      *float64   `json:"amount_due,omitempty"`
	IsBlocked      bool       `json:"is_blocked"`
	BlockedAt      *time.Time `json:"blocked_at,omitempty"`
	DaysRemaining  int        `json:"days_remaining"`
}

type SubscriptionValidationResponse struct {
	IsValid          bool       `json:"is_valid"`
	Status           string     `json:"status"`
	RenewalRequired  bool       `json:"renewal_required"`
	CurrentPeriodEnd time.Time  `json:"current_period_end"`
	DaysRemaining    int        `json:"days_remaining"`
	GracePeriodEnd   *time.Time `json:"grace_period_end,omitempty"`
	PlanName         string     `json:"plan_name"`
}

type AccessDecisionResponse struct {
	State     string     `json:"state"` // "open" | "blocked"
	Title     string     `json:"title,omitempty"`
	Message   string     `json:"message,omitempty"`
	AmountDue *float64   `json:"amount_due,omitempty"`
	BlockedAt *time.Time `json:"blocked_at,omitempty"`
}

type OverrideRequest struct {
	Code string `json:"code" validate:"required"`
}

type AnnounceRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

// TransactionListQuery pages the payment history. Limit is clamped server-side.
type TransactionListQuery struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Status string `query:"status"`
}

// BillingStatsResponse is the support-only dashboard summary.
type BillingStatsResponse struct {
	BlockedCompanies int     `json:"blocked_companies"`
	TotalAmountDue   float64 `json:"total_amount_due"`
}
