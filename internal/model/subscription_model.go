package model

import (
	"time"

	"github.com/google/uuid"
)

// Column names mirror the legacy document collection (company_id, plan_type,
// is_blocked, payment_due_date, grace_period_end, amount_due, trial_end_date).
type Subscription struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyId       string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	PlanType        string     `gorm:"type:varchar(20);not null"`
	Status          string     `gorm:"type:varchar(20);not null"`
	StartDate       time.Time  `gorm:"not null"`
	EndDate         time.Time  `gorm:"not null"`
	TrialEndDate    *time.Time `gorm:"column:trial_end_date"`
	PaymentDueDate  *time.Time `gorm:"column:payment_due_date"`
	GracePeriodEnd  *time.Time `gorm:"column:grace_period_end"`
	AmountDue       *float64   `gorm:"type:decimal(10,2)"`
	IsBlocked       bool       `gorm:"not null;default:false"`
	BlockedAt       *time.Time `gorm:"column:blocked_at"`
	LastPaymentDate *time.Time `gorm:"column:last_payment_date"`
	Version         int        `gorm:"not null;default:1"` // optimistic concurrency token
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
