// FILE: internal/entity/payment_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string
type PaymentMethodType string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusPending   TransactionStatus = "pending"

	PaymentMethodMobileMoney PaymentMethodType = "mobile_money"
	PaymentMethodCard        PaymentMethodType = "card"
	PaymentMethodBank        PaymentMethodType = "bank_transfer"
)

// PaymentTransaction records every charge attempt against a subscription,
// successful or not.
type PaymentTransaction struct {
	Id                    uuid.UUID
	SubscriptionId        uuid.UUID
	CompanyId             string
	Amount                float64
	PaymentMethod         string
	Status                TransactionStatus
	ExternalTransactionId *string
	Message               string
	PaymentDate           time.Time
	CreatedAt             time.Time
}

// PaymentMethod is a saved, reusable payment instrument for a company.
// Card numbers are stored masked; full PANs never reach this service.
type PaymentMethod struct {
	Id         uuid.UUID
	CompanyId  string
	Name       string
	MethodType PaymentMethodType
	Network    string // MTN, Vodafone, AirtelTigo for mobile money; Visa/Mastercard for cards
	Masked     string // masked mobile number or card number
	Details    map[string]interface{}
	IsDefault  bool
	Status     string
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
