// FILE: internal/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type PaymentRequest struct {
	SubscriptionId string                 `json:"subscription_id" validate:"required"`
	Amount         float64                `json:"amount" validate:"required,gt=0"`
	Method         string                 `json:"method" validate:"required"`
	Details        map[string]interface{} `json:"details"`
}

type PaymentResponse struct {
	Success       bool   `json:"success"`
	TransactionId string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
}

type CheckoutRequest struct {
	SubscriptionId string `json:"subscription_id" validate:"required"`
}

type CheckoutResponse struct {
	SubscriptionId  string `json:"subscription_id"`
	SnapToken       string `json:"snap_token"`
	SnapRedirectUrl string `json:"snap_redirect_url"`
}

type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionId     string `json:"transaction_id"`
}

type TransactionResponse struct {
	Id                    uuid.UUID `json:"id"`
	SubscriptionId        uuid.UUID `json:"subscription_id"`
	Amount                float64   `json:"amount"`
	PaymentMethod         string    `json:"payment_method"`
	Status                string    `json:"status"`
	ExternalTransactionId *string   `json:"external_transaction_id,omitempty"`
	Message               string    `json:"message,omitempty"`
	PaymentDate           time.Time `json:"payment_date"`
}

type AddMobileMoneyMethodRequest struct {
	Name         string `json:"name" validate:"required"`
	Network      string `json:"network" validate:"required,oneof=MTN Vodafone AirtelTigo"`
	MobileNumber string `json:"mobile_number" validate:"required,min=9"`
}

type AddCardMethodRequest struct {
	Name       string `json:"name" validate:"required"`
	CardType   string `json:"card_type" validate:"required"`
	CardNumber string `json:"card_number" validate:"required,min=12"`
	Expiry     string `json:"expiry" validate:"required,len=5"` // MM/YY
}

type PaymentMethodResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	MethodType string     `json:"method_type"`
	Network    string     `json:"network,omitempty"`
	Masked     string     `json:"masked"`
	IsDefault  bool       `json:"is_default"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
