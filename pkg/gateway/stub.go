package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// simulateKey in ChargeRequest.Details forces a declined outcome from the stub
// providers, so integration environments can exercise the failure path without
// real gateway credentials.
const simulateKey = "simulate"

// Stub simulates a payment provider. Unlike the legacy demo which rolled dice,
// the stub is deterministic: charges succeed unless the request asks to fail.
type Stub struct {
	name    string
	decline string // provider-flavored decline message
	accept  string
}

func NewStripeStub() *Stub {
	return &Stub{
		name:    MethodStripe,
		accept:  "Payment processed successfully",
		decline: "Payment failed - insufficient funds",
	}
}

func NewPayPalStub() *Stub {
	return &Stub{
		name:    MethodPayPal,
		accept:  "PayPal payment completed",
		decline: "PayPal payment declined",
	}
}

func NewMobileMoneyStub() *Stub {
	return &Stub{
		name:    MethodMobileMoney,
		accept:  "Mobile Money payment successful",
		decline: "Mobile Money payment failed - please check your balance",
	}
}

func NewBankTransferStub() *Stub {
	return &Stub{
		name:    MethodBankTransfer,
		accept:  "Bank transfer completed",
		decline: "Bank transfer failed - invalid account details",
	}
}

func (s *Stub) Name() string {
	return s.name
}

func (s *Stub) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	if v, ok := req.Details[simulateKey]; ok && v == "fail" {
		return Result{Success: false, Message: s.decline}, nil
	}

	return Result{
		Success:       true,
		TransactionId: newTransactionId(s.name),
		Message:       s.accept,
	}, nil
}

func newTransactionId(prefix string) string {
	return fmt.Sprintf("%s_txn_%d_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}
