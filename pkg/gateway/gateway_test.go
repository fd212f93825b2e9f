package gateway

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func sha512Hex(s string) string {
	return fmt.Sprintf("%x", sha512.Sum512([]byte(s)))
}

func validRequest() ChargeRequest {
	return ChargeRequest{
		SubscriptionId: "6f0d3c52-0000-0000-0000-000000000001",
		CompanyId:      "company-1",
		Amount:         29.99,
		Method:         MethodStripe,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ChargeRequest)
		wantOK bool
	}{
		{"valid request", func(r *ChargeRequest) {}, true},
		{"missing subscription id", func(r *ChargeRequest) { r.SubscriptionId = "" }, false},
		{"missing company id", func(r *ChargeRequest) { r.CompanyId = "" }, false},
		{"missing method", func(r *ChargeRequest) { r.Method = "" }, false},
		{"zero amount", func(r *ChargeRequest) { r.Amount = 0 }, false},
		{"negative amount", func(r *ChargeRequest) { r.Amount = -5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := Validate(req)
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("error %v does not wrap ErrValidation", err)
				}
			}
		})
	}
}

func TestRegistryRejectsUnknownMethod(t *testing.T) {
	registry := NewRegistry(NewStripeStub())

	req := validRequest()
	req.Method = "bitcoin"

	_, err := registry.Charge(context.Background(), req)
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Errorf("error = %v, want ErrUnsupportedMethod", err)
	}
}

func TestRegistryValidationBeforeProvider(t *testing.T) {
	// No gateways registered: validation must reject first, so the missing
	// provider is never consulted.
	registry := NewRegistry()

	req := validRequest()
	req.Amount = 0

	_, err := registry.Charge(context.Background(), req)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestStubCharge(t *testing.T) {
	registry := NewRegistry(
		NewStripeStub(),
		NewPayPalStub(),
		NewMobileMoneyStub(),
		NewBankTransferStub(),
	)

	for _, method := range []string{MethodStripe, MethodPayPal, MethodMobileMoney, MethodBankTransfer} {
		t.Run(method, func(t *testing.T) {
			req := validRequest()
			req.Method = method

			result, err := registry.Charge(context.Background(), req)
			if err != nil {
				t.Fatalf("Charge() error = %v", err)
			}
			if !result.Success {
				t.Errorf("Success = false, want true: %s", result.Message)
			}
			if !strings.HasPrefix(result.TransactionId, method+"_txn_") {
				t.Errorf("TransactionId = %q, want %s_txn_ prefix", result.TransactionId, method)
			}
		})
	}
}

func TestStubSimulatedDecline(t *testing.T) {
	registry := NewRegistry(NewStripeStub())

	req := validRequest()
	req.Details = map[string]interface{}{"simulate": "fail"}

	result, err := registry.Charge(context.Background(), req)
	if err != nil {
		t.Fatalf("Charge() error = %v; declines must come back in the Result", err)
	}
	if result.Success {
		t.Error("Success = true, want simulated decline")
	}
	if result.TransactionId != "" {
		t.Errorf("TransactionId = %q, want empty on decline", result.TransactionId)
	}
	if result.Message == "" {
		t.Error("decline must carry a provider message")
	}
}

func TestStubHonorsContextCancellation(t *testing.T) {
	stub := NewStripeStub()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stub.Charge(ctx, validRequest())
	if err == nil {
		t.Error("Charge() with cancelled context must error")
	}
}

func TestMidtransSignature(t *testing.T) {
	p := NewMidtransProvider("server-key", false)

	// SHA512("order-1" + "200" + "29990.00" + "server-key")
	valid := "order-1"
	sig := sha512Hex(valid + "200" + "29990.00" + "server-key")

	if !p.VerifySignature(valid, "200", "29990.00", sig) {
		t.Error("valid signature rejected")
	}
	if p.VerifySignature(valid, "200", "29990.00", "deadbeef") {
		t.Error("invalid signature accepted")
	}
	if p.VerifySignature("order-2", "200", "29990.00", sig) {
		t.Error("signature accepted for the wrong order")
	}
}
