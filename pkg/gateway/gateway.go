// Package gateway abstracts payment providers behind a single Charge contract.
// Provider failures are reported in the Result, not as errors: the access gate's
// control flow stays exception-free on the payment path.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed charge request, rejected before any
	// provider is contacted.
	ErrValidation = errors.New("invalid payment request")

	// ErrUnsupportedMethod marks an unknown payment method.
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

const (
	MethodStripe       = "stripe"
	MethodPayPal       = "paypal"
	MethodMobileMoney  = "momo"
	MethodBankTransfer = "bank_transfer"
)

type ChargeRequest struct {
	SubscriptionId string
	CompanyId      string
	Amount         float64
	Method         string
	Details        map[string]interface{}
}

type Result struct {
	Success       bool
	TransactionId string
	Message       string
}

type Gateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
}

// Registry routes charge requests to the gateway registered for their method.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

func (r *Registry) Register(g Gateway) {
	r.gateways[g.Name()] = g
}

// Charge validates the request, resolves the provider and runs the charge.
// Validation and routing failures return an error; provider-level declines come
// back inside the Result.
func (r *Registry) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}
	g, ok := r.gateways[req.Method]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}
	return g.Charge(ctx, req)
}

// Validate checks the request shape before any processing is attempted.
func Validate(req ChargeRequest) error {
	if req.SubscriptionId == "" {
		return fmt.Errorf("%w: missing subscription id", ErrValidation)
	}
	if req.CompanyId == "" {
		return fmt.Errorf("%w: missing company id", ErrValidation)
	}
	if req.Method == "" {
		return fmt.Errorf("%w: missing payment method", ErrValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	return nil
}
