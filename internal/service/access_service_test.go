package service

import (
	"testing"
	"time"

	"phluowise-billing-be/internal/entity"
)

func TestDecisionForOpenStates(t *testing.T) {
	sub := &entity.Subscription{
		Status:    entity.SubscriptionStatusFreeTrial,
		PlanType:  entity.PlanTypeFreeTrial,
		IsBlocked: false,
	}

	decision := decisionFor(sub)
	if decision.State != GateStateOpen {
		t.Errorf("State = %s, want open", decision.State)
	}
	if decision.Title != "" || decision.Message != "" {
		t.Error("open decision must carry no block copy")
	}
}

func TestDecisionForBlockedReasons(t *testing.T) {
	amount := 29.99
	blockedAt := time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		status    entity.SubscriptionStatus
		plan      entity.PlanType
		wantTitle string
	}{
		{"expired trial", entity.SubscriptionStatusExpired, entity.PlanTypeFreeTrial, "Free Trial Expired"},
		{"expired paid plan", entity.SubscriptionStatusExpired, entity.PlanTypeBasic, "Subscription Expired"},
		{"payment overdue", entity.SubscriptionStatusPaymentOverdue, entity.PlanTypeBasic, "Payment Overdue"},
		{"generic block", entity.SubscriptionStatusBlocked, entity.PlanTypeBasic, "Account Blocked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &entity.Subscription{
				Status:    tt.status,
				PlanType:  tt.plan,
				IsBlocked: true,
				AmountDue: &amount,
				BlockedAt: &blockedAt,
			}

			decision := decisionFor(sub)
			if decision.State != GateStateBlocked {
				t.Fatalf("State = %s, want blocked", decision.State)
			}
			if decision.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", decision.Title, tt.wantTitle)
			}
			if decision.Message == "" {
				t.Error("blocked decision must carry a message")
			}
			if decision.AmountDue == nil || *decision.AmountDue != amount {
				t.Errorf("AmountDue = %v, want %v", decision.AmountDue, amount)
			}
			if decision.BlockedAt == nil || !decision.BlockedAt.Equal(blockedAt) {
				t.Errorf("BlockedAt = %v, want %v", decision.BlockedAt, blockedAt)
			}
		})
	}
}

func TestMasking(t *testing.T) {
	tests := []struct {
		in   string
		fn   func(string) string
		want string
	}{
		{"0241234567", maskMobile, "*******567"},
		{"123", maskMobile, "123"},
		{"4242424242424242", maskCard, "**** **** **** 4242"},
		{"4242", maskCard, "4242"},
	}

	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubscriptionIdFromOrder(t *testing.T) {
	orderId := "PHLB-6f0d3c52-1234-4abc-8def-000000000001-1740000000"

	id, err := subscriptionIdFromOrder(orderId)
	if err != nil {
		t.Fatalf("subscriptionIdFromOrder() error = %v", err)
	}
	if id.String() != "6f0d3c52-1234-4abc-8def-000000000001" {
		t.Errorf("id = %s", id)
	}

	if _, err := subscriptionIdFromOrder("PHLB-short"); err == nil {
		t.Error("malformed order id must error")
	}
}
