package mapper

import (
	"testing"
	"time"

	"phluowise-billing-be/internal/entity"

	"github.com/google/uuid"
)

func TestSubscriptionRoundTrip(t *testing.T) {
	m := NewSubscriptionMapper()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(7 * 24 * time.Hour)
	amount := 59.99

	original := &entity.Subscription{
		Id:             uuid.New(),
		CompanyId:      "company-42",
		PlanType:       entity.PlanTypePremium,
		Status:         entity.SubscriptionStatusExpired,
		StartDate:      now.Add(-30 * 24 * time.Hour),
		EndDate:        now,
		PaymentDueDate: &due,
		GracePeriodEnd: &due,
		AmountDue:      &amount,
		IsBlocked:      true,
		BlockedAt:      &now,
		Version:        3,
		CreatedAt:      now.Add(-50 * 24 * time.Hour),
		UpdatedAt:      now,
	}

	got := m.ToEntity(m.ToModel(original))

	if got.Id != original.Id || got.CompanyId != original.CompanyId {
		t.Error("identity fields lost in round trip")
	}
	if got.PlanType != original.PlanType || got.Status != original.Status {
		t.Errorf("enums lost: got %s/%s", got.PlanType, got.Status)
	}
	if got.AmountDue == nil || *got.AmountDue != amount {
		t.Errorf("AmountDue = %v, want %v", got.AmountDue, amount)
	}
	if got.PaymentDueDate == nil || !got.PaymentDueDate.Equal(due) {
		t.Errorf("PaymentDueDate = %v, want %v", got.PaymentDueDate, due)
	}
	if !got.IsBlocked || got.BlockedAt == nil {
		t.Error("block flags lost in round trip")
	}
	if got.Version != 3 {
		t.Errorf("Version = %d, want 3", got.Version)
	}
}

func TestSubscriptionMapperNil(t *testing.T) {
	m := NewSubscriptionMapper()
	if m.ToEntity(nil) != nil || m.ToModel(nil) != nil {
		t.Error("nil must map to nil")
	}
}
