package lifecycle

import (
	"testing"
	"time"

	"phluowise-billing-be/internal/entity"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func trialAt(start time.Time) entity.Subscription {
	return NewFreeTrial("company-1", start)
}

func TestNewFreeTrial(t *testing.T) {
	sub := trialAt(epoch)

	if sub.Status != entity.SubscriptionStatusFreeTrial {
		t.Errorf("Status = %s, want free_trial", sub.Status)
	}
	if sub.PlanType != entity.PlanTypeFreeTrial {
		t.Errorf("PlanType = %s, want free_trial", sub.PlanType)
	}
	if sub.IsBlocked {
		t.Error("new trial must not be blocked")
	}
	wantEnd := epoch.Add(20 * 24 * time.Hour)
	if !sub.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", sub.EndDate, wantEnd)
	}
	if sub.TrialEndDate == nil || !sub.TrialEndDate.Equal(wantEnd) {
		t.Errorf("TrialEndDate = %v, want %v", sub.TrialEndDate, wantEnd)
	}
}

func TestEvaluateTransitions(t *testing.T) {
	tests := []struct {
		name        string
		at          time.Duration // offset from trial start
		wantStatus  entity.SubscriptionStatus
		wantBlocked bool
		wantChanged bool
	}{
		{
			name:        "mid trial stays open",
			at:          10 * 24 * time.Hour,
			wantStatus:  entity.SubscriptionStatusFreeTrial,
			wantBlocked: false,
			wantChanged: false,
		},
		{
			name:        "trial end boundary not yet expired",
			at:          20 * 24 * time.Hour,
			wantStatus:  entity.SubscriptionStatusFreeTrial,
			wantBlocked: false,
			wantChanged: false,
		},
		{
			name:        "just past trial end expires and blocks",
			at:          20*24*time.Hour + time.Second,
			wantStatus:  entity.SubscriptionStatusExpired,
			wantBlocked: true,
			wantChanged: true,
		},
		{
			name:        "within grace stays expired",
			at:          24 * 24 * time.Hour,
			wantStatus:  entity.SubscriptionStatusExpired,
			wantBlocked: true,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := trialAt(epoch)
			got, changed := Evaluate(sub, epoch.Add(tt.at))

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.IsBlocked != tt.wantBlocked {
				t.Errorf("IsBlocked = %v, want %v", got.IsBlocked, tt.wantBlocked)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestExpirySetsDebtAndGrace(t *testing.T) {
	sub := trialAt(epoch)
	now := epoch.Add(21 * 24 * time.Hour)

	got, changed := Evaluate(sub, now)
	if !changed {
		t.Fatal("expected a transition")
	}

	if got.AmountDue == nil || *got.AmountDue != 29.99 {
		t.Errorf("AmountDue = %v, want 29.99", got.AmountDue)
	}
	wantDue := now.Add(7 * 24 * time.Hour)
	if got.PaymentDueDate == nil || !got.PaymentDueDate.Equal(wantDue) {
		t.Errorf("PaymentDueDate = %v, want %v", got.PaymentDueDate, wantDue)
	}
	if got.GracePeriodEnd == nil || !got.GracePeriodEnd.Equal(wantDue) {
		t.Errorf("GracePeriodEnd = %v, want %v", got.GracePeriodEnd, wantDue)
	}
	if got.BlockedAt == nil || !got.BlockedAt.Equal(now) {
		t.Errorf("BlockedAt = %v, want %v", got.BlockedAt, now)
	}
}

func TestGraceElapsedGoesOverdue(t *testing.T) {
	sub := trialAt(epoch)

	// Expire first, then advance past the grace window.
	expiredSub, _ := Evaluate(sub, epoch.Add(21*24*time.Hour))
	blockedAt := *expiredSub.BlockedAt

	overdue, changed := Evaluate(expiredSub, epoch.Add(29*24*time.Hour))
	if !changed {
		t.Fatal("expected transition to payment_overdue")
	}
	if overdue.Status != entity.SubscriptionStatusPaymentOverdue {
		t.Errorf("Status = %s, want payment_overdue", overdue.Status)
	}
	if !overdue.IsBlocked {
		t.Error("overdue record must stay blocked")
	}
	// BlockedAt marks the first block, not the overdue transition.
	if overdue.BlockedAt == nil || !overdue.BlockedAt.Equal(blockedAt) {
		t.Errorf("BlockedAt = %v, want original %v", overdue.BlockedAt, blockedAt)
	}

	// Overdue is absorbing under time advance.
	later, changedAgain := Evaluate(overdue, epoch.Add(300*24*time.Hour))
	if changedAgain {
		t.Error("payment_overdue must be absorbing under time advance")
	}
	if later.Status != entity.SubscriptionStatusPaymentOverdue {
		t.Errorf("Status = %s, want payment_overdue", later.Status)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	sub := trialAt(epoch)
	now := epoch.Add(21 * 24 * time.Hour)

	first, changed := Evaluate(sub, now)
	if !changed {
		t.Fatal("expected a transition on first pass")
	}
	second, changedAgain := Evaluate(first, now)
	if changedAgain {
		t.Error("second evaluation at the same instant must be a no-op")
	}
	if second.Status != first.Status || second.IsBlocked != first.IsBlocked {
		t.Error("second evaluation altered the record")
	}
}

func TestZeroDeadlinesFailOpen(t *testing.T) {
	sub := entity.Subscription{
		CompanyId: "company-1",
		PlanType:  entity.PlanTypeBasic,
		Status:    entity.SubscriptionStatusActive,
		// EndDate intentionally zero
	}

	got, changed := Evaluate(sub, epoch.Add(1000*24*time.Hour))
	if changed {
		t.Error("zero deadline must never expire a record")
	}
	if got.IsBlocked {
		t.Error("zero deadline must never block")
	}
}

func TestApplyPaymentClearsDebt(t *testing.T) {
	sub := trialAt(epoch)
	expiredSub, _ := Evaluate(sub, epoch.Add(21*24*time.Hour))

	paidAt := epoch.Add(22 * 24 * time.Hour)
	paid := ApplyPayment(expiredSub, paidAt)

	if paid.Status != entity.SubscriptionStatusActive {
		t.Errorf("Status = %s, want active", paid.Status)
	}
	if paid.IsBlocked {
		t.Error("payment must unblock")
	}
	if paid.AmountDue != nil || paid.PaymentDueDate != nil || paid.GracePeriodEnd != nil || paid.BlockedAt != nil {
		t.Error("payment must clear debt fields")
	}
	if paid.LastPaymentDate == nil || !paid.LastPaymentDate.Equal(paidAt) {
		t.Errorf("LastPaymentDate = %v, want %v", paid.LastPaymentDate, paidAt)
	}
	wantEnd := paidAt.Add(30 * 24 * time.Hour)
	if !paid.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", paid.EndDate, wantEnd)
	}
	// Trial upgrades to the basic plan on first payment.
	if paid.PlanType != entity.PlanTypeBasic {
		t.Errorf("PlanType = %s, want basic", paid.PlanType)
	}
}

func TestActivePeriodExpires(t *testing.T) {
	sub := trialAt(epoch)
	expiredSub, _ := Evaluate(sub, epoch.Add(21*24*time.Hour))
	paid := ApplyPayment(expiredSub, epoch.Add(22*24*time.Hour))

	// Period ends 30 days after payment.
	reexpired, changed := Evaluate(paid, epoch.Add(53*24*time.Hour))
	if !changed {
		t.Fatal("expected active record to expire after its period")
	}
	if reexpired.Status != entity.SubscriptionStatusExpired {
		t.Errorf("Status = %s, want expired", reexpired.Status)
	}
	if reexpired.AmountDue == nil || *reexpired.AmountDue != 29.99 {
		t.Errorf("AmountDue = %v, want basic price 29.99", reexpired.AmountDue)
	}
}

func TestPlanPrice(t *testing.T) {
	tests := []struct {
		plan entity.PlanType
		want float64
	}{
		{entity.PlanTypeFreeTrial, 29.99},
		{entity.PlanTypeBasic, 29.99},
		{entity.PlanTypePremium, 59.99},
		{entity.PlanTypeEnterprise, 99.99},
		{entity.PlanType("unknown"), 29.99},
	}

	for _, tt := range tests {
		if got := PlanPrice(tt.plan); got != tt.want {
			t.Errorf("PlanPrice(%s) = %v, want %v", tt.plan, got, tt.want)
		}
	}
}
