package mapper

import (
	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:              s.Id,
		CompanyId:       s.CompanyId,
		PlanType:        entity.PlanType(s.PlanType),
		Status:          entity.SubscriptionStatus(s.Status),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		TrialEndDate:    s.TrialEndDate,
		PaymentDueDate:  s.PaymentDueDate,
		GracePeriodEnd:  s.GracePeriodEnd,
		AmountDue:       s.AmountDue,
		IsBlocked:       s.IsBlocked,
		BlockedAt:       s.BlockedAt,
		LastPaymentDate: s.LastPaymentDate,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:              s.Id,
		CompanyId:       s.CompanyId,
		PlanType:        string(s.PlanType),
		Status:          string(s.Status),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		TrialEndDate:    s.TrialEndDate,
		PaymentDueDate:  s.PaymentDueDate,
		GracePeriodEnd:  s.GracePeriodEnd,
		AmountDue:       s.AmountDue,
		IsBlocked:       s.IsBlocked,
		BlockedAt:       s.BlockedAt,
		LastPaymentDate: s.LastPaymentDate,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
