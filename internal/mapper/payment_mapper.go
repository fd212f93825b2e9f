package mapper

import (
	"encoding/json"

	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) TransactionToEntity(t *model.PaymentTransaction) *entity.PaymentTransaction {
	if t == nil {
		return nil
	}
	return &entity.PaymentTransaction{
		Id:                    t.Id,
		SubscriptionId:        t.SubscriptionId,
		CompanyId:             t.CompanyId,
		Amount:                t.Amount,
		PaymentMethod:         t.PaymentMethod,
		Status:                entity.TransactionStatus(t.Status),
		ExternalTransactionId: t.ExternalTransactionId,
		Message:               t.Message,
		PaymentDate:           t.PaymentDate,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *PaymentMapper) TransactionToModel(t *entity.PaymentTransaction) *model.PaymentTransaction {
	if t == nil {
		return nil
	}
	return &model.PaymentTransaction{
		Id:                    t.Id,
		SubscriptionId:        t.SubscriptionId,
		CompanyId:             t.CompanyId,
		Amount:                t.Amount,
		PaymentMethod:         t.PaymentMethod,
		Status:                string(t.Status),
		ExternalTransactionId: t.ExternalTransactionId,
		Message:               t.Message,
		PaymentDate:           t.PaymentDate,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *PaymentMapper) MethodToEntity(pm *model.PaymentMethod) *entity.PaymentMethod {
	if pm == nil {
		return nil
	}
	var details map[string]interface{}
	if len(pm.Details) > 0 {
		// best effort; a corrupt blob degrades to nil details
		_ = json.Unmarshal(pm.Details, &details)
	}
	return &entity.PaymentMethod{
		Id:         pm.Id,
		CompanyId:  pm.CompanyId,
		Name:       pm.Name,
		MethodType: entity.PaymentMethodType(pm.MethodType),
		Network:    pm.Network,
		Masked:     pm.Masked,
		Details:    details,
		IsDefault:  pm.IsDefault,
		Status:     pm.Status,
		LastUsedAt: pm.LastUsedAt,
		CreatedAt:  pm.CreatedAt,
		UpdatedAt:  pm.UpdatedAt,
	}
}

func (m *PaymentMapper) MethodToModel(pm *entity.PaymentMethod) *model.PaymentMethod {
	if pm == nil {
		return nil
	}
	var details datatypes.JSON
	if pm.Details != nil {
		if raw, err := json.Marshal(pm.Details); err == nil {
			details = raw
		}
	}
	return &model.PaymentMethod{
		Id:         pm.Id,
		CompanyId:  pm.CompanyId,
		Name:       pm.Name,
		MethodType: string(pm.MethodType),
		Network:    pm.Network,
		Masked:     pm.Masked,
		Details:    details,
		IsDefault:  pm.IsDefault,
		Status:     pm.Status,
		LastUsedAt: pm.LastUsedAt,
		CreatedAt:  pm.CreatedAt,
		UpdatedAt:  pm.UpdatedAt,
	}
}
