package implementation

import (
	"context"
	"errors"

	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/mapper"
	"phluowise-billing-be/internal/model"
	"phluowise-billing-be/internal/repository/contract"
	"phluowise-billing-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *PaymentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Transactions

func (r *PaymentRepositoryImpl) CreateTransaction(ctx context.Context, tx *entity.PaymentTransaction) error {
	m := r.mapper.TransactionToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.TransactionToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) FindAllTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentTransaction, error) {
	var models []*model.PaymentTransaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaymentTransaction, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TransactionToEntity(m)
	}
	return entities, nil
}

func (r *PaymentRepositoryImpl) GetTotalPaid(ctx context.Context, companyId string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("company_id = ? AND status = ?", companyId, string(entity.TransactionStatusCompleted)).
		Scan(&total).Error
	return total, err
}

// Saved payment methods

func (r *PaymentRepositoryImpl) CreateMethod(ctx context.Context, method *entity.PaymentMethod) error {
	m := r.mapper.MethodToModel(method)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*method = *r.mapper.MethodToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) UpdateMethod(ctx context.Context, method *entity.PaymentMethod) error {
	m := r.mapper.MethodToModel(method)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*method = *r.mapper.MethodToEntity(m)
	return nil
}

func (r *PaymentRepositoryImpl) DeleteMethod(ctx context.Context, id uuid.UUID) error {
	// soft delete by status, matching the legacy collection
	return r.db.WithContext(ctx).Model(&model.PaymentMethod{}).
		Where("id = ?", id).
		Update("status", "deleted").Error
}

func (r *PaymentRepositoryImpl) FindOneMethod(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error) {
	var m model.PaymentMethod
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MethodToEntity(&m), nil
}

func (r *PaymentRepositoryImpl) FindAllMethods(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error) {
	var models []*model.PaymentMethod
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaymentMethod, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MethodToEntity(m)
	}
	return entities, nil
}
