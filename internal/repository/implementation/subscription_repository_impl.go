package implementation

import (
	"context"
	"errors"

	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/mapper"
	"phluowise-billing-be/internal/model"
	"phluowise-billing-be/internal/repository/contract"
	"phluowise-billing-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) CreateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

// UpdateSubscription is a compare-and-swap on the version column. The legacy
// app let two tabs race on read-modify-write; here a lost race surfaces as
// ErrStaleSubscription so the caller can re-read and retry.
func (r *SubscriptionRepositoryImpl) UpdateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	currentVersion := m.Version
	m.Version = currentVersion + 1

	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND version = ?", m.Id, currentVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrStaleSubscription
	}
	subscription.Version = m.Version
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) CountBlocked(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("is_blocked = ?", true).
		Count(&count).Error
	return int(count), err
}

func (r *SubscriptionRepositoryImpl) GetTotalAmountDue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Select("COALESCE(SUM(amount_due), 0)").
		Where("amount_due IS NOT NULL").
		Scan(&total).Error
	return total, err
}
