package contract

import (
	"context"
	"errors"

	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/repository/specification"
)

// ErrStaleSubscription is returned when an update loses the optimistic
// concurrency race: another writer bumped the version first.
var ErrStaleSubscription = errors.New("subscription was modified concurrently")

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, subscription *entity.Subscription) error
	// UpdateSubscription writes the record if and only if its version still
	// matches the stored one, then bumps the version. Returns
	// ErrStaleSubscription on a lost race.
	UpdateSubscription(ctx context.Context, subscription *entity.Subscription) error
	FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)

	// Dashboard stats
	CountBlocked(ctx context.Context) (int, error)
	GetTotalAmountDue(ctx context.Context) (float64, error)
}
