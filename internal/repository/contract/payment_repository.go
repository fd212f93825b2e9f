package contract

import (
	"context"

	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	// Transactions
	CreateTransaction(ctx context.Context, tx *entity.PaymentTransaction) error
	FindAllTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentTransaction, error)
	GetTotalPaid(ctx context.Context, companyId string) (float64, error)

	// Saved payment methods
	CreateMethod(ctx context.Context, method *entity.PaymentMethod) error
	UpdateMethod(ctx context.Context, method *entity.PaymentMethod) error
	DeleteMethod(ctx context.Context, id uuid.UUID) error
	FindOneMethod(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error)
	FindAllMethods(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error)
}
