package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/model"
	"phluowise-billing-be/internal/repository/contract"
	"phluowise-billing-be/internal/repository/specification"
	"phluowise-billing-be/internal/repository/unitofwork"
	"phluowise-billing-be/pkg/database"
	"phluowise-billing-be/pkg/lifecycle"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestBillingFlow(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	err = gormDB.AutoMigrate(&model.Subscription{}, &model.PaymentTransaction{}, &model.PaymentMethod{})
	assert.NoError(t, err)

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	companyId := "it-" + uuid.NewString()[:8]

	t.Run("Trial round trip", func(t *testing.T) {
		trial := lifecycle.NewFreeTrial(companyId, time.Now().UTC())
		trial.Id = uuid.New()

		err := uow.SubscriptionRepository().CreateSubscription(ctx, &trial)
		assert.NoError(t, err)

		loaded, err := uow.SubscriptionRepository().FindOneSubscription(ctx,
			specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		if assert.NotNil(t, loaded) {
			assert.Equal(t, trial.Id, loaded.Id)
			assert.Equal(t, entity.SubscriptionStatusFreeTrial, loaded.Status)
			assert.False(t, loaded.IsBlocked)
			assert.Equal(t, 1, loaded.Version)
		}
	})

	t.Run("Optimistic lock rejects stale writer", func(t *testing.T) {
		repo := uow.SubscriptionRepository()

		sub, err := repo.FindOneSubscription(ctx, specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		assert.NotNil(t, sub)

		// First writer wins and bumps the version.
		winner := *sub
		winner.Status = entity.SubscriptionStatusActive
		assert.NoError(t, repo.UpdateSubscription(ctx, &winner))

		// Second writer still holds the old version.
		loser := *sub
		loser.Status = entity.SubscriptionStatusExpired
		err = repo.UpdateSubscription(ctx, &loser)
		assert.ErrorIs(t, err, contract.ErrStaleSubscription)

		fresh, err := repo.FindOneSubscription(ctx, specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		assert.Equal(t, entity.SubscriptionStatusActive, fresh.Status)
		assert.Equal(t, sub.Version+1, fresh.Version)
	})

	t.Run("Transaction recorded", func(t *testing.T) {
		sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx,
			specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		assert.NotNil(t, sub)

		tx := &entity.PaymentTransaction{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			CompanyId:      companyId,
			Amount:         29.99,
			PaymentMethod:  "stripe",
			Status:         entity.TransactionStatusCompleted,
			Message:        "Payment processed successfully",
			PaymentDate:    time.Now().UTC(),
		}
		assert.NoError(t, uow.PaymentRepository().CreateTransaction(ctx, tx))

		list, err := uow.PaymentRepository().FindAllTransactions(ctx,
			specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		assert.Len(t, list, 1)

		total, err := uow.PaymentRepository().GetTotalPaid(ctx, companyId)
		assert.NoError(t, err)
		assert.InDelta(t, 29.99, total, 0.001)
	})

	t.Run("Payment history pages newest first", func(t *testing.T) {
		sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx,
			specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		assert.NotNil(t, sub)

		older := &entity.PaymentTransaction{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			CompanyId:      companyId,
			Amount:         59.99,
			PaymentMethod:  "momo",
			Status:         entity.TransactionStatusFailed,
			Message:        "Insufficient funds",
			PaymentDate:    time.Now().UTC().Add(-24 * time.Hour),
		}
		assert.NoError(t, uow.PaymentRepository().CreateTransaction(ctx, older))

		page, err := uow.PaymentRepository().FindAllTransactions(ctx,
			specification.ByCompany{CompanyId: companyId},
			specification.OrderBy{Field: "payment_date", Desc: true},
			specification.Pagination{Limit: 1, Offset: 0},
		)
		assert.NoError(t, err)
		if assert.Len(t, page, 1) {
			assert.Equal(t, entity.TransactionStatusCompleted, page[0].Status)
		}

		completed, err := uow.PaymentRepository().FindAllTransactions(ctx,
			specification.ByCompany{CompanyId: companyId},
			specification.Filter("status", string(entity.TransactionStatusCompleted)),
		)
		assert.NoError(t, err)
		assert.Len(t, completed, 1)
	})

	t.Run("Blocked stats reflect overdue accounts", func(t *testing.T) {
		repo := uow.SubscriptionRepository()

		sub, err := repo.FindOneSubscription(ctx, specification.ByCompany{CompanyId: companyId})
		assert.NoError(t, err)
		assert.NotNil(t, sub)

		beforeBlocked, err := repo.CountBlocked(ctx)
		assert.NoError(t, err)
		beforeDue, err := repo.GetTotalAmountDue(ctx)
		assert.NoError(t, err)

		due := 29.99
		now := time.Now().UTC()
		blocked := *sub
		blocked.Status = entity.SubscriptionStatusPaymentOverdue
		blocked.IsBlocked = true
		blocked.BlockedAt = &now
		blocked.AmountDue = &due
		assert.NoError(t, repo.UpdateSubscription(ctx, &blocked))

		afterBlocked, err := repo.CountBlocked(ctx)
		assert.NoError(t, err)
		assert.Equal(t, beforeBlocked+1, afterBlocked)

		afterDue, err := repo.GetTotalAmountDue(ctx)
		assert.NoError(t, err)
		assert.InDelta(t, beforeDue+due, afterDue, 0.001)
	})

	// Cleanup
	t.Cleanup(func() {
		gormDB.Where("company_id = ?", companyId).Delete(&model.PaymentTransaction{})
		gormDB.Where("company_id = ?", companyId).Delete(&model.Subscription{})
	})
}
