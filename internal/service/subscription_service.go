// FILE: internal/service/subscription_service.go
package service

import (
	"context"
	"errors"
	"time"

	"phluowise-billing-be/internal/dto"
	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/pkg/logger"
	"phluowise-billing-be/internal/repository/contract"
	"phluowise-billing-be/internal/repository/specification"
	"phluowise-billing-be/internal/repository/unitofwork"
	"phluowise-billing-be/pkg/events"
	"phluowise-billing-be/pkg/lifecycle"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// staleRetries bounds the compare-and-swap loop when another writer races us.
const staleRetries = 3

// Transaction listing page bounds.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type SubscriptionService interface {
	// Ensure loads the company's subscription, creating the free trial on first
	// contact, and advances its time-driven transitions.
	Ensure(ctx context.Context, companyId string) (*entity.Subscription, error)

	// DueForEvaluation lists companies whose deadlines have lapsed and need a
	// fresh pass through the state machine.
	DueForEvaluation(ctx context.Context, now time.Time) ([]string, error)

	GetStatus(ctx context.Context, companyId string) (*dto.SubscriptionStatusResponse, error)
	Validate(ctx context.Context, companyId string) (*dto.SubscriptionValidationResponse, error)
	ListTransactions(ctx context.Context, companyId string, query dto.TransactionListQuery) ([]*dto.TransactionResponse, error)

	// GetStats summarizes blocked accounts and outstanding debt for support.
	GetStats(ctx context.Context) (*dto.BillingStatsResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	pubSub     *gochannel.GoChannel
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	pubSub *gochannel.GoChannel,
	log logger.ILogger,
) SubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		pubSub:     pubSub,
		logger:     log,
	}
}

func (s *subscriptionService) Ensure(ctx context.Context, companyId string) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SubscriptionRepository()

	sub, err := repo.FindOneSubscription(ctx, specification.ByCompany{CompanyId: companyId})
	if err != nil {
		// Store unreachable is not the same as "no record yet": serve an
		// unpersisted trial so a storage outage never locks paying tenants out.
		s.logger.Warn("Subscription", "Store unreachable, serving unpersisted trial", map[string]interface{}{
			"company_id": companyId,
			"error":      err.Error(),
		})
		trial := lifecycle.NewFreeTrial(companyId, time.Now())
		trial.Id = uuid.New()
		return &trial, nil
	}

	if sub == nil {
		trial := lifecycle.NewFreeTrial(companyId, time.Now())
		trial.Id = uuid.New()
		if err := repo.CreateSubscription(ctx, &trial); err != nil {
			s.logger.Warn("Subscription", "Failed to persist new trial", map[string]interface{}{
				"company_id": companyId,
				"error":      err.Error(),
			})
			return &trial, nil
		}
		s.logger.Info("Subscription", "Free trial started", map[string]interface{}{
			"company_id": companyId,
			"trial_end":  trial.TrialEndDate,
		})
		s.publish(events.NewBillingEvent(events.SubscriptionCreated, companyId, map[string]interface{}{
			"subscription_id": trial.Id.String(),
			"plan_type":       string(trial.PlanType),
		}))
		return &trial, nil
	}

	return s.advance(ctx, repo, sub)
}

// advance runs the state machine and persists the result, retrying the
// compare-and-swap a few times if a concurrent writer bumped the version.
func (s *subscriptionService) advance(ctx context.Context, repo contract.SubscriptionRepository, sub *entity.Subscription) (*entity.Subscription, error) {
	for attempt := 0; ; attempt++ {
		next, changed := lifecycle.Evaluate(*sub, time.Now())
		if !changed {
			return sub, nil
		}

		err := repo.UpdateSubscription(ctx, &next)
		if err == nil {
			s.emitTransition(sub, &next)
			return &next, nil
		}
		if !errors.Is(err, contract.ErrStaleSubscription) || attempt >= staleRetries {
			return nil, err
		}

		// Lost the race. Reload and re-evaluate from the winner's state.
		fresh, ferr := repo.FindOneSubscription(ctx, specification.ByCompany{CompanyId: sub.CompanyId})
		if ferr != nil || fresh == nil {
			return nil, err
		}
		sub = fresh
	}
}

func (s *subscriptionService) emitTransition(before, after *entity.Subscription) {
	if before.Status == after.Status {
		return
	}

	data := map[string]interface{}{
		"subscription_id": after.Id.String(),
		"status":          string(after.Status),
		"plan_type":       string(after.PlanType),
	}
	if after.AmountDue != nil {
		data["amount_due"] = *after.AmountDue
	}
	if after.GracePeriodEnd != nil {
		data["grace_period_end"] = after.GracePeriodEnd.Format(time.RFC3339)
	}

	switch after.Status {
	case entity.SubscriptionStatusExpired:
		s.publish(events.NewBillingEvent(events.SubscriptionExpired, after.CompanyId, data))
	case entity.SubscriptionStatusPaymentOverdue:
		s.publish(events.NewBillingEvent(events.SubscriptionBlocked, after.CompanyId, data))
	}

	if !before.IsBlocked && after.IsBlocked {
		s.logger.Info("Subscription", "Company blocked", map[string]interface{}{
			"company_id": after.CompanyId,
			"status":     string(after.Status),
		})
	}
}

func (s *subscriptionService) publish(ev events.BaseEvent) {
	if err := PublishBillingEvent(s.pubSub, ev); err != nil {
		s.logger.Error("Subscription", "Failed to publish billing event", map[string]interface{}{
			"event": ev.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *subscriptionService) DueForEvaluation(ctx context.Context, now time.Time) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAllSubscriptions(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusFreeTrial),
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusExpired),
		}},
		specification.EndDateBefore{Cutoff: now},
	)
	if err != nil {
		return nil, err
	}

	companies := make([]string, 0, len(subs))
	for _, sub := range subs {
		companies = append(companies, sub.CompanyId)
	}
	return companies, nil
}

func (s *subscriptionService) GetStatus(ctx context.Context, companyId string) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.Ensure(ctx, companyId)
	if err != nil {
		return nil, err
	}

	return &dto.SubscriptionStatusResponse{
		SubscriptionId: sub.Id,
		PlanType:       string(sub.PlanType),
		PlanName:       sub.PlanText(),
		Status:         string(sub.Status),
		StatusText:     sub.StatusText(),
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		TrialEndDate:   sub.TrialEndDate,
		PaymentDueDate: sub.PaymentDueDate,
		GracePeriodEnd: sub.GracePeriodEnd,
		AmountDue:      sub.AmountDue,
		IsBlocked:      sub.IsBlocked,
		BlockedAt:      sub.BlockedAt,
		DaysRemaining:  sub.DaysRemaining(time.Now()),
	}, nil
}

func (s *subscriptionService) Validate(ctx context.Context, companyId string) (*dto.SubscriptionValidationResponse, error) {
	sub, err := s.Ensure(ctx, companyId)
	if err != nil {
		return nil, err
	}

	return &dto.SubscriptionValidationResponse{
		IsValid:          !sub.IsBlocked,
		Status:           string(sub.Status),
		RenewalRequired:  sub.Status == entity.SubscriptionStatusExpired || sub.Status == entity.SubscriptionStatusPaymentOverdue,
		CurrentPeriodEnd: sub.EndDate,
		DaysRemaining:    sub.DaysRemaining(time.Now()),
		GracePeriodEnd:   sub.GracePeriodEnd,
		PlanName:         sub.PlanText(),
	}, nil
}

func (s *subscriptionService) ListTransactions(ctx context.Context, companyId string, query dto.TransactionListQuery) ([]*dto.TransactionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	specs := []specification.Specification{
		specification.ByCompany{CompanyId: companyId},
		specification.OrderBy{Field: "payment_date", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if query.Status != "" {
		specs = append(specs, specification.Filter("status", query.Status))
	}

	txs, err := uow.PaymentRepository().FindAllTransactions(ctx, specs...)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		result = append(result, &dto.TransactionResponse{
			Id:                    tx.Id,
			SubscriptionId:        tx.SubscriptionId,
			Amount:                tx.Amount,
			PaymentMethod:         tx.PaymentMethod,
			Status:                string(tx.Status),
			ExternalTransactionId: tx.ExternalTransactionId,
			Message:               tx.Message,
			PaymentDate:           tx.PaymentDate,
		})
	}
	return result, nil
}

func (s *subscriptionService) GetStats(ctx context.Context) (*dto.BillingStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SubscriptionRepository()

	blocked, err := repo.CountBlocked(ctx)
	if err != nil {
		return nil, err
	}
	totalDue, err := repo.GetTotalAmountDue(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.BillingStatsResponse{
		BlockedCompanies: blocked,
		TotalAmountDue:   totalDue,
	}, nil
}
