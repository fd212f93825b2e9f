// FILE: internal/service/payment_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"phluowise-billing-be/internal/dto"
	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/pkg/logger"
	"phluowise-billing-be/internal/repository/contract"
	"phluowise-billing-be/internal/repository/specification"
	"phluowise-billing-be/internal/repository/unitofwork"
	"phluowise-billing-be/pkg/events"
	"phluowise-billing-be/pkg/gateway"
	"phluowise-billing-be/pkg/lifecycle"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// chargeTimeout caps how long a provider may hold the request.
const chargeTimeout = 30 * time.Second

// checkoutOrderPrefix correlates Midtrans webhooks back to a subscription:
// the order id is "<prefix><subscription uuid>-<unix>".
const checkoutOrderPrefix = "PHLB-"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionMismatch = errors.New("subscription does not belong to this company")
	ErrMethodNotFound       = errors.New("payment method not found")
	ErrBadWebhookSignature  = errors.New("webhook signature mismatch")
)

type PaymentService interface {
	ProcessPayment(ctx context.Context, companyId string, req dto.PaymentRequest) (*dto.PaymentResponse, error)

	// Hosted checkout (Midtrans Snap)
	CreateCheckout(ctx context.Context, companyId string, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleMidtransNotification(ctx context.Context, req dto.MidtransWebhookRequest) error

	// Saved payment methods
	AddMobileMoneyMethod(ctx context.Context, companyId string, req dto.AddMobileMoneyMethodRequest) (*dto.PaymentMethodResponse, error)
	AddCardMethod(ctx context.Context, companyId string, req dto.AddCardMethodRequest) (*dto.PaymentMethodResponse, error)
	ListMethods(ctx context.Context, companyId string) ([]*dto.PaymentMethodResponse, error)
	SetDefaultMethod(ctx context.Context, companyId string, methodId uuid.UUID) error
	RemoveMethod(ctx context.Context, companyId string, methodId uuid.UUID) error
}

type paymentService struct {
	uowFactory  unitofwork.RepositoryFactory
	registry    *gateway.Registry
	midtrans    *gateway.MidtransProvider
	subs        SubscriptionService
	access      AccessService
	pubSub      *gochannel.GoChannel
	frontendURL string
	logger      logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	registry *gateway.Registry,
	midtrans *gateway.MidtransProvider,
	subs SubscriptionService,
	access AccessService,
	pubSub *gochannel.GoChannel,
	frontendURL string,
	log logger.ILogger,
) PaymentService {
	return &paymentService{
		uowFactory:  uowFactory,
		registry:    registry,
		midtrans:    midtrans,
		subs:        subs,
		access:      access,
		pubSub:      pubSub,
		frontendURL: frontendURL,
		logger:      log,
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, companyId string, req dto.PaymentRequest) (*dto.PaymentResponse, error) {
	sub, err := s.subs.Ensure(ctx, companyId)
	if err != nil {
		return nil, err
	}
	if sub.Id.String() != req.SubscriptionId {
		return nil, ErrSubscriptionMismatch
	}

	chargeCtx, cancel := context.WithTimeout(ctx, chargeTimeout)
	defer cancel()

	result, err := s.registry.Charge(chargeCtx, gateway.ChargeRequest{
		SubscriptionId: req.SubscriptionId,
		CompanyId:      companyId,
		Amount:         req.Amount,
		Method:         req.Method,
		Details:        req.Details,
	})
	if err != nil {
		// Validation and routing failures never reach a provider; nothing to record.
		return nil, err
	}

	if !result.Success {
		s.recordTransaction(ctx, sub, req.Method, req.Amount, entity.TransactionStatusFailed, nil, result.Message)
		s.publish(events.NewBillingEvent(events.PaymentFailed, companyId, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"amount":          req.Amount,
			"method":          req.Method,
			"message":         result.Message,
		}))
		return &dto.PaymentResponse{Success: false, Message: result.Message}, nil
	}

	if err := s.settle(ctx, sub.CompanyId, req.Method, req.Amount, &result.TransactionId, result.Message); err != nil {
		return nil, err
	}

	return &dto.PaymentResponse{
		Success:       true,
		TransactionId: result.TransactionId,
		Message:       result.Message,
	}, nil
}

// settle applies a successful charge: flips the subscription back to active and
// records the transaction, atomically. Retries the optimistic lock a few times.
func (s *paymentService) settle(ctx context.Context, companyId, method string, amount float64, externalId *string, message string) error {
	var paid *entity.Subscription

	for attempt := 0; ; attempt++ {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByCompany{CompanyId: companyId})
		if err != nil {
			uow.Rollback()
			return err
		}
		if sub == nil {
			uow.Rollback()
			return ErrSubscriptionNotFound
		}

		next := lifecycle.ApplyPayment(*sub, time.Now())
		if err := uow.SubscriptionRepository().UpdateSubscription(ctx, &next); err != nil {
			uow.Rollback()
			if errors.Is(err, contract.ErrStaleSubscription) && attempt < staleRetries {
				continue
			}
			return err
		}

		tx := &entity.PaymentTransaction{
			Id:                    uuid.New(),
			SubscriptionId:        next.Id,
			CompanyId:             companyId,
			Amount:                amount,
			PaymentMethod:         method,
			Status:                entity.TransactionStatusCompleted,
			ExternalTransactionId: externalId,
			Message:               message,
			PaymentDate:           time.Now(),
		}
		if err := uow.PaymentRepository().CreateTransaction(ctx, tx); err != nil {
			uow.Rollback()
			return err
		}

		if err := uow.Commit(); err != nil {
			return err
		}
		paid = &next
		break
	}

	s.access.Invalidate(ctx, companyId)

	s.logger.Info("Payment", "Payment settled", map[string]interface{}{
		"company_id": companyId,
		"amount":     amount,
		"method":     method,
		"plan_type":  string(paid.PlanType),
	})

	s.publish(events.NewBillingEvent(events.PaymentSucceeded, companyId, map[string]interface{}{
		"subscription_id": paid.Id.String(),
		"amount":          amount,
		"method":          method,
		"external_id":     derefStr(externalId),
		"plan_type":       string(paid.PlanType),
	}))
	s.publish(events.NewBillingEvent(events.AccessRestored, companyId, map[string]interface{}{
		"subscription_id": paid.Id.String(),
	}))

	return nil
}

// recordTransaction writes a failed attempt outside any transaction; losing
// the audit row is preferable to failing the whole request twice.
func (s *paymentService) recordTransaction(ctx context.Context, sub *entity.Subscription, method string, amount float64, status entity.TransactionStatus, externalId *string, message string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	tx := &entity.PaymentTransaction{
		Id:                    uuid.New(),
		SubscriptionId:        sub.Id,
		CompanyId:             sub.CompanyId,
		Amount:                amount,
		PaymentMethod:         method,
		Status:                status,
		ExternalTransactionId: externalId,
		Message:               message,
		PaymentDate:           time.Now(),
	}
	if err := uow.PaymentRepository().CreateTransaction(ctx, tx); err != nil {
		s.logger.Error("Payment", "Failed to record transaction", map[string]interface{}{
			"company_id": sub.CompanyId,
			"error":      err.Error(),
		})
	}
}

// Hosted checkout

func (s *paymentService) CreateCheckout(ctx context.Context, companyId string, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	sub, err := s.subs.Ensure(ctx, companyId)
	if err != nil {
		return nil, err
	}
	if sub.Id.String() != req.SubscriptionId {
		return nil, ErrSubscriptionMismatch
	}

	amount := lifecycle.PlanPrice(sub.PlanType)
	if sub.AmountDue != nil {
		amount = *sub.AmountDue
	}

	orderId := fmt.Sprintf("%s%s-%d", checkoutOrderPrefix, sub.Id.String(), time.Now().Unix())
	itemName := sub.PlanText() + " Subscription"
	finishURL := s.frontendURL + "/subscription.html"

	checkout, err := s.midtrans.CreateCheckout(orderId, itemName, amount, finishURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment", "Checkout created", map[string]interface{}{
		"company_id": companyId,
		"order_id":   orderId,
		"amount":     amount,
	})

	return &dto.CheckoutResponse{
		SubscriptionId:  sub.Id.String(),
		SnapToken:       checkout.Token,
		SnapRedirectUrl: checkout.RedirectURL,
	}, nil
}

func (s *paymentService) HandleMidtransNotification(ctx context.Context, req dto.MidtransWebhookRequest) error {
	if !s.midtrans.VerifySignature(req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.logger.Warn("Payment", "Webhook signature rejected", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return ErrBadWebhookSignature
	}

	subId, err := subscriptionIdFromOrder(req.OrderId)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOneSubscription(ctx, specification.ByID{ID: subId})
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	amount, err := parseGrossAmount(req.GrossAmount)
	if err != nil {
		s.logger.Warn("Payment", "Webhook gross amount rejected", map[string]interface{}{
			"order_id":     req.OrderId,
			"gross_amount": req.GrossAmount,
		})
		return err
	}

	switch req.TransactionStatus {
	case "capture", "settlement":
		externalId := req.TransactionId
		return s.settle(ctx, sub.CompanyId, "midtrans", amount, &externalId, "Midtrans payment settled")
	case "deny", "cancel", "expire":
		externalId := req.TransactionId
		s.recordTransaction(ctx, sub, "midtrans", amount, entity.TransactionStatusFailed, &externalId, "Midtrans payment "+req.TransactionStatus)
		s.publish(events.NewBillingEvent(events.PaymentFailed, sub.CompanyId, map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"amount":          amount,
			"method":          "midtrans",
			"message":         req.TransactionStatus,
		}))
		return nil
	default:
		// pending and other in-flight states carry no action
		return nil
	}
}

// parseGrossAmount rejects a malformed webhook amount instead of recording a
// zero-value settlement.
func parseGrossAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed gross amount %q: %w", raw, err)
	}
	if amount < 0 {
		return 0, fmt.Errorf("negative gross amount %q", raw)
	}
	return amount, nil
}

func subscriptionIdFromOrder(orderId string) (uuid.UUID, error) {
	raw := strings.TrimPrefix(orderId, checkoutOrderPrefix)
	if len(raw) < 36 {
		return uuid.Nil, fmt.Errorf("malformed order id: %s", orderId)
	}
	return uuid.Parse(raw[:36])
}

// Saved payment methods

func (s *paymentService) AddMobileMoneyMethod(ctx context.Context, companyId string, req dto.AddMobileMoneyMethodRequest) (*dto.PaymentMethodResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	method := &entity.PaymentMethod{
		Id:         uuid.New(),
		CompanyId:  companyId,
		Name:       req.Name,
		MethodType: entity.PaymentMethodMobileMoney,
		Network:    req.Network,
		Masked:     maskMobile(req.MobileNumber),
		Details:    map[string]interface{}{"network": req.Network},
		Status:     "active",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := uow.PaymentRepository().CreateMethod(ctx, method); err != nil {
		return nil, err
	}
	return methodResponse(method), nil
}

func (s *paymentService) AddCardMethod(ctx context.Context, companyId string, req dto.AddCardMethodRequest) (*dto.PaymentMethodResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	method := &entity.PaymentMethod{
		Id:         uuid.New(),
		CompanyId:  companyId,
		Name:       req.Name,
		MethodType: entity.PaymentMethodCard,
		Network:    req.CardType,
		Masked:     maskCard(req.CardNumber),
		Details:    map[string]interface{}{"card_type": req.CardType, "expiry": req.Expiry},
		Status:     "active",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := uow.PaymentRepository().CreateMethod(ctx, method); err != nil {
		return nil, err
	}
	return methodResponse(method), nil
}

func (s *paymentService) ListMethods(ctx context.Context, companyId string) ([]*dto.PaymentMethodResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	methods, err := uow.PaymentRepository().FindAllMethods(ctx,
		specification.ByCompany{CompanyId: companyId},
		specification.ActiveMethods{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		result = append(result, methodResponse(m))
	}
	return result, nil
}

func (s *paymentService) SetDefaultMethod(ctx context.Context, companyId string, methodId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.PaymentRepository()

	method, err := s.ownedMethod(ctx, repo, companyId, methodId)
	if err != nil {
		return err
	}

	// Demote the previous default first.
	current, err := repo.FindAllMethods(ctx,
		specification.ByCompany{CompanyId: companyId},
		specification.ActiveMethods{},
	)
	if err != nil {
		return err
	}
	for _, m := range current {
		if m.IsDefault && m.Id != methodId {
			m.IsDefault = false
			m.UpdatedAt = time.Now()
			if err := repo.UpdateMethod(ctx, m); err != nil {
				return err
			}
		}
	}

	method.IsDefault = true
	method.UpdatedAt = time.Now()
	if err := repo.UpdateMethod(ctx, method); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *paymentService) RemoveMethod(ctx context.Context, companyId string, methodId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PaymentRepository()

	if _, err := s.ownedMethod(ctx, repo, companyId, methodId); err != nil {
		return err
	}
	return repo.DeleteMethod(ctx, methodId)
}

func (s *paymentService) ownedMethod(ctx context.Context, repo contract.PaymentRepository, companyId string, methodId uuid.UUID) (*entity.PaymentMethod, error) {
	method, err := repo.FindOneMethod(ctx,
		specification.ByID{ID: methodId},
		specification.ByCompany{CompanyId: companyId},
		specification.ActiveMethods{},
	)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrMethodNotFound
	}
	return method, nil
}

func (s *paymentService) publish(ev events.BaseEvent) {
	if err := PublishBillingEvent(s.pubSub, ev); err != nil {
		s.logger.Error("Payment", "Failed to publish billing event", map[string]interface{}{
			"event": ev.EventType(),
			"error": err.Error(),
		})
	}
}

func methodResponse(m *entity.PaymentMethod) *dto.PaymentMethodResponse {
	return &dto.PaymentMethodResponse{
		Id:         m.Id,
		Name:       m.Name,
		MethodType: string(m.MethodType),
		Network:    m.Network,
		Masked:     m.Masked,
		IsDefault:  m.IsDefault,
		LastUsedAt: m.LastUsedAt,
		CreatedAt:  m.CreatedAt,
	}
}

func maskMobile(number string) string {
	if len(number) <= 3 {
		return number
	}
	return strings.Repeat("*", len(number)-3) + number[len(number)-3:]
}

func maskCard(number string) string {
	if len(number) <= 4 {
		return number
	}
	return "**** **** **** " + number[len(number)-4:]
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
