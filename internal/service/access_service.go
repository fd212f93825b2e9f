// FILE: internal/service/access_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"phluowise-billing-be/internal/config"
	"phluowise-billing-be/internal/dto"
	"phluowise-billing-be/internal/entity"
	"phluowise-billing-be/internal/pkg/logger"
	"phluowise-billing-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	GateStateOpen    = "open"
	GateStateBlocked = "blocked"

	// decisionTTL bounds how stale a cached gate decision may be. Short on
	// purpose: a payment should reopen the dashboard within seconds even if
	// the invalidation message is lost.
	decisionTTL = 30 * time.Second

	// RoleSupport is the JWT role allowed to override the gate and run
	// support-only operations.
	RoleSupport = "support"
)

// ErrOverrideDenied is returned when the override code or role doesn't check out.
var ErrOverrideDenied = errors.New("override denied")

type AccessService interface {
	// Check evaluates whether the company's dashboard stays open.
	Check(ctx context.Context, companyId string) (*dto.AccessDecisionResponse, error)

	// Override grants a TTL-bounded bypass for support staff.
	Override(ctx context.Context, companyId, role string, req dto.OverrideRequest) (*dto.AccessDecisionResponse, error)

	// Announce pushes a maintenance notice to every connected dashboard.
	Announce(ctx context.Context, role string, req dto.AnnounceRequest) error

	// Invalidate drops cached decisions after an out-of-band state change.
	Invalidate(ctx context.Context, companyId string)

	// StartHeartbeat runs the periodic re-evaluation sweep until ctx is done.
	StartHeartbeat(ctx context.Context)
}

type accessService struct {
	subs   SubscriptionService
	cache  *gocache.Cache
	rdb    *redis.Client
	pubSub *gochannel.GoChannel
	cfg    config.GateConfig
	logger logger.ILogger
}

func NewAccessService(
	subs SubscriptionService,
	rdb *redis.Client,
	pubSub *gochannel.GoChannel,
	cfg config.GateConfig,
	log logger.ILogger,
) AccessService {
	return &accessService{
		subs:   subs,
		cache:  gocache.New(decisionTTL, 2*decisionTTL),
		rdb:    rdb,
		pubSub: pubSub,
		cfg:    cfg,
		logger: log,
	}
}

func (s *accessService) Check(ctx context.Context, companyId string) (*dto.AccessDecisionResponse, error) {
	if s.overrideActive(ctx, companyId) {
		return &dto.AccessDecisionResponse{
			State:   GateStateOpen,
			Message: "Support override active",
		}, nil
	}

	if cached, found := s.cache.Get(decisionKey(companyId)); found {
		return cached.(*dto.AccessDecisionResponse), nil
	}

	if decision := s.fromRedis(ctx, companyId); decision != nil {
		s.cache.Set(decisionKey(companyId), decision, decisionTTL)
		return decision, nil
	}

	sub, err := s.subs.Ensure(ctx, companyId)
	if err != nil {
		// The gate fails open: a billing-store hiccup must not take down
		// every tenant's dashboard.
		s.logger.Error("AccessGate", "Evaluation failed, failing open", map[string]interface{}{
			"company_id": companyId,
			"error":      err.Error(),
		})
		return &dto.AccessDecisionResponse{State: GateStateOpen}, nil
	}

	decision := decisionFor(sub)
	s.cache.Set(decisionKey(companyId), decision, decisionTTL)
	s.toRedis(ctx, companyId, decision)
	return decision, nil
}

func (s *accessService) Override(ctx context.Context, companyId, role string, req dto.OverrideRequest) (*dto.AccessDecisionResponse, error) {
	if role != RoleSupport {
		s.logger.Warn("AccessGate", "Override attempted without support role", map[string]interface{}{
			"company_id": companyId,
			"role":       role,
		})
		return nil, ErrOverrideDenied
	}
	if s.cfg.OverrideCodeHash == "" {
		return nil, ErrOverrideDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.OverrideCodeHash), []byte(req.Code)); err != nil {
		s.logger.Warn("AccessGate", "Override code rejected", map[string]interface{}{
			"company_id": companyId,
		})
		return nil, ErrOverrideDenied
	}

	s.cache.Set(overrideKey(companyId), true, s.cfg.OverrideTTL)
	if s.rdb != nil {
		s.rdb.Set(ctx, overrideKey(companyId), "1", s.cfg.OverrideTTL)
	}
	s.Invalidate(ctx, companyId)

	s.logger.Info("AccessGate", "Support override granted", map[string]interface{}{
		"company_id": companyId,
		"ttl":        s.cfg.OverrideTTL.String(),
	})
	s.publishRestore(companyId, "Support override active")

	return &dto.AccessDecisionResponse{
		State:   GateStateOpen,
		Message: "Support override active",
	}, nil
}

func (s *accessService) Announce(_ context.Context, role string, req dto.AnnounceRequest) error {
	if role != RoleSupport {
		s.logger.Warn("AccessGate", "Announce attempted without support role", map[string]interface{}{
			"role": role,
		})
		return ErrOverrideDenied
	}

	// "*" targets every company; the notifier turns it into a hub broadcast.
	ev := events.NewBillingEvent(events.MaintenanceNotice, "*", map[string]interface{}{
		"message": req.Message,
	})
	if err := PublishBillingEvent(s.pubSub, ev); err != nil {
		return err
	}

	s.logger.Info("AccessGate", "Maintenance notice broadcast", map[string]interface{}{
		"message": req.Message,
	})
	return nil
}

func (s *accessService) Invalidate(ctx context.Context, companyId string) {
	s.cache.Delete(decisionKey(companyId))
	if s.rdb != nil {
		s.rdb.Del(ctx, decisionKey(companyId))
	}
}

// StartHeartbeat re-evaluates subscriptions whose billing period has lapsed.
// One sweep, one interval; the legacy stacked a 5 minute and a 3 hour timer
// on top of each other.
func (s *accessService) StartHeartbeat(ctx context.Context) {
	interval := s.cfg.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("AccessGate", "Heartbeat started", map[string]interface{}{
			"interval": interval.String(),
		})

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("AccessGate", "Heartbeat stopped", nil)
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *accessService) sweep(ctx context.Context) {
	candidates, err := s.subs.DueForEvaluation(ctx, time.Now())
	if err != nil {
		s.logger.Error("AccessGate", "Heartbeat sweep failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, companyId := range candidates {
		if _, err := s.subs.Ensure(ctx, companyId); err != nil {
			s.logger.Warn("AccessGate", "Heartbeat evaluation failed", map[string]interface{}{
				"company_id": companyId,
				"error":      err.Error(),
			})
			continue
		}
		s.Invalidate(ctx, companyId)
	}

	if len(candidates) > 0 {
		s.logger.Info("AccessGate", "Heartbeat sweep done", map[string]interface{}{
			"evaluated": len(candidates),
		})
	}
}

func (s *accessService) overrideActive(ctx context.Context, companyId string) bool {
	if _, found := s.cache.Get(overrideKey(companyId)); found {
		return true
	}
	if s.rdb != nil {
		if v, err := s.rdb.Get(ctx, overrideKey(companyId)).Result(); err == nil && v == "1" {
			return true
		}
	}
	return false
}

func (s *accessService) fromRedis(ctx context.Context, companyId string) *dto.AccessDecisionResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, decisionKey(companyId)).Result()
	if err != nil {
		return nil
	}
	var decision dto.AccessDecisionResponse
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return nil
	}
	return &decision
}

func (s *accessService) toRedis(ctx context.Context, companyId string, decision *dto.AccessDecisionResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(decision)
	if err != nil {
		return
	}
	s.rdb.Set(ctx, decisionKey(companyId), raw, decisionTTL)
}

func (s *accessService) publishRestore(companyId, message string) {
	ev := events.NewBillingEvent(events.AccessRestored, companyId, map[string]interface{}{
		"message": message,
	})
	if err := PublishBillingEvent(s.pubSub, ev); err != nil {
		s.logger.Error("AccessGate", "Failed to publish restore event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func decisionKey(companyId string) string {
	return "gate:decision:" + companyId
}

func overrideKey(companyId string) string {
	return "gate:override:" + companyId
}

// decisionFor maps a subscription to the gate decision shown to the tenant.
func decisionFor(sub *entity.Subscription) *dto.AccessDecisionResponse {
	if !sub.IsBlocked {
		return &dto.AccessDecisionResponse{State: GateStateOpen}
	}

	decision := &dto.AccessDecisionResponse{
		State:     GateStateBlocked,
		AmountDue: sub.AmountDue,
		BlockedAt: sub.BlockedAt,
	}

	switch {
	case sub.Status == entity.SubscriptionStatusExpired && sub.PlanType == entity.PlanTypeFreeTrial:
		decision.Title = "Free Trial Expired"
		decision.Message = "Your 20-day free trial has ended. Upgrade to a paid plan to keep using your dashboard."
	case sub.Status == entity.SubscriptionStatusExpired:
		decision.Title = "Subscription Expired"
		decision.Message = "Your subscription has expired. Renew within the grace period to restore full access."
	case sub.Status == entity.SubscriptionStatusPaymentOverdue:
		decision.Title = "Payment Overdue"
		decision.Message = "Your payment is overdue. Settle the outstanding amount to restore access."
	default:
		decision.Title = "Account Blocked"
		decision.Message = "Your account has been blocked. Contact support for assistance."
	}
	return decision
}
