package bootstrap

import (
	"context"
	"log"

	"phluowise-billing-be/internal/config"
	"phluowise-billing-be/internal/controller"
	"phluowise-billing-be/internal/handler"
	"phluowise-billing-be/internal/pkg/logger"
	"phluowise-billing-be/internal/pkg/mailer"
	"phluowise-billing-be/internal/repository/unitofwork"
	"phluowise-billing-be/internal/service"
	"phluowise-billing-be/internal/websocket"
	"phluowise-billing-be/pkg/gateway"

	pktNats "phluowise-billing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SubscriptionController controller.ISubscriptionController
	PaymentController      controller.IPaymentController
	AccessController       controller.IAccessController

	// Background Services (Exposed for main.go to run)
	NotifierService NotifierRunner
	AccessService   service.AccessService

	// WebSockets
	GateHandler  *handler.GateHandler
	WebSocketHub *websocket.Hub
}

// NotifierRunner is what main.go needs from the notifier.
type NotifierRunner interface {
	Consume(ctx context.Context) error
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/gate.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Payment gateways
	registry := gateway.NewRegistry(
		gateway.NewStripeStub(),
		gateway.NewPayPalStub(),
		gateway.NewMobileMoneyStub(),
		gateway.NewBankTransferStub(),
	)
	midtransProvider := gateway.NewMidtransProvider(cfg.Payment.MidtransServerKey, cfg.Payment.Production)

	// 3. Services
	subscriptionService := service.NewSubscriptionService(uowFactory, pubSub, sysLogger)
	accessService := service.NewAccessService(subscriptionService, rdb, pubSub, cfg.Gate, sysLogger)
	paymentService := service.NewPaymentService(
		uowFactory,
		registry,
		midtransProvider,
		subscriptionService,
		accessService,
		pubSub,
		cfg.App.ClientURL,
		sysLogger,
	)
	notifierService := service.NewNotifierService(
		pubSub,
		wsHub,
		emailService,
		natsPub,
		cfg.SMTP.Email, // ops mailbox fallback
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),
		PaymentController:      controller.NewPaymentController(paymentService),
		AccessController:       controller.NewAccessController(accessService),

		NotifierService: notifierService,
		AccessService:   accessService,

		GateHandler:  handler.NewGateHandler(wsHub, wsLogger),
		WebSocketHub: wsHub,
	}
}
