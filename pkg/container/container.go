package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"eurd-payments/internal/config"
	orderHandler "eurd-payments/internal/domains/order/handler"
	orderRepo "eurd-payments/internal/domains/order/repository"
	orderService "eurd-payments/internal/domains/order/service"
	"eurd-payments/internal/domains/payment/gateway"
	gatewayMock "eurd-payments/internal/domains/payment/gateway/mock"
	"eurd-payments/internal/domains/payment/gateway/quantoz"
	paymentHandler "eurd-payments/internal/domains/payment/handler"
	paymentModel "eurd-payments/internal/domains/payment/model"
	paymentRepo "eurd-payments/internal/domains/payment/repository"
	paymentService "eurd-payments/internal/domains/payment/service"
	infraCache "eurd-payments/internal/infrastructure/cache"
	"eurd-payments/internal/infrastructure/database"
	"eurd-payments/internal/infrastructure/metrics"
	"eurd-payments/internal/infrastructure/queue"
	"eurd-payments/pkg/cache"
	"eurd-payments/pkg/jwt"
	"eurd-payments/pkg/secret"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
// Pattern: Service Locator + Dependency Injection
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	// Lifecycle: Singleton (1 instance duy nhất trong app lifetime)

	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisCache
	Cache       cache.Cache
	Locker      cache.Locker
	JWTManager  *jwt.Manager
	Secrets     *secret.AESStore
	Metrics     *metrics.Metrics
	AsynqClient *asynq.Client
	TaskQueue   *queue.Client
	Gateway     gateway.Client

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================

	OrderRepo    orderRepo.OrderRepository
	RequestStore paymentRepo.PaymentRequestStore
	SettingsRepo paymentRepo.SettingsRepository

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================

	OrderService          orderService.OrderService
	SettingsProvider      *paymentService.SettingsProvider
	SettingsService       paymentService.SettingsService
	ReconciliationService paymentService.ReconciliationService

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================

	OrderHandler   *orderHandler.OrderHandler
	PaymentHandler *paymentHandler.PaymentHandler
	WebhookHandler *paymentHandler.WebhookHandler
	AdminHandler   *paymentHandler.AdminHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph
//
// QUAN TRỌNG: Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB, Cache, Queue) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure
// 4. Settings provider, sau đó gateway (gateway đọc API key qua provider)
// 5. Services - phụ thuộc Repositories và Gateway
// 6. Handlers - phụ thuộc Services
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE, LOCKS, QUEUE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	c.Redis = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(context.Background()); err != nil {
		// Redis failure không critical - cache miss và lock bỏ qua
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Cache = c.Redis
	c.Locker = infraCache.NewRedisLocker(c.Redis.Client, "eurd:")

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c.TaskQueue = queue.NewClient(c.AsynqClient, cfg.Worker.ConfirmMaxRetry)

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.PollTokenExpiry)*time.Minute,
	)

	secrets, err := secret.NewAESStore(cfg.Secret.AuthKey, cfg.Secret.SecureAuthSalt)
	if err != nil {
		return nil, fmt.Errorf("failed to init secret store: %w", err)
	}
	c.Secrets = secrets

	c.Metrics = metrics.New(prometheus.DefaultRegisterer)

	// ========================================
	// STEP 4: INITIALIZE REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")

	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 5: INITIALIZE SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")

	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 6: INITIALIZE HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")

	if err := c.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() error {
	pool := c.DB.Pool

	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
	c.RequestStore = paymentRepo.NewPostgresRequestStore(pool)
	c.SettingsRepo = paymentRepo.NewPostgresSettingsRepository(pool)

	return nil
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.OrderService = orderService.NewOrderService(c.OrderRepo)

	// ----------------------------------------
	// SETTINGS PROVIDER
	// ----------------------------------------
	// Env credentials chỉ dùng cho tới khi admin lưu settings lần đầu
	defaults := paymentModel.Settings{
		Enabled:     cfg.Quantoz.APIKey != "",
		Title:       paymentModel.DefaultTitle,
		Description: paymentModel.DefaultDescription,
		APIKey:      cfg.Quantoz.APIKey,
		AccountCode: cfg.Quantoz.AccountCode,
	}
	c.SettingsProvider = paymentService.NewSettingsProvider(
		c.SettingsRepo,
		c.Cache,
		c.Secrets,
		defaults,
		cfg.Payment.SettingsCacheTTL,
	)

	// ----------------------------------------
	// PAYMENT GATEWAY
	// ----------------------------------------
	if cfg.Quantoz.UseMock {
		log.Println("⚠️  Using in-memory Quantoz gateway")
		mockGateway := gatewayMock.NewGateway()
		if cfg.Quantoz.APIKey != "" {
			mockGateway.AddKey(cfg.Quantoz.APIKey)
		}
		c.Gateway = mockGateway
	} else {
		client, err := quantoz.NewClient(
			quantoz.NewConfig(cfg.Quantoz.APIURL, cfg.Quantoz.PayURL, cfg.Quantoz.Timeout),
			c.SettingsProvider.APIKey,
			c.Metrics,
		)
		if err != nil {
			return fmt.Errorf("failed to init Quantoz client: %w", err)
		}
		c.Gateway = client
	}

	// ----------------------------------------
	// SETTINGS SERVICE
	// ----------------------------------------
	c.SettingsService = paymentService.NewSettingsService(
		c.SettingsProvider,
		c.Gateway,
		c.Cache,
		cfg.Payment.StoreCurrency,
		cfg.Payment.AccountsCacheTTL,
	)

	// ----------------------------------------
	// RECONCILIATION SERVICE
	// ----------------------------------------
	c.ReconciliationService = paymentService.NewReconciliationService(
		c.OrderRepo,
		c.RequestStore,
		c.Gateway,
		c.SettingsService,
		c.Locker,
		c.TaskQueue,
		c.JWTManager,
		c.Metrics,
		paymentService.Config{
			MaxAmount:      cfg.Payment.MaxAmount,
			RequestTTL:     cfg.Payment.RequestTTL,
			LockTTL:        cfg.Payment.LockTTL,
			GatewayTimeout: cfg.Quantoz.Timeout,
			PollInterval:   cfg.Payment.PollInterval,
			CallbackURL:    cfg.CallbackURL(),
			BaseURL:        cfg.App.BaseURL,
		},
	)

	return nil
}

func (c *Container) initHandlers() error {
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.ReconciliationService)
	c.WebhookHandler = paymentHandler.NewWebhookHandler(
		c.ReconciliationService,
		c.Metrics,
		c.Config.Worker.ConfirmRetry,
		c.Config.App.Environment != "production",
	)
	c.AdminHandler = paymentHandler.NewAdminHandler(c.SettingsService)

	return nil
}

// Cleanup dọn dẹp resources khi shutdown
// Gọi trong graceful shutdown của server
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close task queue client: %v", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
