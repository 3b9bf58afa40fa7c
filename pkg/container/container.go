package container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"warehouse-pick-coordinator/internal/config"
	infraCache "warehouse-pick-coordinator/internal/infrastructure/cache"
	"warehouse-pick-coordinator/internal/infrastructure/database"
	"warehouse-pick-coordinator/internal/infrastructure/email"
	"warehouse-pick-coordinator/internal/infrastructure/sms"
	"warehouse-pick-coordinator/pkg/cache"
	"warehouse-pick-coordinator/pkg/jwt"

	"warehouse-pick-coordinator/internal/domains/order"
	orderHandler "warehouse-pick-coordinator/internal/domains/order/handler"
	orderRepo "warehouse-pick-coordinator/internal/domains/order/repository"
	orderService "warehouse-pick-coordinator/internal/domains/order/service"

	"warehouse-pick-coordinator/internal/domains/pick"
	pickHandler "warehouse-pick-coordinator/internal/domains/pick/handler"
	pickRepo "warehouse-pick-coordinator/internal/domains/pick/repository"
	pickService "warehouse-pick-coordinator/internal/domains/pick/service"

	"warehouse-pick-coordinator/internal/domains/product"
	productRepo "warehouse-pick-coordinator/internal/domains/product/repository"
	productService "warehouse-pick-coordinator/internal/domains/product/service"

	"warehouse-pick-coordinator/internal/domains/settings"
	settingsHandler "warehouse-pick-coordinator/internal/domains/settings/handler"
	settingsRepo "warehouse-pick-coordinator/internal/domains/settings/repository"
	settingsService "warehouse-pick-coordinator/internal/domains/settings/service"

	"warehouse-pick-coordinator/internal/domains/stockexception"
	stockexceptionHandler "warehouse-pick-coordinator/internal/domains/stockexception/handler"
	stockexceptionRepo "warehouse-pick-coordinator/internal/domains/stockexception/repository"
	stockexceptionService "warehouse-pick-coordinator/internal/domains/stockexception/service"

	"warehouse-pick-coordinator/internal/domains/sync/importer"
	syncHandler "warehouse-pick-coordinator/internal/domains/sync/handler"
	"warehouse-pick-coordinator/internal/domains/sync/synclog"
	synclogRepo "warehouse-pick-coordinator/internal/domains/sync/synclog/repository"
	"warehouse-pick-coordinator/internal/domains/sync/upstreamclient"

	"warehouse-pick-coordinator/internal/domains/user"
	userHandler "warehouse-pick-coordinator/internal/domains/user/handler"
	userRepo "warehouse-pick-coordinator/internal/domains/user/repository"
	userService "warehouse-pick-coordinator/internal/domains/user/service"
)

// Container wires every domain's repository, service, and handler together
// in dependency order, the way the teacher's bookstore container does, but
// over this module's warehouse domains instead.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	EmailService email.EmailService
	SMSService   *sms.MockSMSService

	UserRepo           user.Repository
	ProductRepo        product.Repository
	OrderRepo          order.Repository
	PickRepo           pick.Repository
	StockExceptionRepo stockexception.Repository
	SettingsRepo       settings.Repository
	SyncLogRepo        synclog.Repository

	UserService           user.Service
	ProductService        product.Service
	OrderService          order.Service
	PickService           pick.Service
	StockExceptionService stockexception.Service
	SettingsService       settings.Service
	UpstreamClient        *upstreamclient.Client
	ImporterService       importer.Service

	UserHandler           *userHandler.UserHandler
	OrderHandler          *orderHandler.OrderHandler
	PickHandler           *pickHandler.PickHandler
	StockExceptionHandler *stockexceptionHandler.StockExceptionHandler
	SettingsHandler       *settingsHandler.SettingsHandler
	SyncHandler           *syncHandler.SyncHandler
}

// NewContainer builds the full dependency graph: infrastructure, then
// repositories, then services, then handlers — mirroring the teacher's
// phased construction so failures surface at the earliest possible phase.
func NewContainer() (*Container, error) {
	c := &Container{}

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to init infrastructure: %w", err)
	}
	if err := c.initProviders(); err != nil {
		return nil, fmt.Errorf("failed to init providers: %w", err)
	}
	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	if err := c.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	log.Println("container initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	if err := db.ApplyMigrations(context.Background()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	c.DB = db
	log.Println("database connected")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("redis connection failed (non-critical): %v", err)
		} else {
			log.Println("redis connected")
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return nil
}

func (c *Container) initProviders() error {
	c.EmailService = email.NewDevEmailService(envOr("SMTP_HOST", "localhost"), envOr("SMTP_PORT", "1025"))
	c.SMSService = sms.NewMockSMSService()
	return nil
}

func (c *Container) initRepositories() error {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.ProductRepo = productRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresRepository(pool)
	c.PickRepo = pickRepo.NewPostgresRepository(pool)
	c.StockExceptionRepo = stockexceptionRepo.NewPostgresRepository(pool)
	c.SettingsRepo = settingsRepo.NewPostgresRepository(pool)
	c.SyncLogRepo = synclogRepo.NewPostgresRepository(pool)

	return nil
}

func (c *Container) initServices() error {
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.ProductService = productService.NewProductService(c.ProductRepo)
	c.OrderService = orderService.NewOrderService(c.DB.Pool, c.OrderRepo, c.ProductRepo)
	c.PickService = pickService.NewPickService(c.DB.Pool, c.PickRepo, c.OrderRepo, c.ProductRepo, c.StockExceptionRepo)
	c.StockExceptionService = stockexceptionService.NewStockExceptionService(c.StockExceptionRepo)
	c.SettingsService = settingsService.NewSettingsService(c.SettingsRepo, c.Cache)

	c.UpstreamClient = upstreamclient.New()
	c.ImporterService = importer.NewImporter(c.DB.Pool, c.UpstreamClient, c.SyncLogRepo, c.ProductRepo, c.OrderRepo, c.SettingsRepo)

	return nil
}

func (c *Container) initHandlers() error {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService, c.ProductRepo)
	c.PickHandler = pickHandler.NewPickHandler(c.PickService)
	c.StockExceptionHandler = stockexceptionHandler.NewStockExceptionHandler(c.StockExceptionService, c.EmailService, c.SMSService, c.SettingsRepo)
	c.SettingsHandler = settingsHandler.NewSettingsHandler(c.SettingsService)
	c.SyncHandler = syncHandler.NewSyncHandler(c.ImporterService, c.SyncLogRepo, c.SettingsRepo)

	return nil
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("database connections closed")
	}
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("asynq client close failed: %v", err)
		}
	}
	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("redis close failed: %v", err)
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

