package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"diamondnova-backend/internal/config"
	infraCache "diamondnova-backend/internal/infrastructure/cache"
	"diamondnova-backend/internal/infrastructure/database"
	"diamondnova-backend/internal/infrastructure/storage"
	"diamondnova-backend/pkg/cache"
	"diamondnova-backend/pkg/jwt"

	"diamondnova-backend/internal/domains/account"
	accountHandler "diamondnova-backend/internal/domains/account/handler"
	accountRepo "diamondnova-backend/internal/domains/account/repository"
	accountService "diamondnova-backend/internal/domains/account/service"

	ledgerHandler "diamondnova-backend/internal/domains/ledger/handler"
	ledgerRepo "diamondnova-backend/internal/domains/ledger/repository"
	ledgerService "diamondnova-backend/internal/domains/ledger/service"

	taskHandler "diamondnova-backend/internal/domains/task/handler"
	taskRepo "diamondnova-backend/internal/domains/task/repository"
	taskService "diamondnova-backend/internal/domains/task/service"

	giftcodeHandler "diamondnova-backend/internal/domains/giftcode/handler"
	giftcodeRepo "diamondnova-backend/internal/domains/giftcode/repository"
	giftcodeService "diamondnova-backend/internal/domains/giftcode/service"

	withdrawalHandler "diamondnova-backend/internal/domains/withdrawal/handler"
	withdrawalRepo "diamondnova-backend/internal/domains/withdrawal/repository"
	withdrawalService "diamondnova-backend/internal/domains/withdrawal/service"

	vipHandler "diamondnova-backend/internal/domains/vip/handler"
	vipRepo "diamondnova-backend/internal/domains/vip/repository"
	vipService "diamondnova-backend/internal/domains/vip/service"

	notificationHandler "diamondnova-backend/internal/domains/notification/handler"
	notificationRepo "diamondnova-backend/internal/domains/notification/repository"
	notificationService "diamondnova-backend/internal/domains/notification/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application.
// Struct này là "root" của dependency graph.
type Container struct {
	// Infrastructure - singleton, chia sẻ giữa mọi domain
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	Storage    *storage.MinIOStorage
	JWTManager *jwt.Manager

	// Repositories
	LedgerRepo       ledgerRepo.Repository
	AccountRepo      account.Repository
	GateRepo         taskRepo.Repository
	GiftcodeRepo     giftcodeRepo.Repository
	WithdrawalRepo   withdrawalRepo.Repository
	VipRepo          vipRepo.Repository
	NotificationRepo notificationRepo.Repository

	// Services
	LedgerService       ledgerService.Service
	AccountService      account.Service
	TaskService         taskService.Service
	GiftcodeService     giftcodeService.Service
	WithdrawalService   withdrawalService.Service
	VipService          vipService.Service
	NotificationService notificationService.NotificationService

	// Handlers
	AccountHandler      *accountHandler.AccountHandler
	LedgerHandler       *ledgerHandler.LedgerHandler
	TaskHandler         *taskHandler.TaskHandler
	GiftcodeHandler     *giftcodeHandler.GiftcodeHandler
	WithdrawalHandler   *withdrawalHandler.WithdrawalHandler
	VipHandler          *vipHandler.VipHandler
	NotificationHandler *notificationHandler.NotificationHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph.
//
// Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB, Cache, Storage, JWT) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure (ledger trước: account
//    và withdrawal compose các Tx primitive của nó)
// 4. Services - phụ thuộc Repositories
// 5. Handlers - phụ thuộc Services
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ----------------------------------------
	// STEP 1: CONFIG
	// ----------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ----------------------------------------
	// STEP 2: DATABASE
	// ----------------------------------------
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

	// ----------------------------------------
	// STEP 3: REDIS
	// ----------------------------------------
	// Redis là critical path: task token sống trong Redis, không có
	// Redis thì flow vượt link chết. Fail fast thay vì chạy cà nhắc.
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}
	c.Cache = redisCache
	log.Println("✅ Redis connected")

	// ----------------------------------------
	// STEP 4: OBJECT STORAGE (bill ảnh chuyển khoản)
	// ----------------------------------------
	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init minio storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ MinIO storage ready")

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// ----------------------------------------
	// STEP 5-7: REPOSITORIES → SERVICES → HANDLERS
	// ----------------------------------------
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	// Ledger trước: account repo (referral credit trong registration tx)
	// và withdrawal repo (debit/refund) compose các Tx primitive của nó
	c.LedgerRepo = ledgerRepo.NewPostgresRepository(pool)
	c.AccountRepo = accountRepo.NewPostgresRepository(pool, c.LedgerRepo)
	c.GateRepo = taskRepo.NewPostgresRepository(pool)
	c.GiftcodeRepo = giftcodeRepo.NewPostgresRepository(pool)
	c.WithdrawalRepo = withdrawalRepo.NewPostgresRepository(pool, c.LedgerRepo)
	c.VipRepo = vipRepo.NewPostgresRepository(pool)
	c.NotificationRepo = notificationRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.NotificationService = notificationService.NewNotificationService(c.NotificationRepo)

	c.LedgerService = ledgerService.NewLedgerService(c.LedgerRepo, c.Cache, cfg.Rewards)

	c.AccountService = accountService.NewAccountService(c.AccountRepo, c.JWTManager, cfg.Rewards)

	c.TaskService = taskService.NewTaskService(c.GateRepo, c.LedgerService, c.Cache, cfg.Rewards)

	c.GiftcodeService = giftcodeService.NewGiftcodeService(c.GiftcodeRepo, c.LedgerService)

	c.WithdrawalService = withdrawalService.NewWithdrawalService(
		c.WithdrawalRepo,
		c.AccountRepo,
		c.NotificationService, // Notifier
		cfg.Withdrawal,
		cfg.Rewards,
	)

	c.VipService = vipService.NewVipService(
		c.VipRepo,
		c.AccountRepo,
		c.LedgerService,
		c.Storage,
		storage.NewImageProcessor(),
		c.NotificationService, // Notifier
		cfg.Bank,
		cfg.Rewards,
	)
}

func (c *Container) initHandlers() {
	c.AccountHandler = accountHandler.NewAccountHandler(c.AccountService)
	c.LedgerHandler = ledgerHandler.NewLedgerHandler(c.LedgerService)
	c.TaskHandler = taskHandler.NewTaskHandler(c.TaskService)
	c.GiftcodeHandler = giftcodeHandler.NewGiftcodeHandler(c.GiftcodeService)
	c.WithdrawalHandler = withdrawalHandler.NewWithdrawalHandler(c.WithdrawalService)
	c.VipHandler = vipHandler.NewVipHandler(c.VipService)
	c.NotificationHandler = notificationHandler.NewNotificationHandler(c.NotificationService)
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
