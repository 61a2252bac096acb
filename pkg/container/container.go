package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"what-to-watch/internal/config"
	opinionHandler "what-to-watch/internal/domains/opinion/handler"
	opinionRepo "what-to-watch/internal/domains/opinion/repository"
	opinionService "what-to-watch/internal/domains/opinion/service"
	"what-to-watch/internal/infrastructure/database"
	"what-to-watch/internal/shared/metrics"
	"what-to-watch/pkg/csrf"
	"what-to-watch/pkg/logger"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Struct này là "root" của dependency graph
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config *config.Config       // Application config
	DB     *database.PostgresDB // Database connection pool
	Tokens *csrf.Manager        // nil when CSRF_ENABLED=false

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================
	OpinionRepo opinionRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================
	OpinionService    opinionService.ServiceInterface
	BulkImportService opinionService.BulkImportServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	WebHandler *opinionHandler.WebHandler
	APIHandler *opinionHandler.APIHandler
}

// NewContainer tạo và initialize toàn bộ dependency graph
//
// Thứ tự initialization:
// 1. Config (không phụ thuộc gì)
// 2. Infrastructure (DB, CSRF) - phụ thuộc Config
// 3. Repositories - phụ thuộc Infrastructure
// 4. Services - phụ thuộc Repositories
// 5. Handlers - phụ thuộc Services
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	applyLogConfig(cfg)
	log.Info().
		Str("environment", cfg.App.Environment).
		Str("log_level", cfg.Log.Level).
		Msg("✅ Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
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
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	if err := metrics.RegisterPoolCollector(metrics.NewPoolCollector(db)); err != nil {
		log.Warn().Err(err).Msg("Pool metrics not registered")
	}

	// ========================================
	// STEP 3: FORM TOKENS
	// ========================================
	if cfg.Security.CSRFEnabled {
		c.Tokens = csrf.NewManager(cfg.Security.SecretKey, cfg.Security.CSRFTokenTTL)
	} else {
		log.Warn().Msg("⚠️  CSRF protection disabled")
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// applyLogConfig makes LOG_LEVEL from the loaded config authoritative over
// whatever the entrypoint bootstrapped with.
func applyLogConfig(cfg *config.Config) {
	logger.SetLevel(cfg.Log.Level)
}

func (c *Container) initRepositories() {
	c.OpinionRepo = opinionRepo.NewPostgresRepository(c.DB.Pool)
}

func (c *Container) initServices() {
	c.OpinionService = opinionService.NewOpinionService(c.OpinionRepo)
	c.BulkImportService = opinionService.NewBulkImportService(c.OpinionService)
}

func (c *Container) initHandlers() {
	// A nil *csrf.Manager must not become a non-nil interface
	var tokens opinionHandler.TokenManager
	if c.Tokens != nil {
		tokens = c.Tokens
	}

	c.WebHandler = opinionHandler.NewWebHandler(c.OpinionService, tokens, c.Config.IsProduction())
	c.APIHandler = opinionHandler.NewAPIHandler(c.OpinionService, c.BulkImportService)
}

// Cleanup đóng tất cả connections
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database pool")
		} else {
			log.Info().Msg("✅ Database connections closed")
		}
	}
}
