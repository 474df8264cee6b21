package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbdesk/kb-approval-backend/internal/config"
	"github.com/kbdesk/kb-approval-backend/internal/handler"
	"github.com/kbdesk/kb-approval-backend/internal/middleware"
	"github.com/kbdesk/kb-approval-backend/internal/migration"
	"github.com/kbdesk/kb-approval-backend/internal/repository"
	"github.com/kbdesk/kb-approval-backend/internal/routes"
	"github.com/kbdesk/kb-approval-backend/internal/service"
	pkgcache "github.com/kbdesk/kb-approval-backend/pkg/cache"
	"github.com/kbdesk/kb-approval-backend/pkg/jwt"
	pkglogger "github.com/kbdesk/kb-approval-backend/pkg/logger"
	pkgredis "github.com/kbdesk/kb-approval-backend/pkg/redis"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logg := pkglogger.GetLogger()
	logg.Info().Str("env", env).Strs("dotenv", dotenvFiles).Msg("starting kb-approval-backend")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg, env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logg.Info().Msg("connected to MySQL")

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		logg.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		redisClient = nil
	} else {
		logg.Info().Msg("connected to Redis")
	}
	cacheService := pkgcache.NewService(redisClient)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWTExpiry())

	// Repositories
	revisionRepo := repository.NewRevisionRepository(db)
	editHistoryRepo := repository.NewEditHistoryRepository(db)
	approvalRepo := repository.NewApprovalHistoryRepository(db)
	instructionRepo := repository.NewInstructionRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	permissionSvc := service.NewPermissionService()
	workflowSvc := service.NewWorkflowService(revisionRepo)
	editHistorySvc := service.NewEditHistoryService(editHistoryRepo, userRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, userRepo)
	instructionSvc := service.NewInstructionService(instructionRepo, userRepo)
	approvalSvc := service.NewApprovalService(
		db, revisionRepo, approvalRepo, instructionRepo, articleRepo, userRepo,
		notificationSvc, cacheService, cfg.Revision.ReviewDeadlineDays,
	)
	revisionSvc := service.NewRevisionService(
		db, revisionRepo, articleRepo, userRepo,
		permissionSvc, workflowSvc, editHistorySvc, notificationSvc,
		cacheService, cfg.Revision.ReasonMinLength,
	)
	articleSvc := service.NewArticleService(articleRepo, cacheService)

	// Handlers
	revisionHandler := handler.NewRevisionHandler(revisionSvc, editHistorySvc)
	approvalHandler := handler.NewApprovalHandler(approvalSvc)
	instructionHandler := handler.NewInstructionHandler(instructionSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	articleHandler := handler.NewArticleHandler(articleSvc)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	routes.Setup(
		router,
		revisionHandler,
		approvalHandler,
		instructionHandler,
		notificationHandler,
		articleHandler,
		jwtManager,
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logg.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func initDB(cfg *config.Config, env string) (*gorm.DB, error) {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.Database.User
	mc.Passwd = cfg.Database.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	mc.DBName = cfg.Database.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}

	logLevel := gormlogger.Warn
	if env == "local" || env == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(mc.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
