package app

import (
	"database/sql"
	"os"

	"approval-portal/internal/application"
	"approval-portal/internal/approval"
	"approval-portal/internal/auth"
	"approval-portal/internal/export"
	"approval-portal/internal/messaging/kafka"
	"approval-portal/internal/middleware"
	"approval-portal/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	applicationRepo := application.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- File storage ---
	uploadRoot := os.Getenv("UPLOAD_DIR")
	if uploadRoot == "" {
		uploadRoot = "uploads"
	}
	fileStore := application.NewDiskStore(uploadRoot, zap.L())

	// --- Services ---
	approvalService := approval.NewServiceWithOutbox(db, approvalRepo, applicationRepo, outboxRepo, rdb)
	applicationService := application.NewServiceWithOutbox(db, applicationRepo, fileStore, approvalService, outboxRepo, rdb)
	authService := auth.NewService(authRepo)
	notificationService := notification.NewService(notificationRepo)

	// --- Handlers ---
	applicationHandler := application.NewHandler(applicationService)
	approvalHandler := approval.NewHandler(approvalService)
	authHandler := auth.NewHandler(authService)
	exportHandler := export.NewHandler(applicationService)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Middleware & Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	api := router.Group("/api/v1")
	api.Use(middleware.Idempotency(rdb))
	{
		auth.RegisterRoutes(api, authHandler)
		application.RegisterRoutes(api, applicationHandler)
		approval.RegisterRoutes(api, approvalHandler)
		export.RegisterRoutes(api, exportHandler)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return nil
}
