package app

import (
	"os"

	"approval-portal/internal/application"
	"approval-portal/internal/approval"
	"approval-portal/internal/auth"
	"approval-portal/internal/notification"
	"approval-portal/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure, migrates the schema, and registers
// every module's routes on the router.
func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	if err := gormDB.AutoMigrate(
		&application.Application{},
		&approval.Stage{},
		&approval.Route{},
		&auth.User{},
		&notification.Notification{},
	); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	return registerModules(router, sqlDB, gormDB, redisClient)
}
