package app

import (
	"fmt"

	"jovenva-attendance/internal/middleware"
	"jovenva-attendance/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects Postgres and Redis and mounts every module on router.
// The returned cleanup closes both connections.
func BuildApp(router *gin.Engine, cfg Config) (func(), error) {
	logger := zap.L().Named("app")

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	calendar, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, connectMaxRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, connectMaxRetries)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		middleware.RateLimitByIP(rate.Limit(20), 40),
	)

	registerModules(router, cfg, calendar, sqlDB, gormDB, rdb)

	logger.Info("modules registered",
		zap.String("timezone", cfg.Timezone),
		zap.Bool("fold_early_morning", cfg.Policy.FoldEarlyMorning),
		zap.Bool("weekend_morning_sessions", cfg.Policy.WeekendMorningSessions),
	)

	return func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	}, nil
}
