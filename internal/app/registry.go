package app

import (
	"database/sql"

	"jovenva-attendance/internal/attendance"
	"jovenva-attendance/internal/feedback"
	"jovenva-attendance/internal/messaging/kafka"
	"jovenva-attendance/internal/middleware"
	"jovenva-attendance/internal/schedule"
	"jovenva-attendance/internal/shift"
	"jovenva-attendance/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg Config,
	calendar *shift.Calendar,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) {
	logger := zap.L()

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	feedbackRepo := feedback.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	attendanceService := attendance.NewServiceWithOutbox(db, attendanceRepo, outboxRepo, calendar, shift.SystemClock{}, logger)
	scheduleService := schedule.NewService(db, scheduleRepo, rdb, logger)
	feedbackService := feedback.NewService(feedbackRepo, logger)
	userService := user.NewService(userRepo, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	scheduleHandler := schedule.NewHandler(scheduleService, logger)
	feedbackHandler := feedback.NewHandler(feedbackService, logger)
	userHandler := user.NewHandler(userService, logger)

	// --- Routes Registration ---
	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, auth, rdb)
		schedule.RegisterRoutes(api, scheduleHandler, auth)
		feedback.RegisterRoutes(api, feedbackHandler, auth)
		user.RegisterRoutes(api, userHandler, auth)
	}
}
