package bootstrap

import (
	"github.com/eleven-am/interview-backend/internal/health"
	"github.com/eleven-am/interview-backend/internal/interview"
	"github.com/eleven-am/interview-backend/internal/synthesis"
	"github.com/eleven-am/interview-backend/internal/transcription"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func ProvideHealthHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	sttConfig transcription.Config,
	ttsConfig synthesis.Config,
	manager *interview.Manager,
) *health.Handler {
	return health.NewHandler(db, redisClient, sttConfig, ttsConfig, manager, version)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
