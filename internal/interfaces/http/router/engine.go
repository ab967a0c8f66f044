package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/docs"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig selects the global middleware stack of the HTTP engine
type EngineConfig struct {
	Logger *zap.Logger
	HTTP   config.HTTPConfig

	// TracingEnabled adds otelgin server spans named by route pattern
	TracingEnabled bool
	ServiceName    string

	// Meter records HTTP server metrics; nil disables them
	Meter metric.Meter

	// RateLimiter throttles every request per client IP; nil disables it
	RateLimiter middleware.Limiter

	// Docs mounts /openapi.yaml and the Swagger UI
	Docs bool
}

// NewEngine creates a gin engine with the global middleware stack:
// request id, panic recovery, tracing, request logging, security headers,
// CORS, body limit, metrics and rate limiting. Unknown routes get a 404 envelope.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	if cfg.TracingEnabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter: cfg.RateLimiter,
			Logger:  log,
		}))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			shared.KindNotFound, dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c),
		))
	})

	if cfg.Docs {
		docs.Register(engine)
	}

	return engine
}
