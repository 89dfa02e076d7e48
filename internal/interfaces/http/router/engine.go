package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/erp/retail/internal/interfaces/http/handler"
	"github.com/erp/retail/internal/interfaces/http/middleware"
)

// EngineConfig holds the cross-cutting HTTP settings
type EngineConfig struct {
	Mode           string
	ServiceName    string
	MaxBodySize    int64
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Tracing        bool
	Profiling      bool
	// Meter enables request metrics when set
	Meter metric.Meter
}

// NewEngine builds the gin engine with the shared middleware chain and
// the unversioned routes (health, not-found). API groups are mounted
// afterwards through Router.
func NewEngine(cfg EngineConfig, log *zap.Logger, health *handler.HealthHandler) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(logger.Recovery(log), logger.GinMiddleware(log))
	if cfg.Tracing {
		engine.Use(middleware.Tracing(cfg.ServiceName))
	}
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}
	engine.Use(
		middleware.Profiling(cfg.Profiling),
		middleware.CORS(cfg.CORS),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	if health != nil {
		engine.GET("/health", health.Health)
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", logger.GetRequestID(c.Request.Context()),
		))
	})
	return engine, nil
}
