package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/competence-ledger/internal/http/handlers"
	httpMW "github.com/yungbote/competence-ledger/internal/http/middleware"
	"github.com/yungbote/competence-ledger/internal/observability"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	HealthHandler     *httpH.HealthHandler
	CompetencyHandler *httpH.CompetencyHandler
	TransferHandler   *httpH.TransferHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = observability.DefaultServiceName
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Competencies
		if cfg.CompetencyHandler != nil {
			api.GET("/competencies", cfg.CompetencyHandler.List)
			api.GET("/competencies/:code", cfg.CompetencyHandler.Get)
			api.POST("/competencies/:code/increase", cfg.CompetencyHandler.Increase)
			api.POST("/competencies/:code/decrease", cfg.CompetencyHandler.Decrease)
			api.GET("/history", cfg.CompetencyHandler.History)
		}

		// Export / import / reset
		if cfg.TransferHandler != nil {
			api.GET("/export", cfg.TransferHandler.Export)
			api.POST("/import", cfg.TransferHandler.Import)
			api.POST("/reset", cfg.TransferHandler.Reset)
			api.POST("/reload", cfg.TransferHandler.Reload)
		}
	}

	return r
}
