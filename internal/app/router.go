package app

import (
	httpserver "github.com/yungbote/competence-ledger/internal/http"
	"github.com/yungbote/competence-ledger/internal/observability"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *httpserver.Server {
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:               log,
		ServiceName:       cfg.OTel.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           metrics,
		HealthHandler:     handlers.Health,
		CompetencyHandler: handlers.Competency,
		TransferHandler:   handlers.Transfer,
	})
}
