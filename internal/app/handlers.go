package app

import (
	httpH "github.com/yungbote/competence-ledger/internal/http/handlers"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Competency *httpH.CompetencyHandler
	Transfer   *httpH.TransferHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(services.Ledger),
		Competency: httpH.NewCompetencyHandler(log, services.Ledger),
		Transfer:   httpH.NewTransferHandler(log, services.Ledger),
	}
}
