package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/competence-ledger/internal/services"
)

type HealthHandler struct {
	ledger services.LedgerService
}

// NewHealthHandler reports liveness; with a ledger it also reports the
// hydrated revision and node count.
func NewHealthHandler(ledger services.LedgerService) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.ledger != nil {
		body["revision"] = h.ledger.Revision()
		body["nodes"] = len(h.ledger.Nodes(c.Request.Context()))
	}
	c.JSON(http.StatusOK, body)
}
