package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/competence-ledger/internal/http/response"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/persistence"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/services"
)

const headerRevision = "X-Ledger-Revision"

type CompetencyHandler struct {
	log    *logger.Logger
	ledger services.LedgerService
}

func NewCompetencyHandler(log *logger.Logger, ledgerService services.LedgerService) *CompetencyHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CompetencyHandler{
		log:    log.With("handler", "CompetencyHandler"),
		ledger: ledgerService,
	}
}

// GET /api/competencies
func (h *CompetencyHandler) List(c *gin.Context) {
	c.Header(headerRevision, h.ledger.Revision())
	nodes := h.ledger.Nodes(c.Request.Context())
	response.RespondOK(c, gin.H{"revision": h.ledger.Revision(), "competencies": nodes})
}

// GET /api/competencies/:code
func (h *CompetencyHandler) Get(c *gin.Context) {
	node, err := h.ledger.Node(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondLedgerError(c, err, nil)
		return
	}
	c.Header(headerRevision, h.ledger.Revision())
	response.RespondOK(c, gin.H{"competency": node})
}

// POST /api/competencies/:code/increase
func (h *CompetencyHandler) Increase(c *gin.Context) {
	h.step(c, h.ledger.Increase)
}

// POST /api/competencies/:code/decrease
func (h *CompetencyHandler) Decrease(c *gin.Context) {
	h.step(c, h.ledger.Decrease)
}

func (h *CompetencyHandler) step(c *gin.Context, op func(context.Context, string) (services.NodeView, ledger.Change, error)) {
	node, change, err := op(c.Request.Context(), c.Param("code"))
	c.Header(headerRevision, h.ledger.Revision())
	if err != nil {
		// A failed flush still applied the step in memory; report the node as it now is.
		if errors.Is(err, persistence.ErrStorageWrite) {
			h.log.Warn("Level applied but not persisted", "code", node.Code, "level", node.Level, "error", err)
			respondLedgerError(c, err, gin.H{"competency": node, "change": change, "synced": false})
			return
		}
		var data any
		if node.Code != "" {
			data = gin.H{"competency": node}
		}
		respondLedgerError(c, err, data)
		return
	}
	response.RespondOK(c, gin.H{"competency": node, "change": change, "synced": true})
}

// GET /api/history?sort=date|code
func (h *CompetencyHandler) History(c *gin.Context) {
	mode := ledger.ParseTimelineSort(c.Query("sort"))
	events := h.ledger.Timeline(c.Request.Context(), mode)
	if events == nil {
		events = []ledger.Event{}
	}
	response.RespondOK(c, gin.H{"sort": mode, "events": events})
}
