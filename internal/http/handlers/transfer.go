package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/competence-ledger/internal/http/response"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/services"
)

// TransferHandler serves export, import, reset and reload.
type TransferHandler struct {
	log    *logger.Logger
	ledger services.LedgerService
}

func NewTransferHandler(log *logger.Logger, ledgerService services.LedgerService) *TransferHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferHandler{
		log:    log.With("handler", "TransferHandler"),
		ledger: ledgerService,
	}
}

// GET /api/export
func (h *TransferHandler) Export(c *gin.Context) {
	out, err := h.ledger.Export(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err, nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.FileName))
	c.Data(http.StatusOK, "application/json; charset=utf-8", out.Body)
}

// POST /api/import
// Accepts the export file either as the raw request body or as multipart field "file".
func (h *TransferHandler) Import(c *gin.Context) {
	body, closeFn, err := importBody(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	defer closeFn()

	res, err := h.ledger.Import(c.Request.Context(), body)
	if err != nil {
		respondLedgerError(c, err, nil)
		return
	}
	response.RespondAccepted(c, gin.H{"import": res, "reload_required": true})
}

func importBody(c *gin.Context) (io.Reader, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, nil, fmt.Errorf("multipart field \"file\": %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}
	if c.Request.Body == nil {
		return strings.NewReader(""), func() {}, nil
	}
	return c.Request.Body, func() {}, nil
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// POST /api/reset
func (h *TransferHandler) Reset(c *gin.Context) {
	var req resetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	if err := h.ledger.Reset(c.Request.Context(), req.Confirm); err != nil {
		respondLedgerError(c, err, nil)
		return
	}
	response.RespondOK(c, gin.H{"reset": true, "reload_required": true})
}

// POST /api/reload
func (h *TransferHandler) Reload(c *gin.Context) {
	res, err := h.ledger.Reload(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err, nil)
		return
	}
	c.Header(headerRevision, res.Revision)
	response.RespondOK(c, gin.H{"reload": res})
}
