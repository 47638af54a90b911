package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/competence-ledger/internal/http/response"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/persistence"
	"github.com/yungbote/competence-ledger/internal/services"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var ledgerErrors = []errorMapping{
	{ledger.ErrNotFound, http.StatusNotFound, "not_found"},
	{ledger.ErrAtMaxLevel, http.StatusConflict, "at_max_level"},
	{ledger.ErrAtMinLevel, http.StatusConflict, "at_min_level"},
	{persistence.ErrInvalidFormat, http.StatusBadRequest, "invalid_format"},
	{persistence.ErrNothingToExport, http.StatusNotFound, "nothing_to_export"},
	{persistence.ErrResetNotConfirmed, http.StatusBadRequest, "confirmation_required"},
	{services.ErrImportInProgress, http.StatusConflict, "import_in_progress"},
	{persistence.ErrStorageWrite, http.StatusServiceUnavailable, "storage_write_failed"},
	{persistence.ErrCorruptSnapshot, http.StatusInternalServerError, "corrupt_snapshot"},
	{ledger.ErrMalformedTaxonomy, http.StatusInternalServerError, "malformed_taxonomy"},
}

func classify(err error) (int, string) {
	for _, m := range ledgerErrors {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func respondLedgerError(c *gin.Context, err error, data any) {
	status, code := classify(err)
	_ = c.Error(err)
	response.RespondErrorData(c, status, code, err, data)
}
