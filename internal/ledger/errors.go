package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("competency not found")
	ErrAtMaxLevel        = errors.New("competency already at maximum level")
	ErrAtMinLevel        = errors.New("competency already at minimum level")
	ErrMalformedTaxonomy = errors.New("malformed taxonomy")
)

type TaxonomyErrorCode string

const (
	TaxonomyErrorInvalidCode   TaxonomyErrorCode = "invalid_code"
	TaxonomyErrorDuplicateCode TaxonomyErrorCode = "duplicate_code"
	TaxonomyErrorEmpty         TaxonomyErrorCode = "empty"
)

// TaxonomyError reports why a Node Index could not be built. It matches
// ErrMalformedTaxonomy with errors.Is.
type TaxonomyError struct {
	Code    TaxonomyErrorCode
	NodeRef string
	GroupID string
}

func (e *TaxonomyError) Error() string {
	if e == nil {
		return ErrMalformedTaxonomy.Error()
	}
	if e.NodeRef == "" {
		return fmt.Sprintf("%s (code=%s)", ErrMalformedTaxonomy, e.Code)
	}
	return fmt.Sprintf("%s (code=%s node=%q group=%q)", ErrMalformedTaxonomy, e.Code, e.NodeRef, e.GroupID)
}

func (e *TaxonomyError) Unwrap() error { return ErrMalformedTaxonomy }
