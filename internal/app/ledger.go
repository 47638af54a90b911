package app

import (
	"context"
	"errors"

	"github.com/yungbote/competence-ledger/internal/observability"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

// LedgerStack is an opened store and the hydrated ledger service over it.
// The HTTP server and ledgerctl both start from here.
type LedgerStack struct {
	Store    *StoreHandle
	Services Services
}

func OpenLedger(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (*LedgerStack, error) {
	store, err := OpenStore(log, cfg)
	if err != nil {
		return nil, err
	}
	serviceset, err := wireServices(ctx, log, cfg, store, metrics)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &LedgerStack{Store: store, Services: serviceset}, nil
}

func (s *LedgerStack) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, c := range s.Services.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.Store.Close())
	return errors.Join(errs...)
}
