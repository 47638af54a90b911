package app

import (
	"context"
	"fmt"
	"io"

	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/observability"
	"github.com/yungbote/competence-ledger/internal/persistence"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/realtime"
	"github.com/yungbote/competence-ledger/internal/services"
	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

type Services struct {
	Gateway  *persistence.Gateway
	Ledger   services.LedgerService
	Notifier realtime.Multi

	closers []io.Closer
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, store *StoreHandle, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	tax, err := taxonomy.Load(cfg.TaxonomyPath, log)
	if err != nil {
		return Services{}, fmt.Errorf("load taxonomy: %w", err)
	}

	notifiers := []ledger.Notifier{realtime.NewLogNotifier(log)}
	if metrics != nil {
		notifiers = append(notifiers, metrics)
	}
	var closers []io.Closer
	if cfg.NotifyRedis {
		rn, closer, err := wireRedisNotifier(log, cfg, store)
		if err != nil {
			return Services{}, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		notifiers = append(notifiers, rn)
	}
	notifier := realtime.NewMulti(notifiers...)

	clock := ledger.NewClock(nil)
	gw := persistence.NewGateway(store.Store, clock, log, persistence.Config{
		Key:            cfg.StoreKey,
		MaxImportBytes: cfg.MaxImportBytes,
	})

	var opts []services.LedgerOption
	if metrics != nil {
		opts = append(opts, services.WithLevelGauge(metrics))
	}
	ledgerService, err := services.NewLedgerService(ctx, log, gw, tax, clock, notifier, opts...)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return Services{}, fmt.Errorf("init ledger: %w", err)
	}
	return Services{Gateway: gw, Ledger: ledgerService, Notifier: notifier, closers: closers}, nil
}

// wireRedisNotifier reuses the store's redis client when there is one. A
// client dialed here is returned as the closer.
func wireRedisNotifier(log *logger.Logger, cfg Config, store *StoreHandle) (*realtime.RedisNotifier, io.Closer, error) {
	if store != nil && store.Redis != nil {
		rn, err := realtime.NewRedisNotifier(log, store.Redis, cfg.RedisChannel)
		return rn, nil, err
	}
	if cfg.RedisAddr == "" {
		return nil, nil, &StoreProviderBootstrapError{
			Code:  StoreProviderBootstrapErrorMissingSetting,
			Mode:  string(StoreModeRedis),
			Cause: fmt.Errorf("LEDGER_NOTIFY_REDIS requires REDIS_ADDR"),
		}
	}
	rs, err := newRedisStore(log, kvRedisConfig(cfg))
	if err != nil {
		return nil, nil, classifyStoreBootstrapError(StoreModeRedis, err)
	}
	rn, err := realtime.NewRedisNotifier(log, rs.Client(), cfg.RedisChannel)
	if err != nil {
		_ = rs.Close()
		return nil, nil, err
	}
	return rn, rs, nil
}
