package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	httpserver "github.com/yungbote/competence-ledger/internal/http"
	"github.com/yungbote/competence-ledger/internal/observability"
	"github.com/yungbote/competence-ledger/internal/platform/envutil"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Stack    *LedgerStack
	Services Services
	Handlers Handlers
	Metrics  *observability.Metrics
	Server   *httpserver.Server
	Router   *gin.Engine

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	log, err := logger.New(envutil.GetEnv("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	return NewWithConfig(context.Background(), log, cfg)
}

// NewWithConfig wires the app from an explicit config. The ledger is hydrated
// before it returns; a malformed taxonomy or unreadable store is fatal.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	otelShutdown := observability.InitOTel(ctx, log, cfg.OTel)

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	stack, err := OpenLedger(ctx, log, cfg, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, stack.Services)
	server := wireServer(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Stack:        stack,
		Services:     stack.Services,
		Handlers:     handlerset,
		Metrics:      metrics,
		Server:       server,
		Router:       server.Engine,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Start() {
	if a == nil {
		return
	}
	a.Log.Info("Ledger ready", "revision", a.Services.Ledger.Revision(), "store", a.Stack.Store.Mode)
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if err := a.Stack.Close(); err != nil {
		a.Log.Warn("Ledger store close failed", "error", err)
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	a.Log.Sync()
}
