package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/competence-ledger/internal/app"
	"github.com/yungbote/competence-ledger/internal/platform/shutdown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	a.Start()

	ctx, stop := shutdown.NotifyContext(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(a.Cfg.Addr()) }()

	err = shutdown.Wait(ctx, errCh, shutdownTimeout, a.Shutdown)
	stop()
	if err != nil {
		a.Log.Error("Server exited", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("Server stopped")
	a.Close()
}
