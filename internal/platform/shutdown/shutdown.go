package shutdown

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"
)

// NotifyContext is cancelled on SIGINT or SIGTERM.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Wait blocks until serve reports on errCh or ctx is cancelled. On
// cancellation it calls stop with a context bounded by timeout and then
// waits for serve to return. A nil serve result after stop is a clean exit.
func Wait(ctx context.Context, errCh <-chan error, timeout time.Duration, stop func(context.Context) error) error {
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := stop(stopCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	select {
	case err := <-errCh:
		return err
	case <-stopCtx.Done():
		return fmt.Errorf("graceful shutdown: %w", stopCtx.Err())
	}
}
