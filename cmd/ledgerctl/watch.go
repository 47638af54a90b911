package main

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/yungbote/competence-ledger/internal/realtime"
)

func (c *cli) watchCmd() *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print level changes published by a server on redis",
		Long: `Subscribes to the redis channel a server publishes on when
LEDGER_NOTIFY_REDIS is set, and prints every level change until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if cfg.RedisAddr == "" {
				return fmt.Errorf("watch needs a redis address (--redis-addr or REDIS_ADDR)")
			}
			if channel == "" {
				channel = cfg.RedisChannel
			}
			rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, DialTimeout: 5 * time.Second})
			defer rdb.Close()

			ctx := cmd.Context()
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := rdb.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}

			sub, err := realtime.NewRedisNotifier(c.log, rdb, channel)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := sub.Subscribe(ctx, func(ev realtime.LevelEvent) {
				fmt.Fprintln(out, formatEvent(ev))
			}); err != nil {
				return err
			}
			fmt.Fprintln(out, mutedStyle.Render("Watching "+sub.Channel()+" (Ctrl+C to stop)"))
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "redis channel (default REDIS_CHANNEL)")
	return cmd
}

func formatEvent(ev realtime.LevelEvent) string {
	switch ev.Event {
	case realtime.EventReloaded:
		return fmt.Sprintf("%s  ledger reloaded (revision %s)", ev.At, ev.Revision)
	default:
		return fmt.Sprintf("%s  %s: %s -> %s", ev.At, ev.Code, levelBadge(ev.Previous), levelBadge(ev.Level))
	}
}
