package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

const DefaultChannel = "competence-ledger"

// RedisNotifier publishes LevelEvents as JSON on a redis pub/sub channel.
type RedisNotifier struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisNotifier(log *logger.Logger, rdb *goredis.Client, channel string) (*RedisNotifier, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		log:     log.With("service", "RedisNotifier", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (n *RedisNotifier) Channel() string { return n.channel }

// NotifyLevel never fails the mutation; publish errors are logged.
func (n *RedisNotifier) NotifyLevel(ctx context.Context, ch ledger.Change) {
	if err := n.Publish(ctx, FromChange(ch)); err != nil {
		n.log.Warn("Level event publish failed", "code", ch.Code, "level", ch.Level, "error", err)
	}
}

func (n *RedisNotifier) Publish(ctx context.Context, ev LevelEvent) error {
	if n == nil || n.rdb == nil {
		return fmt.Errorf("redis notifier not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, raw).Err()
}

// Subscribe calls onEvent for every event on the channel until ctx is done.
// It returns once the subscription is confirmed.
func (n *RedisNotifier) Subscribe(ctx context.Context, onEvent func(LevelEvent)) error {
	if n == nil || n.rdb == nil {
		return fmt.Errorf("redis notifier not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := n.rdb.Subscribe(ctx, n.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-msgs:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev LevelEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					n.log.Warn("Bad level event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}
