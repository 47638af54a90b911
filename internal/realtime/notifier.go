// Package realtime fans applied level changes out to anything that needs to
// repaint: logs, a redis channel, in-process subscribers.
package realtime

import (
	"context"
	"time"

	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/platform/ctxutil"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

type EventType string

const (
	EventLevelChanged EventType = "LevelChanged"
	EventReloaded     EventType = "LedgerReloaded"
)

// LevelEvent is the wire form of a ledger.Change.
type LevelEvent struct {
	Event      EventType `json:"event"`
	Code       string    `json:"code,omitempty"`
	SVGID      string    `json:"svg_id,omitempty"`
	Previous   int       `json:"previous"`
	Level      int       `json:"level"`
	LevelLabel string    `json:"level_label,omitempty"`
	At         string    `json:"at,omitempty"`
	Revision   string    `json:"revision,omitempty"`
	Synced     bool      `json:"synced"`
}

func FromChange(ch ledger.Change) LevelEvent {
	ev := LevelEvent{
		Event:      EventLevelChanged,
		Code:       ch.Code,
		SVGID:      domain.SVGID(ch.Code),
		Previous:   ch.Previous,
		Level:      ch.Level,
		LevelLabel: domain.LevelLabel(ch.Level),
		Synced:     ch.Synced,
	}
	if !ch.At.IsZero() {
		ev.At = ch.At.UTC().Format(domain.TimestampLayout)
	}
	return ev
}

// ReloadedEvent tells subscribers to refetch every node.
func ReloadedEvent(revision string, at time.Time) LevelEvent {
	return LevelEvent{Event: EventReloaded, Revision: revision, At: at.UTC().Format(domain.TimestampLayout), Synced: true}
}

// Publisher is implemented by notifiers that can carry events other than level changes.
type Publisher interface {
	Publish(ctx context.Context, ev LevelEvent) error
}

type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.With("service", "LogNotifier")}
}

func (n *LogNotifier) NotifyLevel(ctx context.Context, ch ledger.Change) {
	_ = n.Publish(ctx, FromChange(ch))
}

func (n *LogNotifier) Publish(ctx context.Context, ev LevelEvent) error {
	fields := []interface{}{"event", ev.Event, "code", ev.Code, "previous", ev.Previous, "level", ev.Level, "revision", ev.Revision}
	n.log.Info("Ledger event", append(fields, ctxutil.LogFields(ctx)...)...)
	return nil
}

// Multi forwards to every non-nil notifier in order.
type Multi []ledger.Notifier

func NewMulti(notifiers ...ledger.Notifier) Multi {
	out := make(Multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m Multi) NotifyLevel(ctx context.Context, ch ledger.Change) {
	for _, n := range m {
		n.NotifyLevel(ctx, ch)
	}
}

// Publish forwards to the members that implement Publisher and returns the first error.
func (m Multi) Publish(ctx context.Context, ev LevelEvent) error {
	var first error
	for _, n := range m {
		p, ok := n.(Publisher)
		if !ok {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
