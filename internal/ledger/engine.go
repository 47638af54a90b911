package ledger

import (
	"context"
	"time"

	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

// Flusher persists the whole ledger. It must not return before the write is durable.
type Flusher interface {
	Save(ctx context.Context, l *Ledger) error
}

// Notifier receives every applied level change, e.g. to repaint a node.
type Notifier interface {
	NotifyLevel(ctx context.Context, ch Change)
}

// Change describes one applied ±1 level step.
type Change struct {
	Code     string    `json:"code"`
	Previous int       `json:"previous"`
	Level    int       `json:"level"`
	At       time.Time `json:"at"`
	// Synced is false when the change is applied in memory but the flush failed.
	Synced bool `json:"synced"`
}

// Engine is the only writer of node level and history.
type Engine struct {
	ledger   *Ledger
	clock    *Clock
	flusher  Flusher
	notifier Notifier
	log      *logger.Logger
}

func NewEngine(l *Ledger, clock *Clock, flusher Flusher, notifier Notifier, log *logger.Logger) *Engine {
	if clock == nil {
		clock = NewClock(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		ledger:   l,
		clock:    clock,
		flusher:  flusher,
		notifier: notifier,
		log:      log.With("service", "LevelEngine"),
	}
}

func (e *Engine) Ledger() *Ledger { return e.ledger }

// Increase raises code by one level and stamps history[newLevel].
// At level 5 it returns ErrAtMaxLevel without touching state or storage.
// A flush failure is returned alongside the applied Change; the in-memory
// mutation is kept.
func (e *Engine) Increase(ctx context.Context, code string) (Change, error) {
	n, err := e.ledger.Lookup(code)
	if err != nil {
		return Change{}, err
	}
	if n.level >= domain.MaxLevel {
		return Change{Code: code, Previous: n.level, Level: n.level}, ErrAtMaxLevel
	}
	at := e.clock.Now()
	ch := Change{Code: code, Previous: n.level, Level: n.level + 1, At: at}
	n.level = ch.Level
	n.history[ch.Level] = at.Format(domain.TimestampLayout)
	return e.commit(ctx, ch)
}

// Decrease lowers code by one level and deletes the vacated level's timestamp,
// so reaching that level again records a fresh one.
// At level 0 it returns ErrAtMinLevel without touching state or storage.
func (e *Engine) Decrease(ctx context.Context, code string) (Change, error) {
	n, err := e.ledger.Lookup(code)
	if err != nil {
		return Change{}, err
	}
	if n.level <= domain.MinLevel {
		return Change{Code: code, Previous: n.level, Level: n.level}, ErrAtMinLevel
	}
	ch := Change{Code: code, Previous: n.level, Level: n.level - 1, At: e.clock.Now()}
	delete(n.history, ch.Previous)
	n.level = ch.Level
	return e.commit(ctx, ch)
}

// commit flushes first and notifies after, so subscribers see Synced.
func (e *Engine) commit(ctx context.Context, ch Change) (Change, error) {
	e.log.Debug("Level changed", "code", ch.Code, "previous", ch.Previous, "level", ch.Level)
	var err error
	if e.flusher != nil {
		err = e.flusher.Save(ctx, e.ledger)
	}
	ch.Synced = err == nil
	if err != nil {
		e.log.Error("Ledger flush failed, in-memory state is ahead of storage", "code", ch.Code, "level", ch.Level, "error", err)
	}
	if e.notifier != nil {
		e.notifier.NotifyLevel(ctx, ch)
	}
	return ch, err
}
