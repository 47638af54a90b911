package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/persistence"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/realtime"
	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

var ErrImportInProgress = errors.New("an import is already in progress")

// NodeView is a read-only copy of one competency node.
type NodeView struct {
	Code       string         `json:"code"`
	SVGID      string         `json:"svg_id"`
	Label      string         `json:"label"`
	GroupID    string         `json:"group_id"`
	GroupLabel string         `json:"group_label,omitempty"`
	LevelGroup int            `json:"level_group"`
	Level      int            `json:"level"`
	LevelLabel string         `json:"level_label"`
	History    domain.History `json:"history"`
}

type ReloadResult struct {
	Revision  string   `json:"revision"`
	Nodes     int      `json:"nodes"`
	Applied   int      `json:"applied"`
	Ignored   []string `json:"ignored,omitempty"`
	Sanitized []string `json:"sanitized,omitempty"`
}

type ImportResult struct {
	Nodes          int  `json:"nodes"`
	ReloadRequired bool `json:"reload_required"`
}

// LedgerService owns the hydrated ledger for the lifetime of the process.
type LedgerService interface {
	Reload(ctx context.Context) (ReloadResult, error)
	Nodes(ctx context.Context) []NodeView
	Node(ctx context.Context, ref string) (NodeView, error)
	Increase(ctx context.Context, ref string) (NodeView, ledger.Change, error)
	Decrease(ctx context.Context, ref string) (NodeView, ledger.Change, error)
	Timeline(ctx context.Context, sort ledger.TimelineSort) []ledger.Event
	Export(ctx context.Context) (persistence.Export, error)
	Import(ctx context.Context, r io.Reader) (ImportResult, error)
	Reset(ctx context.Context, confirmed bool) error
	Revision() string
}

type ledgerService struct {
	log      *logger.Logger
	gateway  *persistence.Gateway
	taxonomy taxonomy.Taxonomy
	clock    *ledger.Clock
	notifier ledger.Notifier

	mu       sync.RWMutex
	engine   *ledger.Engine
	revision string

	imports *semaphore.Weighted
	gauge   LevelGauge
}

// LevelGauge receives the number of nodes at each level after every reload.
type LevelGauge interface {
	SetLevelCounts(counts map[int]int)
}

type LedgerOption func(*ledgerService)

func WithLevelGauge(g LevelGauge) LedgerOption {
	return func(s *ledgerService) { s.gauge = g }
}

// NewLedgerService hydrates the ledger once. A malformed taxonomy or an
// unreadable store is returned and the service is not usable.
func NewLedgerService(ctx context.Context, log *logger.Logger, gateway *persistence.Gateway, t taxonomy.Taxonomy, clock *ledger.Clock, notifier ledger.Notifier, opts ...LedgerOption) (LedgerService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("persistence gateway required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if clock == nil {
		clock = ledger.NewClock(nil)
	}
	s := &ledgerService{
		log:      log.With("service", "LedgerService"),
		gateway:  gateway,
		taxonomy: t,
		clock:    clock,
		notifier: notifier,
		imports:  semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ledgerService) Reload(ctx context.Context) (ReloadResult, error) {
	// Held across Load so no mutation can flush between the read and the swap.
	s.mu.Lock()
	l, res, err := s.gateway.Load(ctx, s.taxonomy)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Ledger reload failed", "error", err)
		return ReloadResult{}, err
	}
	rev := uuid.New().String()
	s.engine = ledger.NewEngine(l, s.clock, s.gateway, s.notifier, s.log)
	s.revision = rev
	counts := levelCounts(l)
	s.mu.Unlock()

	if s.gauge != nil {
		s.gauge.SetLevelCounts(counts)
	}
	if p, ok := s.notifier.(realtime.Publisher); ok {
		if err := p.Publish(ctx, realtime.ReloadedEvent(rev, s.clock.Now())); err != nil {
			s.log.Warn("Reload event publish failed", "error", err)
		}
	}
	s.log.Info("Ledger loaded", "revision", rev, "nodes", l.Index().Len(), "applied", res.Applied)
	return ReloadResult{
		Revision:  rev,
		Nodes:     l.Index().Len(),
		Applied:   res.Applied,
		Ignored:   res.Ignored,
		Sanitized: res.Sanitized,
	}, nil
}

func (s *ledgerService) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *ledgerService) Nodes(ctx context.Context) []NodeView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := s.engine.Ledger().Index().Nodes()
	out := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, viewOf(n))
	}
	return out
}

func (s *ledgerService) Node(ctx context.Context, ref string) (NodeView, error) {
	code, err := resolve(ref)
	if err != nil {
		return NodeView{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.engine.Ledger().Lookup(code)
	if err != nil {
		return NodeView{}, err
	}
	return viewOf(n), nil
}

func (s *ledgerService) Increase(ctx context.Context, ref string) (NodeView, ledger.Change, error) {
	return s.step(ctx, ref, (*ledger.Engine).Increase)
}

func (s *ledgerService) Decrease(ctx context.Context, ref string) (NodeView, ledger.Change, error) {
	return s.step(ctx, ref, (*ledger.Engine).Decrease)
}

// step applies one engine operation. On a storage failure the returned view
// already carries the new level.
func (s *ledgerService) step(ctx context.Context, ref string, op func(*ledger.Engine, context.Context, string) (ledger.Change, error)) (NodeView, ledger.Change, error) {
	code, err := resolve(ref)
	if err != nil {
		return NodeView{}, ledger.Change{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, opErr := op(s.engine, ctx, code)
	n, err := s.engine.Ledger().Lookup(code)
	if err != nil {
		return NodeView{}, ch, err
	}
	return viewOf(n), ch, opErr
}

func (s *ledgerService) Timeline(ctx context.Context, sort ledger.TimelineSort) []ledger.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.Timeline(s.engine.Ledger(), sort)
}

func (s *ledgerService) Export(ctx context.Context) (persistence.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateway.Export(ctx)
}

// Import overwrites the stored snapshot. The live ledger keeps serving the old
// state until Reload. Only one import runs at a time; a concurrent call gets
// ErrImportInProgress.
func (s *ledgerService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	if !s.imports.TryAcquire(1) {
		return ImportResult{}, ErrImportInProgress
	}
	defer s.imports.Release(1)

	snap, err := s.gateway.DecodeImport(ctx, r)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	err = s.gateway.Replace(ctx, snap)
	s.mu.Unlock()
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Nodes: len(snap), ReloadRequired: true}, nil
}

func (s *ledgerService) Reset(ctx context.Context, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway.Reset(ctx, confirmed)
}

func levelCounts(l *ledger.Ledger) map[int]int {
	counts := map[int]int{}
	for _, n := range l.Index().Nodes() {
		counts[n.Level()]++
	}
	return counts
}

func resolve(ref string) (string, error) {
	code, ok := domain.NormalizeCode(ref)
	if !ok {
		return "", fmt.Errorf("%w: %q", ledger.ErrNotFound, ref)
	}
	return code, nil
}

func viewOf(n *ledger.Node) NodeView {
	return NodeView{
		Code:       n.Code,
		SVGID:      domain.SVGID(n.Code),
		Label:      n.Label,
		GroupID:    n.GroupID,
		GroupLabel: n.GroupLabel,
		LevelGroup: n.LevelGroupIndex,
		Level:      n.Level(),
		LevelLabel: domain.LevelLabel(n.Level()),
		History:    n.History(),
	}
}
