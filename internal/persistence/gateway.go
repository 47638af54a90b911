// Package persistence moves the ledger between memory, the key-value store and
// portable export files.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/competence-ledger/internal/data/kv"
	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/platform/logger"
	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

const (
	DefaultKey            = "competences_userData"
	DefaultMaxImportBytes = 4 << 20
	exportFilePrefix      = "competences_"
)

type Config struct {
	Key            string
	MaxImportBytes int64
}

type Gateway struct {
	store    kv.Store
	key      string
	maxBytes int64
	clock    *ledger.Clock
	log      *logger.Logger
	tracer   trace.Tracer
}

func NewGateway(store kv.Store, clock *ledger.Clock, log *logger.Logger, cfg Config) *Gateway {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = DefaultMaxImportBytes
	}
	if clock == nil {
		clock = ledger.NewClock(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{
		store:    store,
		key:      cfg.Key,
		maxBytes: cfg.MaxImportBytes,
		clock:    clock,
		log:      log.With("service", "PersistenceGateway", "store_key", cfg.Key),
		tracer:   otel.Tracer("competence-ledger/persistence"),
	}
}

// Load builds a ledger from the taxonomy and overlays the stored snapshot.
// A malformed taxonomy is returned as *ledger.TaxonomyError.
func (g *Gateway) Load(ctx context.Context, t taxonomy.Taxonomy) (*ledger.Ledger, ledger.HydrateResult, error) {
	ctx, span := g.tracer.Start(ctx, "persistence.Load")
	defer span.End()

	l, err := ledger.New(t)
	if err != nil {
		recordErr(span, err)
		return nil, ledger.HydrateResult{}, err
	}
	snap, err := g.Stored(ctx)
	if err != nil {
		recordErr(span, err)
		return nil, ledger.HydrateResult{}, err
	}
	res := l.Hydrate(snap)
	span.SetAttributes(
		attribute.Int("ledger.applied", res.Applied),
		attribute.Int("ledger.ignored", len(res.Ignored)),
	)
	if len(res.Ignored) > 0 {
		g.log.Info("Stored codes not in taxonomy were ignored", "codes", res.Ignored)
	}
	if len(res.Sanitized) > 0 {
		g.log.Warn("Stored state out of bounds was clamped", "codes", res.Sanitized)
	}
	g.log.Debug("Ledger hydrated", "nodes", l.Index().Len(), "applied", res.Applied)
	return l, res, nil
}

// Stored reads the persisted snapshot. An absent key is an empty snapshot.
func (g *Gateway) Stored(ctx context.Context) (domain.Snapshot, error) {
	raw, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	snap := domain.Snapshot{}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap == nil {
		snap = domain.Snapshot{}
	}
	return snap, nil
}

// Save writes the ledger's non-default nodes. It satisfies ledger.Flusher.
func (g *Gateway) Save(ctx context.Context, l *ledger.Ledger) error {
	ctx, span := g.tracer.Start(ctx, "persistence.Save")
	defer span.End()

	snap := l.Snapshot()
	span.SetAttributes(attribute.Int("ledger.snapshot_size", len(snap)))
	return g.write(ctx, span, "save", snap)
}

func (g *Gateway) write(ctx context.Context, span trace.Span, op string, snap domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		recordErr(span, err)
		return &StorageError{Op: op, Key: g.key, Cause: err}
	}
	if err := g.store.Put(ctx, g.key, raw); err != nil {
		serr := &StorageError{Op: op, Key: g.key, Cause: err}
		recordErr(span, serr)
		return serr
	}
	return nil
}

// Export is a downloadable copy of the stored snapshot.
type Export struct {
	FileName string
	Body     []byte
	Envelope domain.Envelope
}

// Export wraps the stored snapshot in an envelope and renders it as indented JSON.
func (g *Gateway) Export(ctx context.Context) (Export, error) {
	ctx, span := g.tracer.Start(ctx, "persistence.Export")
	defer span.End()

	snap, err := g.Stored(ctx)
	if err != nil {
		recordErr(span, err)
		return Export{}, err
	}
	if len(snap) == 0 {
		return Export{}, ErrNothingToExport
	}
	now := g.clock.Now()
	env := domain.Envelope{
		ExportDate: now.Format(domain.TimestampLayout),
		UserData:   snap,
	}
	body, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		recordErr(span, err)
		return Export{}, err
	}
	out := Export{
		FileName: ExportFileName(now.Format("2006-01-02")),
		Body:     body,
		Envelope: env,
	}
	span.SetAttributes(attribute.Int("ledger.snapshot_size", len(snap)), attribute.String("export.file", out.FileName))
	g.log.Info("Ledger exported", "file", out.FileName, "nodes", len(snap))
	return out, nil
}

func ExportFileName(day string) string {
	return exportFilePrefix + day + ".json"
}

type importEnvelope struct {
	ExportDate json.RawMessage `json:"exportDate"`
	UserData   json.RawMessage `json:"userData"`
}

// Import replaces the stored snapshot with the payload's userData. The live
// ledger is not touched: callers must reload to see the imported state.
// On any format error storage is left as it was.
func (g *Gateway) Import(ctx context.Context, r io.Reader) (domain.Snapshot, error) {
	snap, err := g.DecodeImport(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := g.Replace(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// DecodeImport reads and validates an export document without touching the
// store. Reading r may block for as long as the caller's upload takes.
func (g *Gateway) DecodeImport(ctx context.Context, r io.Reader) (domain.Snapshot, error) {
	_, span := g.tracer.Start(ctx, "persistence.DecodeImport")
	defer span.End()

	snap, err := g.decodeImport(r)
	if err != nil {
		recordErr(span, err)
		g.log.Warn("Import rejected", "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("ledger.snapshot_size", len(snap)))
	return snap, nil
}

// Replace overwrites the stored snapshot. The in-memory ledger is untouched
// until the next Load.
func (g *Gateway) Replace(ctx context.Context, snap domain.Snapshot) error {
	ctx, span := g.tracer.Start(ctx, "persistence.Replace")
	defer span.End()

	if err := g.write(ctx, span, "import", snap); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("ledger.snapshot_size", len(snap)))
	g.log.Info("Ledger imported, reload required", "nodes", len(snap))
	return nil
}

func (g *Gateway) decodeImport(r io.Reader) (domain.Snapshot, error) {
	raw, err := io.ReadAll(io.LimitReader(r, g.maxBytes+1))
	if err != nil {
		return nil, &FormatError{Reason: "unreadable payload", Cause: err}
	}
	if int64(len(raw)) > g.maxBytes {
		return nil, &FormatError{Reason: fmt.Sprintf("payload larger than %d bytes", g.maxBytes)}
	}
	var env importEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &FormatError{Reason: "not a JSON object", Cause: err}
	}
	trimmed := bytes.TrimSpace(env.UserData)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &FormatError{Reason: "missing userData"}
	}
	snap := domain.Snapshot{}
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, &FormatError{Reason: "userData is not a snapshot", Cause: err}
	}
	return snap, nil
}

// Reset clears the stored snapshot once confirmed. Like Import it leaves any
// hydrated ledger as is.
func (g *Gateway) Reset(ctx context.Context, confirmed bool) error {
	ctx, span := g.tracer.Start(ctx, "persistence.Reset")
	defer span.End()

	if !confirmed {
		return ErrResetNotConfirmed
	}
	if err := g.store.Delete(ctx, g.key); err != nil {
		serr := &StorageError{Op: "reset", Key: g.key, Cause: err}
		recordErr(span, serr)
		return serr
	}
	g.log.Info("Stored ledger cleared, reload required")
	return nil
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
