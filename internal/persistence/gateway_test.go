package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/competence-ledger/internal/data/kv"
	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/ledger"
	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

func testTaxonomy() taxonomy.Taxonomy {
	return taxonomy.Taxonomy{Groups: []taxonomy.Group{
		{ID: "11", Levels: []taxonomy.LevelGroup{
			{Nodes: []taxonomy.NodeDef{{Code: "AC11.01", Label: "present"}, {Code: "AC11.02", Label: "study"}}},
		}},
		{ID: "12", Levels: []taxonomy.LevelGroup{
			{Nodes: []taxonomy.NodeDef{{Code: "AC12.01", Label: "strategy"}}},
		}},
	}}
}

func fixedClock() *ledger.Clock {
	t0 := time.Date(2025, 12, 18, 9, 15, 0, 0, time.UTC)
	n := 0
	return ledger.NewClock(func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	})
}

type failingStore struct {
	kv.Store
	putErr error
	delErr error
}

func (s *failingStore) Put(ctx context.Context, key string, value []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(ctx, key, value)
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if s.delErr != nil {
		return s.delErr
	}
	return s.Store.Delete(ctx, key)
}

func newGateway(store kv.Store) *Gateway {
	return NewGateway(store, fixedClock(), nil, Config{})
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	g := newGateway(store)

	l, _, err := g.Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := ledger.NewEngine(l, fixedClock(), g, nil, nil)
	for _, code := range []string{"AC11.01", "AC11.01", "AC12.01"} {
		if _, err := e.Increase(ctx, code); err != nil {
			t.Fatalf("Increase(%s): %v", code, err)
		}
	}
	want := l.Snapshot()

	fresh, res, err := g.Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load(fresh): %v", err)
	}
	if res.Applied != 2 {
		t.Fatalf("Applied: want=2 got=%d", res.Applied)
	}
	if got := fresh.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip: want=%v got=%v", want, got)
	}
}

func TestSaveSingleNode(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	g := newGateway(store)
	l, err := ledger.New(testTaxonomy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Hydrate(domain.Snapshot{"AC11.01": {Level: 2, History: domain.History{1: "a", 2: "b"}}})
	if err := g.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, ok, _ := store.Get(ctx, DefaultKey)
	if !ok {
		t.Fatalf("nothing stored under %q", DefaultKey)
	}
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("stored json: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored keys: want=1 got=%d (%s)", len(stored), raw)
	}
	if _, ok := stored["AC11.01"]; !ok {
		t.Fatalf("AC11.01 missing from %s", raw)
	}
}

func TestLoadIgnoresUnknownCodes(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	_ = store.Put(ctx, DefaultKey, []byte(`{"AC99.01":{"level":3,"history":{}},"AC11.02":{"level":1,"history":{"1":"2024-01-01T00:00:00Z"}}}`))
	l, res, err := newGateway(store).Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Ignored) != 1 || res.Ignored[0] != "AC99.01" {
		t.Fatalf("Ignored: got=%v", res.Ignored)
	}
	n, _ := l.Lookup("AC11.02")
	if n.Level() != 1 {
		t.Fatalf("AC11.02 level: want=1 got=%d", n.Level())
	}
	n, _ = l.Lookup("AC11.01")
	if n.Level() != 0 || len(n.History()) != 0 {
		t.Fatalf("AC11.01 default: level=%d history=%v", n.Level(), n.History())
	}
}

func TestLoadMalformedTaxonomy(t *testing.T) {
	bad := taxonomy.Taxonomy{Groups: []taxonomy.Group{{ID: "11", Levels: []taxonomy.LevelGroup{{Nodes: []taxonomy.NodeDef{{Code: "nope"}}}}}}}
	_, _, err := newGateway(kv.NewMemoryStore()).Load(context.Background(), bad)
	if !errors.Is(err, ledger.ErrMalformedTaxonomy) {
		t.Fatalf("Load: want ErrMalformedTaxonomy got=%v", err)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	_ = store.Put(ctx, DefaultKey, []byte(`{not json`))
	_, _, err := newGateway(store).Load(ctx, testTaxonomy())
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("Load: want ErrCorruptSnapshot got=%v", err)
	}
}

func TestSaveFailureIsStorageError(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemoryStore(), putErr: errors.New("quota exceeded")}
	g := newGateway(store)
	l, _, err := g.Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e := ledger.NewEngine(l, nil, g, nil, nil)
	ch, err := e.Increase(ctx, "AC11.01")
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("Increase: want ErrStorageWrite got=%v", err)
	}
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Op != "save" {
		t.Fatalf("StorageError: got=%#v", err)
	}
	if ch.Level != 1 {
		t.Fatalf("in-memory mutation lost: %+v", ch)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	g := newGateway(store)

	if _, err := g.Export(ctx); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Export(empty): want ErrNothingToExport got=%v", err)
	}
	_ = store.Put(ctx, DefaultKey, []byte(`{}`))
	if _, err := g.Export(ctx); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Export({}): want ErrNothingToExport got=%v", err)
	}

	_ = store.Put(ctx, DefaultKey, []byte(`{"AC11.01":{"level":1,"history":{"1":"2025-12-01T10:00:00.000Z"}}}`))
	out, err := g.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.FileName != "competences_2025-12-18.json" {
		t.Fatalf("FileName: got=%q", out.FileName)
	}
	if !bytes.Contains(out.Body, []byte("\n  \"userData\"")) {
		t.Fatalf("body not indented: %s", out.Body)
	}
	var env domain.Envelope
	if err := json.Unmarshal(out.Body, &env); err != nil {
		t.Fatalf("body json: %v", err)
	}
	if env.ExportDate == "" || env.UserData["AC11.01"].Level != 1 {
		t.Fatalf("envelope: got=%+v", env)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := kv.NewMemoryStore()
	original := `{"AC11.01":{"level":3,"history":{"1":"2024-01-01T00:00:00.000Z","2":"2024-01-02T00:00:00.000Z","3":"2024-01-03T00:00:00.000Z"}},"AC12.01":{"level":1,"history":{"1":"2024-02-01T00:00:00.000Z"}}}`
	_ = src.Put(ctx, DefaultKey, []byte(original))
	out, err := newGateway(src).Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := kv.NewMemoryStore()
	g := newGateway(dst)
	if _, err := g.Import(ctx, bytes.NewReader(out.Body)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err := g.Stored(ctx)
	if err != nil {
		t.Fatalf("Stored: %v", err)
	}
	var want domain.Snapshot
	_ = json.Unmarshal([]byte(original), &want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip: want=%v got=%v", want, got)
	}
	l, _, err := g.Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(l.Snapshot(), want) {
		t.Fatalf("loaded: want=%v got=%v", want, l.Snapshot())
	}
}

func TestImportThenLoad(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	g := newGateway(store)
	payload := `{"userData": {"AC11.01": {"level": 3, "history": {"1":"2024-01-01T00:00:00Z"}}}}`
	if _, err := g.Import(ctx, strings.NewReader(payload)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	l, _, err := g.Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, _ := l.Lookup("AC11.01")
	if n.Level() != 3 {
		t.Fatalf("level: want=3 got=%d", n.Level())
	}
}

func TestImportReplacesWholeSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	_ = store.Put(ctx, DefaultKey, []byte(`{"AC12.01":{"level":2,"history":{}}}`))
	g := newGateway(store)
	if _, err := g.Import(ctx, strings.NewReader(`{"userData":{"AC11.01":{"level":1,"history":{}}}}`)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	snap, _ := g.Stored(ctx)
	if _, ok := snap["AC12.01"]; ok || len(snap) != 1 {
		t.Fatalf("import merged instead of replacing: %v", snap)
	}
}

func TestDecodeImportLeavesStorage(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	_ = store.Put(ctx, DefaultKey, []byte(`{"AC12.01":{"level":2,"history":{}}}`))
	g := newGateway(store)
	snap, err := g.DecodeImport(ctx, strings.NewReader(`{"userData":{"AC11.01":{"level":1,"history":{}}}}`))
	if err != nil {
		t.Fatalf("DecodeImport: %v", err)
	}
	if len(snap) != 1 || snap["AC11.01"].Level != 1 {
		t.Fatalf("decoded: got=%v", snap)
	}
	stored, _ := g.Stored(ctx)
	if stored["AC12.01"].Level != 2 || len(stored) != 1 {
		t.Fatalf("storage changed by decode: %v", stored)
	}
	if err := g.Replace(ctx, snap); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	stored, _ = g.Stored(ctx)
	if _, ok := stored["AC12.01"]; ok || stored["AC11.01"].Level != 1 {
		t.Fatalf("after Replace: got=%v", stored)
	}
}

func TestImportDoesNotTouchLiveLedger(t *testing.T) {
	ctx := context.Background()
	g := newGateway(kv.NewMemoryStore())
	l, _, err := g.Load(ctx, testTaxonomy())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := g.Import(ctx, strings.NewReader(`{"userData":{"AC11.01":{"level":4,"history":{}}}}`)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	n, _ := l.Lookup("AC11.01")
	if n.Level() != 0 {
		t.Fatalf("live ledger mutated by import: level=%d", n.Level())
	}
}

func TestImportInvalidFormatLeavesStorage(t *testing.T) {
	ctx := context.Background()
	before := `{"AC12.01":{"level":2,"history":{}}}`
	payloads := []string{
		`{}`,
		`{"userData": null}`,
		`{"exportDate": "2024-01-01T00:00:00Z"}`,
		`[]`,
		`not json`,
		`{"userData": "nope"}`,
		`{"userData": {"AC11.01": {"level": "high"}}}`,
	}
	for _, p := range payloads {
		store := kv.NewMemoryStore()
		_ = store.Put(ctx, DefaultKey, []byte(before))
		g := newGateway(store)
		_, err := g.Import(ctx, strings.NewReader(p))
		if !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("Import(%s): want ErrInvalidFormat got=%v", p, err)
		}
		raw, _, _ := store.Get(ctx, DefaultKey)
		if string(raw) != before {
			t.Fatalf("Import(%s) altered storage: %s", p, raw)
		}
	}
}

func TestImportTooLarge(t *testing.T) {
	g := NewGateway(kv.NewMemoryStore(), nil, nil, Config{MaxImportBytes: 16})
	_, err := g.Import(context.Background(), strings.NewReader(`{"userData":{"AC11.01":{"level":1}}}`))
	var ferr *FormatError
	if !errors.As(err, &ferr) || !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("Import: want FormatError got=%v", err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	_ = store.Put(ctx, DefaultKey, []byte(`{"AC11.01":{"level":1,"history":{}}}`))
	g := newGateway(store)

	if err := g.Reset(ctx, false); !errors.Is(err, ErrResetNotConfirmed) {
		t.Fatalf("Reset(false): want ErrResetNotConfirmed got=%v", err)
	}
	if _, ok, _ := store.Get(ctx, DefaultKey); !ok {
		t.Fatalf("unconfirmed reset cleared storage")
	}
	if err := g.Reset(ctx, true); err != nil {
		t.Fatalf("Reset(true): %v", err)
	}
	if _, ok, _ := store.Get(ctx, DefaultKey); ok {
		t.Fatalf("confirmed reset left storage")
	}
}

func TestResetStorageFailure(t *testing.T) {
	store := &failingStore{Store: kv.NewMemoryStore(), delErr: errors.New("read-only")}
	err := newGateway(store).Reset(context.Background(), true)
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("Reset: want ErrStorageWrite got=%v", err)
	}
}
