package ledger

import (
	"context"
	"testing"

	"github.com/yungbote/competence-ledger/internal/domain"
)

func TestSnapshotOnlyNonDefault(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	ctx := context.Background()
	if _, err := e.Increase(ctx, "AC11.01"); err != nil {
		t.Fatalf("Increase: %v", err)
	}
	if _, err := e.Increase(ctx, "AC11.01"); err != nil {
		t.Fatalf("Increase: %v", err)
	}
	snap := e.Ledger().Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot keys: want=1 got=%v", snap.Codes())
	}
	if st, ok := snap["AC11.01"]; !ok || st.Level != 2 || len(st.History) != 2 {
		t.Fatalf("snapshot entry: got=%+v", snap["AC11.01"])
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	if _, err := e.Increase(context.Background(), "AC11.01"); err != nil {
		t.Fatalf("Increase: %v", err)
	}
	snap := e.Ledger().Snapshot()
	snap["AC11.01"].History[4] = "tampered"
	n, _ := e.Ledger().Lookup("AC11.01")
	if _, ok := n.History()[4]; ok {
		t.Fatalf("snapshot shares history map with node")
	}
}

func TestHydrate(t *testing.T) {
	l, err := New(testTaxonomy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := l.Hydrate(domain.Snapshot{
		"AC11.01": {Level: 2, History: domain.History{1: "2024-01-01T00:00:00.000Z", 2: "2024-01-02T00:00:00.000Z"}},
		"AC12.01": {Level: 9, History: domain.History{0: "zero", 5: "2024-02-01T00:00:00.000Z"}},
		"AC21.01": {Level: 1, History: domain.History{3: "2024-02-01T00:00:00.000Z"}},
		"AC99.01": {Level: 4},
	})
	if res.Applied != 3 {
		t.Fatalf("Applied: want=3 got=%d", res.Applied)
	}
	if len(res.Ignored) != 1 || res.Ignored[0] != "AC99.01" {
		t.Fatalf("Ignored: got=%v", res.Ignored)
	}
	if len(res.Sanitized) != 2 {
		t.Fatalf("Sanitized: got=%v", res.Sanitized)
	}
	n, _ := l.Lookup("AC11.01")
	if n.Level() != 2 || n.History()[2] != "2024-01-02T00:00:00.000Z" {
		t.Fatalf("AC11.01: level=%d history=%v", n.Level(), n.History())
	}
	n, _ = l.Lookup("AC12.01")
	if n.Level() != 5 || len(n.History()) != 1 {
		t.Fatalf("AC12.01 sanitised: level=%d history=%v", n.Level(), n.History())
	}
	n, _ = l.Lookup("AC21.01")
	if n.Level() != 1 || len(n.History()) != 0 {
		t.Fatalf("AC21.01 sanitised: level=%d history=%v", n.Level(), n.History())
	}
	n, _ = l.Lookup("AC11.02")
	if n.Level() != 0 || len(n.History()) != 0 {
		t.Fatalf("AC11.02 untouched: level=%d history=%v", n.Level(), n.History())
	}
}

func TestHydratedNodeCanBeMutated(t *testing.T) {
	l, err := New(testTaxonomy())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Hydrate(domain.Snapshot{"AC11.01": {Level: 1}})
	e := NewEngine(l, nil, nil, nil, nil)
	if _, err := e.Increase(context.Background(), "AC11.01"); err != nil {
		t.Fatalf("Increase: %v", err)
	}
	n, _ := l.Lookup("AC11.01")
	if n.Level() != 2 || n.History()[2] == "" {
		t.Fatalf("after increase: level=%d history=%v", n.Level(), n.History())
	}
}
