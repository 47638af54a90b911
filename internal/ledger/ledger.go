package ledger

import (
	"github.com/yungbote/competence-ledger/internal/domain"
	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

// Ledger owns every competency node of the active taxonomy.
type Ledger struct {
	index *Index
}

// New builds an empty ledger (all nodes at level 0) from a taxonomy skeleton.
func New(t taxonomy.Taxonomy) (*Ledger, error) {
	idx, err := BuildIndex(t)
	if err != nil {
		return nil, err
	}
	return &Ledger{index: idx}, nil
}

func (l *Ledger) Index() *Index { return l.index }

func (l *Ledger) Lookup(code string) (*Node, error) { return l.index.Lookup(code) }

// Snapshot returns the state of every node that is not at its default.
func (l *Ledger) Snapshot() domain.Snapshot {
	out := domain.Snapshot{}
	for _, n := range l.index.Nodes() {
		st := n.State()
		if st.IsDefault() {
			continue
		}
		out[n.Code] = st
	}
	return out
}

// HydrateResult counts what Hydrate did with a stored snapshot.
type HydrateResult struct {
	Applied   int
	Ignored   []string
	Sanitized []string
}

// Hydrate overlays stored state onto the skeleton. Codes the taxonomy does not
// know are ignored. Levels are clamped to [0,5] and history entries outside
// 1..level are dropped so that the loaded ledger satisfies the same invariants
// the Engine maintains.
func (l *Ledger) Hydrate(snap domain.Snapshot) HydrateResult {
	var res HydrateResult
	for _, code := range snap.Codes() {
		st := snap[code]
		n, err := l.index.Lookup(code)
		if err != nil {
			res.Ignored = append(res.Ignored, code)
			continue
		}
		level := domain.ClampLevel(st.Level)
		hist := domain.History{}
		dirty := level != st.Level
		for lv, ts := range st.History {
			if lv < 1 || lv > level {
				dirty = true
				continue
			}
			hist[lv] = ts
		}
		n.level = level
		n.history = hist
		res.Applied++
		if dirty {
			res.Sanitized = append(res.Sanitized, code)
		}
	}
	return res
}
