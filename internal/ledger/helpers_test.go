package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yungbote/competence-ledger/internal/taxonomy"
)

func testTaxonomy() taxonomy.Taxonomy {
	return taxonomy.Taxonomy{Groups: []taxonomy.Group{
		{ID: "11", Label: "Understand", Levels: []taxonomy.LevelGroup{
			{Label: "L1", Nodes: []taxonomy.NodeDef{{Code: "AC11.01", Label: "present"}, {Code: "AC11.02", Label: "study"}}},
			{Label: "L2", Nodes: []taxonomy.NodeDef{{Code: "AC21.01", Label: "audit"}}},
		}},
		{ID: "12", Label: "Design", Levels: []taxonomy.LevelGroup{
			{Label: "L1", Nodes: []taxonomy.NodeDef{{Code: "AC12.01", Label: "strategy"}}},
		}},
	}}
}

// stepClock returns start, start+step, start+2*step, ...
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start.Add(-step)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

type recordingFlusher struct {
	calls int
	err   error
	last  map[string]int
}

func (f *recordingFlusher) Save(_ context.Context, l *Ledger) error {
	f.calls++
	f.last = map[string]int{}
	for code, st := range l.Snapshot() {
		f.last[code] = st.Level
	}
	return f.err
}

type recordingNotifier struct {
	changes []Change
}

func (n *recordingNotifier) NotifyLevel(_ context.Context, ch Change) {
	n.changes = append(n.changes, ch)
}

var errDiskFull = errors.New("disk full")
