package domain

import "sort"

// TimestampLayout is the ISO-8601 UTC shape used for every recorded timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// History maps an achieved level (1..5) to the timestamp it was reached.
// encoding/json writes the integer keys as strings ("1", "2", ...).
type History map[int]string

func (h History) Clone() History {
	out := make(History, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Levels returns the recorded levels in ascending order.
func (h History) Levels() []int {
	out := make([]int, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// NodeState is the mutable part of a competency node as persisted.
type NodeState struct {
	Level   int     `json:"level"`
	History History `json:"history"`
}

func (s NodeState) IsDefault() bool {
	return s.Level <= MinLevel && len(s.History) == 0
}

// Snapshot is the persisted ledger: only nodes with non-default state.
type Snapshot map[string]NodeState

// Codes returns the snapshot keys sorted.
func (s Snapshot) Codes() []string {
	out := make([]string, 0, len(s))
	for code := range s {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Envelope wraps a snapshot for export files.
type Envelope struct {
	ExportDate string   `json:"exportDate"`
	UserData   Snapshot `json:"userData"`
}
