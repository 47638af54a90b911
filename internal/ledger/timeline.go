package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/yungbote/competence-ledger/internal/domain"
)

type TimelineSort string

const (
	SortByDate TimelineSort = "date"
	SortByCode TimelineSort = "code"
)

// ParseTimelineSort maps user input to a sort mode, defaulting to SortByDate.
func ParseTimelineSort(raw string) TimelineSort {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "code", "ac":
		return SortByCode
	default:
		return SortByDate
	}
}

// Event is one "level N reached at T" entry of the achievement history.
type Event struct {
	Code       string    `json:"code"`
	Label      string    `json:"label"`
	Level      int       `json:"level"`
	LevelLabel string    `json:"level_label"`
	At         time.Time `json:"at"`
	Raw        string    `json:"raw"`
}

// Timeline flattens every node's history. SortByDate puts the most recent
// first; SortByCode groups by code, most recent first within a code.
// Timestamps that do not parse sort as the zero time.
func Timeline(l *Ledger, mode TimelineSort) []Event {
	var events []Event
	for _, n := range l.index.Nodes() {
		for _, lv := range n.history.Levels() {
			raw := n.history[lv]
			events = append(events, Event{
				Code:       n.Code,
				Label:      n.Label,
				Level:      lv,
				LevelLabel: domain.LevelLabel(lv),
				At:         parseStamp(raw),
				Raw:        raw,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if mode == SortByCode && a.Code != b.Code {
			return a.Code < b.Code
		}
		if !a.At.Equal(b.At) {
			return a.At.After(b.At)
		}
		return a.Level > b.Level
	})
	return events
}

func parseStamp(raw string) time.Time {
	for _, layout := range []string{domain.TimestampLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
