package ledger

import (
	"testing"
	"time"

	"github.com/yungbote/competence-ledger/internal/domain"
)

func TestClockNeverGoesBackwards(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	seq := []time.Time{base, base.Add(-time.Hour), base.Add(time.Second)}
	i := 0
	c := NewClock(func() time.Time {
		v := seq[i]
		i++
		return v
	})

	first := c.Now()
	second := c.Now()
	third := c.Now()
	if !second.Equal(first) {
		t.Fatalf("backwards wall clock: want=%v got=%v", first, second)
	}
	if !third.Equal(base.Add(time.Second)) {
		t.Fatalf("forward: want=%v got=%v", base.Add(time.Second), third)
	}
}

func TestClockStampFormat(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	c := NewClock(func() time.Time { return time.Date(2024, 1, 1, 1, 30, 0, 123456789, loc) })
	if got := c.Now().Format(domain.TimestampLayout); got != "2024-01-01T00:30:00.123Z" {
		t.Fatalf("stamp: want=2024-01-01T00:30:00.123Z got=%q", got)
	}
}
