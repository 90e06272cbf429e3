package activity

import (
	"fmt"
	"testing"
	"time"
)

func TestTracker_MostRecentFirst(t *testing.T) {
	tr := NewTracker()
	tr.Log(TypeTimeOff, "first", nil)
	tr.Log(TypeOvertime, "second", nil)

	got := tr.Recent()
	if len(got) != 2 {
		t.Fatalf("Recent() len = %d, want 2", len(got))
	}
	if got[0].Summary != "second" || got[1].Summary != "first" {
		t.Errorf("Recent() order = [%s, %s], want newest first", got[0].Summary, got[1].Summary)
	}
}

func TestTracker_CapsAtTen(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 15; i++ {
		tr.Log(TypeTimeOff, fmt.Sprintf("entry %d", i), nil)
	}

	got := tr.Recent()
	if len(got) != 10 {
		t.Fatalf("Recent() len = %d, want 10", len(got))
	}
	if got[0].Summary != "entry 14" {
		t.Errorf("Recent()[0] = %s, want entry 14", got[0].Summary)
	}
	if got[9].Summary != "entry 5" {
		t.Errorf("Recent()[9] = %s, want entry 5", got[9].Summary)
	}
}

func TestTracker_DefaultsAndHelpers(t *testing.T) {
	tr := NewTracker()
	tr.Log(Type("mystery"), "", nil)
	tr.TimeOff("Annual Leave", "2024-07-20", "2024-07-21", map[string]any{"days": 2})

	got := tr.Recent()
	if got[1].Title != "Unknown Activity" || got[1].Icon != "📋" {
		t.Errorf("unknown type entry = %+v", got[1])
	}
	if got[0].Summary != "Requested Annual Leave from 2024-07-20 to 2024-07-21" {
		t.Errorf("TimeOff summary = %s", got[0].Summary)
	}
	if got[0].Title != "Time Off Request" {
		t.Errorf("TimeOff title = %s", got[0].Title)
	}
}

func TestTracker_Clear(t *testing.T) {
	tr := NewTracker()
	tr.Log(TypeExpense, "x", nil)
	tr.Clear()
	if len(tr.Recent()) != 0 {
		t.Error("Clear() should drop all entries")
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{5 * time.Minute, "5 minutes ago"},
		{1 * time.Minute, "1 minute ago"},
		{3 * time.Hour, "3 hours ago"},
		{26 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTime(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("FormatTime(-%v) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}
