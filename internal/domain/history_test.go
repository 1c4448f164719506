package domain

import (
	"testing"
	"time"

	"gopkg.in/guregu/null.v4"
)

func closedSession(id string, exit time.Time) VehicleSession {
	return VehicleSession{
		ID:        id,
		EntryTime: exit.Add(-time.Hour),
		ExitTime:  null.TimeFrom(exit),
		Status:    StatusOut,
	}
}

func TestHistoryFilterWindow(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("today spans the calendar day", func(t *testing.T) {
		start, end, bounded := HistoryFilter{Range: RangeToday}.Window(now)
		if !bounded {
			t.Fatal("today window should be bounded")
		}
		if want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Errorf("start = %v, want %v", start, want)
		}
		if want := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Errorf("end = %v, want %v", end, want)
		}
	})

	t.Run("week trails seven days from now", func(t *testing.T) {
		start, end, bounded := HistoryFilter{Range: RangeWeek}.Window(now)
		if !bounded {
			t.Fatal("week window should be bounded")
		}
		if want := now.AddDate(0, 0, -7); !start.Equal(want) {
			t.Errorf("start = %v, want %v", start, want)
		}
		if !end.Equal(now) {
			t.Errorf("end = %v, want %v", end, now)
		}
	})

	t.Run("month covers the calendar month", func(t *testing.T) {
		start, end, bounded := HistoryFilter{Range: RangeMonth}.Window(now)
		if !bounded {
			t.Fatal("month window should be bounded")
		}
		if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
			t.Errorf("start = %v, want %v", start, want)
		}
		if want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Errorf("end = %v, want %v", end, want)
		}
	})

	t.Run("all-time is unbounded", func(t *testing.T) {
		if _, _, bounded := (HistoryFilter{Range: RangeAll}).Window(now); bounded {
			t.Error("all-time window should be unbounded")
		}
	})

	t.Run("custom end date is inclusive", func(t *testing.T) {
		f := HistoryFilter{
			Range:       RangeCustom,
			CustomStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CustomEnd:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		}
		_, end, _ := f.Window(now)
		if want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
			t.Errorf("end = %v, want %v", end, want)
		}
	})
}

func TestFilterSessions(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)

	open := VehicleSession{ID: "open", EntryTime: now.Add(-time.Hour), Status: StatusIn}
	today := closedSession("today", time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	yesterday := closedSession("yesterday", time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	lastMonth := closedSession("last-month", time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC))
	all := []VehicleSession{open, today, yesterday, lastMonth}

	tests := []struct {
		name   string
		filter HistoryFilter
		want   []string
	}{
		{"today", HistoryFilter{Range: RangeToday}, []string{"today"}},
		{"week", HistoryFilter{Range: RangeWeek}, []string{"today", "yesterday"}},
		{"month", HistoryFilter{Range: RangeMonth}, []string{"today", "yesterday"}},
		{"all excludes open sessions", HistoryFilter{Range: RangeAll}, []string{"today", "yesterday", "last-month"}},
		{"custom includes end-date exits", HistoryFilter{
			Range:       RangeCustom,
			CustomStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			CustomEnd:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		}, []string{"yesterday", "last-month"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.FilterSessions(all, now)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sessions, want %d", len(got), len(tt.want))
			}
			ids := make(map[string]bool, len(got))
			for _, s := range got {
				ids[s.ID] = true
			}
			for _, id := range tt.want {
				if !ids[id] {
					t.Errorf("session %q missing from result", id)
				}
			}
		})
	}
}

func TestFilterSessionsIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	all := []VehicleSession{
		closedSession("a", time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)),
		closedSession("b", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)),
	}

	f := HistoryFilter{Range: RangeToday}
	once := f.FilterSessions(all, now)
	twice := f.FilterSessions(once, now)
	if len(once) != len(twice) {
		t.Errorf("second application changed the result: %d -> %d", len(once), len(twice))
	}
}
