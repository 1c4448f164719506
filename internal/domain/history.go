package domain

import "time"

// HistoryRange selects which closed sessions a history view shows.
type HistoryRange string

const (
	RangeToday  HistoryRange = "today"
	RangeWeek   HistoryRange = "week"  // trailing 7 days
	RangeMonth  HistoryRange = "month" // current calendar month
	RangeAll    HistoryRange = "all"
	RangeCustom HistoryRange = "custom"
)

// HistoryFilter resolves to a half-open interval [Start, End) over exit
// instants. All-time carries no bounds.
type HistoryFilter struct {
	Range HistoryRange
	// Custom range bounds at day granularity; End date is inclusive.
	CustomStart time.Time
	CustomEnd   time.Time
}

// Window resolves the filter against the given clock reading. The boolean is
// false for an unbounded (all-time) window. Day boundaries use now's
// location.
func (f HistoryFilter) Window(now time.Time) (start, end time.Time, bounded bool) {
	switch f.Range {
	case RangeToday:
		start = startOfDay(now)
		return start, start.AddDate(0, 0, 1), true
	case RangeWeek:
		return now.AddDate(0, 0, -7), now, true
	case RangeMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	case RangeCustom:
		// The supplied end date is inclusive, so the window closes at the
		// start of the following day.
		return startOfDay(f.CustomStart), startOfDay(f.CustomEnd).AddDate(0, 0, 1), true
	default: // RangeAll
		return time.Time{}, time.Time{}, false
	}
}

// FilterSessions returns the closed sessions whose exit instant falls inside
// the filter's window. Open sessions never pass, all-time included.
func (f HistoryFilter) FilterSessions(sessions []VehicleSession, now time.Time) []VehicleSession {
	start, end, bounded := f.Window(now)

	var out []VehicleSession
	for _, s := range sessions {
		if !s.ExitTime.Valid {
			continue
		}
		if bounded {
			exit := s.ExitTime.Time
			if exit.Before(start) || !exit.Before(end) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar day in t's
// location. Used by the dashboard's "today" figures.
func SameDay(t, u time.Time) bool {
	ty, tm, td := t.Date()
	uy, um, ud := u.In(t.Location()).Date()
	return ty == uy && tm == um && td == ud
}
