// Package streak decides how daily activity moves a learner's streak.
// Days are calendar days in the tracker's location.
package streak

import "time"

// DayLayout is the storage format of a calendar day
const DayLayout = "2006-01-02"

// Tracker applies calendar-day streak rules
type Tracker struct {
	loc *time.Location
}

// NewTracker creates a tracker for the given location; nil means UTC
func NewTracker(loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{loc: loc}
}

// Day returns the calendar day of t
func (t *Tracker) Day(ts time.Time) string {
	return ts.In(t.loc).Format(DayLayout)
}

// Next returns the streak after activity at now, and whether it changed.
// lastActive is the previous active day, empty if there was none.
func (t *Tracker) Next(lastActive string, streak int, now time.Time) (int, bool) {
	gap, ok := t.daysSince(lastActive, now)
	switch {
	case !ok || gap > 1 || gap < 0:
		return 1, streak != 1
	case gap == 0:
		if streak < 1 {
			return 1, true
		}
		return streak, false
	default:
		return streak + 1, true
	}
}

// Expired reports whether a whole day passed without activity
func (t *Tracker) Expired(lastActive string, now time.Time) bool {
	gap, ok := t.daysSince(lastActive, now)
	return ok && gap > 1
}

// ActiveToday reports whether lastActive is the day of now
func (t *Tracker) ActiveToday(lastActive string, now time.Time) bool {
	return lastActive == t.Day(now)
}

func (t *Tracker) daysSince(lastActive string, now time.Time) (int, bool) {
	if lastActive == "" {
		return 0, false
	}
	last, err := time.ParseInLocation(DayLayout, lastActive, t.loc)
	if err != nil {
		return 0, false
	}
	n := now.In(t.loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, t.loc)
	// Round absorbs DST shifts of one hour
	return int(today.Sub(last).Round(24*time.Hour) / (24 * time.Hour)), true
}
