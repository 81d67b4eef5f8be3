package scheduling

import (
	"fmt"
	"time"
)

// Business hours for the mobile workshop, in the business timezone.
const (
	OpenHour  = 9
	CloseHour = 17
	// StepMinutes is the grid spacing between candidate start times.
	StepMinutes = 30
)

// Range is a half-open occupied interval [Start, End) in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports strict half-open interval overlap: intervals that merely
// touch at an endpoint do not overlap.
func (r Range) Overlaps(start, end time.Time) bool {
	return start.Before(r.End) && end.After(r.Start)
}

// Slot is one candidate service window. Start/End are UTC instants.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// ParseDay interprets a YYYY-MM-DD string as a civil date in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return day, nil
}

// IsBusinessDay reports whether the given instant falls on a weekday in loc.
func IsBusinessDay(t time.Time, loc *time.Location) bool {
	switch t.In(loc).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// WithinBusinessHours reports whether a service of the given duration can
// start at the instant without overrunning closing time. The check resolves
// the timezone offset for the specific date, so daylight-saving transitions
// are handled correctly.
func WithinBusinessHours(start time.Time, loc *time.Location, duration time.Duration) bool {
	local := start.In(loc)
	if !IsBusinessDay(local, loc) {
		return false
	}
	open := time.Date(local.Year(), local.Month(), local.Day(), OpenHour, 0, 0, 0, loc)
	closing := time.Date(local.Year(), local.Month(), local.Day(), CloseHour, 0, 0, 0, loc)
	if local.Before(open) {
		return false
	}
	return !local.Add(duration).After(closing)
}

// DaySlots produces the ordered candidate windows for one calendar day.
//
// day must be a civil date in loc (see ParseDay). Candidates advance on the
// 30-minute grid from opening; a candidate whose end would pass closing time
// is skipped entirely, so the last legal start is closing minus duration
// rounded down to the grid. Candidates overlapping an occupied range are
// still emitted, marked unavailable. Weekends yield no slots.
func DaySlots(day time.Time, loc *time.Location, duration time.Duration, occupied []Range) []Slot {
	if duration <= 0 {
		return nil
	}
	local := day.In(loc)
	if !IsBusinessDay(local, loc) {
		return nil
	}

	open := time.Date(local.Year(), local.Month(), local.Day(), OpenHour, 0, 0, 0, loc)
	closing := time.Date(local.Year(), local.Month(), local.Day(), CloseHour, 0, 0, 0, loc)

	var slots []Slot
	for start := open; !start.After(closing); start = start.Add(StepMinutes * time.Minute) {
		end := start.Add(duration)
		if end.After(closing) {
			continue
		}
		startUTC := start.UTC()
		endUTC := end.UTC()
		slots = append(slots, Slot{
			Start:     startUTC,
			End:       endUTC,
			Available: !anyOverlap(occupied, startUTC, endUTC),
		})
	}
	return slots
}

func anyOverlap(occupied []Range, start, end time.Time) bool {
	for _, r := range occupied {
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}
