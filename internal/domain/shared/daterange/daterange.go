package daterange

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrEndNotAfterStart = errors.New("daterange: end date must be after start date")
	ErrStartAfterEnd    = errors.New("daterange: start date must not be after end date")
)

const day = 24 * time.Hour

// DateRange is a span of calendar days in UTC. Both ends are stored at
// midnight UTC; time-of-day carried by the inputs is discarded. Overlap
// comparisons treat End as exclusive, day counting treats it as inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Normalize truncates a timestamp to its UTC calendar date.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New builds a range requiring start strictly before end, the booking rule.
func New(start, end time.Time) (DateRange, error) {
	start = Normalize(start)
	end = Normalize(end)
	if !start.Before(end) {
		return DateRange{}, ErrEndNotAfterStart
	}
	return DateRange{Start: start, End: end}, nil
}

// NewWindow builds a reporting window where start == end is a one-day window.
func NewWindow(start, end time.Time) (DateRange, error) {
	start = Normalize(start)
	end = Normalize(end)
	if start.After(end) {
		return DateRange{}, ErrStartAfterEnd
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps reports whether the two ranges share at least one night.
// Touching endpoints (one range ending on the day the other starts) do not
// overlap, which is what permits back-to-back bookings.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Contains reports whether the given calendar date falls inside the range,
// both ends inclusive.
func (r DateRange) Contains(t time.Time) bool {
	t = Normalize(t)
	return !t.Before(r.Start) && !t.After(r.End)
}

// Clip restricts the range to the given window. The second return value is
// false when the range lies entirely outside the window.
func (r DateRange) Clip(window DateRange) (DateRange, bool) {
	start := r.Start
	if start.Before(window.Start) {
		start = window.Start
	}
	end := r.End
	if end.After(window.End) {
		end = window.End
	}
	if start.After(end) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

// Days returns the inclusive day count of the range.
func (r DateRange) Days() int {
	return InclusiveDays(r.Start, r.End)
}

// InclusiveDays counts calendar days from start through end, both inclusive.
// Partial days round up before the inclusive +1.
func InclusiveDays(start, end time.Time) int {
	diff := end.Sub(start)
	if diff < 0 {
		return 0
	}
	n := int(diff / day)
	if diff%day != 0 {
		n++
	}
	return n + 1
}

// Merge collapses overlapping and adjacent ranges so that each covered day is
// counted exactly once. The input is not modified.
func Merge(ranges []DateRange) []DateRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]DateRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]DateRange, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if !next.Start.After(current.End) {
			if next.End.After(current.End) {
				current.End = next.End
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// ParseDate accepts a bare calendar date or a full RFC 3339 timestamp and
// returns its UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return Normalize(t), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(t), nil
}
