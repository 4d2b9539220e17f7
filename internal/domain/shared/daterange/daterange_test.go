package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRequiresStrictOrder(t *testing.T) {
	if _, err := New(date(2026, 7, 10), date(2026, 7, 10)); !errors.Is(err, ErrEndNotAfterStart) {
		t.Fatalf("equal dates: expected ErrEndNotAfterStart, got %v", err)
	}
	if _, err := New(date(2026, 7, 12), date(2026, 7, 10)); !errors.Is(err, ErrEndNotAfterStart) {
		t.Fatalf("reversed dates: expected ErrEndNotAfterStart, got %v", err)
	}
	rng, err := New(date(2026, 7, 10), date(2026, 7, 12))
	if err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if !rng.Start.Equal(date(2026, 7, 10)) || !rng.End.Equal(date(2026, 7, 12)) {
		t.Fatalf("unexpected range %v", rng)
	}
}

func TestNewDiscardsTimeOfDay(t *testing.T) {
	late := time.Date(2026, 7, 10, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 7, 12, 0, 1, 0, 0, time.UTC)
	rng, err := New(late, early)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !rng.Start.Equal(date(2026, 7, 10)) || !rng.End.Equal(date(2026, 7, 12)) {
		t.Fatalf("expected midnight bounds, got %v to %v", rng.Start, rng.End)
	}
}

func TestNewWindowAllowsSingleDay(t *testing.T) {
	window, err := NewWindow(date(2026, 7, 10), date(2026, 7, 10))
	if err != nil {
		t.Fatalf("one-day window rejected: %v", err)
	}
	if window.Days() != 1 {
		t.Fatalf("one-day window counts %d days", window.Days())
	}
	if _, err := NewWindow(date(2026, 7, 11), date(2026, 7, 10)); !errors.Is(err, ErrStartAfterEnd) {
		t.Fatalf("expected ErrStartAfterEnd, got %v", err)
	}
}

func TestOverlapsBackToBack(t *testing.T) {
	first, _ := New(date(2026, 7, 1), date(2026, 7, 10))
	second, _ := New(date(2026, 7, 10), date(2026, 7, 20))
	if first.Overlaps(second) || second.Overlaps(first) {
		t.Fatal("back-to-back ranges must not overlap")
	}

	overlapping, _ := New(date(2026, 7, 9), date(2026, 7, 11))
	if !first.Overlaps(overlapping) || !overlapping.Overlaps(first) {
		t.Fatal("ranges sharing a night must overlap")
	}

	inside, _ := New(date(2026, 7, 3), date(2026, 7, 5))
	if !first.Overlaps(inside) {
		t.Fatal("contained range must overlap")
	}
}

func TestContainsInclusiveEnds(t *testing.T) {
	rng, _ := New(date(2026, 7, 10), date(2026, 7, 15))
	for _, d := range []time.Time{date(2026, 7, 10), date(2026, 7, 12), date(2026, 7, 15)} {
		if !rng.Contains(d) {
			t.Fatalf("%v should be contained", d)
		}
	}
	if rng.Contains(date(2026, 7, 9)) || rng.Contains(date(2026, 7, 16)) {
		t.Fatal("dates outside the range must not be contained")
	}
}

func TestInclusiveDays(t *testing.T) {
	cases := []struct {
		start, end time.Time
		want       int
	}{
		{date(2026, 7, 1), date(2026, 7, 1), 1},
		{date(2026, 7, 1), date(2026, 7, 2), 2},
		{date(2026, 7, 1), date(2026, 7, 31), 31},
		{date(2026, 7, 31), date(2026, 7, 1), 0},
	}
	for _, tc := range cases {
		if got := InclusiveDays(tc.start, tc.end); got != tc.want {
			t.Errorf("InclusiveDays(%v, %v) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestMergeOverlapping(t *testing.T) {
	a, _ := New(date(2026, 7, 1), date(2026, 7, 5))
	b, _ := New(date(2026, 7, 3), date(2026, 7, 8))
	merged := Merge([]DateRange{b, a})
	if len(merged) != 1 {
		t.Fatalf("expected one merged range, got %d", len(merged))
	}
	if merged[0].Days() != 8 {
		t.Fatalf("merged [1,5]+[3,8] should cover 8 days, got %d", merged[0].Days())
	}
}

func TestMergeAdjacentAndDisjoint(t *testing.T) {
	a, _ := New(date(2026, 7, 1), date(2026, 7, 5))
	b, _ := New(date(2026, 7, 5), date(2026, 7, 9))
	c, _ := New(date(2026, 7, 20), date(2026, 7, 25))
	merged := Merge([]DateRange{c, a, b})
	if len(merged) != 2 {
		t.Fatalf("expected two ranges after merging, got %d", len(merged))
	}
	if !merged[0].Start.Equal(date(2026, 7, 1)) || !merged[0].End.Equal(date(2026, 7, 9)) {
		t.Fatalf("adjacent ranges not merged: %v", merged[0])
	}
	if !merged[1].Start.Equal(date(2026, 7, 20)) {
		t.Fatalf("disjoint range lost: %v", merged[1])
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); got != nil {
		t.Fatalf("Merge(nil) = %v", got)
	}
}

func TestClip(t *testing.T) {
	window, _ := NewWindow(date(2026, 7, 10), date(2026, 7, 20))
	rng, _ := New(date(2026, 7, 5), date(2026, 7, 15))
	clipped, ok := rng.Clip(window)
	if !ok {
		t.Fatal("overlapping range must clip")
	}
	if !clipped.Start.Equal(date(2026, 7, 10)) || !clipped.End.Equal(date(2026, 7, 15)) {
		t.Fatalf("unexpected clip %v", clipped)
	}

	outside, _ := New(date(2026, 8, 1), date(2026, 8, 5))
	if _, ok := outside.Clip(window); ok {
		t.Fatal("range outside the window must not clip")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-07-10")
	if err != nil {
		t.Fatalf("bare date: %v", err)
	}
	if !got.Equal(date(2026, 7, 10)) {
		t.Fatalf("bare date parsed as %v", got)
	}

	got, err = ParseDate("2026-07-10T18:30:00+02:00")
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if !got.Equal(date(2026, 7, 10)) {
		t.Fatalf("rfc3339 parsed as %v", got)
	}

	if _, err := ParseDate("July 10th"); err == nil {
		t.Fatal("expected parse error")
	}
}
