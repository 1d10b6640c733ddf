// Package dates provides date helpers for working with FRED's YYYY-MM-DD
// wire format and for building observation-date grids.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire format used by the FRED API for all dates.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string into a UTC date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// MustParse parses a YYYY-MM-DD string and panics on failure.
// Intended for constants and tests.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Format renders a date in YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// MinMax returns the earliest and latest of the given dates.
// ok is false when the slice is empty.
func MinMax(ts []time.Time) (min, max time.Time, ok bool) {
	if len(ts) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max, true
}

// MonthEnds returns the last calendar day of every month from the month
// containing start through the month containing end, inclusive.
func MonthEnds(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		out = append(out, cur.AddDate(0, 1, -1))
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// QuarterEnds returns the last day of every calendar quarter between start
// and end, inclusive of the quarters containing both endpoints.
func QuarterEnds(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	var out []time.Time
	q := (int(start.Month()) - 1) / 3
	cur := time.Date(start.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		qEnd := cur.AddDate(0, 3, -1)
		out = append(out, qEnd)
		cur = cur.AddDate(0, 3, 0)
	}
	return out
}

// ParseAll parses a slice of YYYY-MM-DD strings, failing on the first
// invalid entry.
func ParseAll(ss []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		t, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
