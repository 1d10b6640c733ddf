package dates

import (
	"testing"
	"time"
)

func TestParseAndFormat(t *testing.T) {
	d, err := Parse("2021-03-15")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if Format(d) != "2021-03-15" {
		t.Errorf("round trip = %s", Format(d))
	}

	if _, err := Parse("15/03/2021"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestMinMax(t *testing.T) {
	ts := []time.Time{
		MustParse("2021-06-30"),
		MustParse("2020-01-31"),
		MustParse("2022-12-31"),
	}

	min, max, ok := MinMax(ts)
	if !ok {
		t.Fatal("MinMax returned !ok for non-empty input")
	}
	if Format(min) != "2020-01-31" || Format(max) != "2022-12-31" {
		t.Errorf("min=%s max=%s", Format(min), Format(max))
	}

	if _, _, ok := MinMax(nil); ok {
		t.Error("MinMax of empty input should report !ok")
	}
}

func TestMonthEnds(t *testing.T) {
	ends := MonthEnds(MustParse("2020-01-15"), MustParse("2020-04-02"))
	want := []string{"2020-01-31", "2020-02-29", "2020-03-31", "2020-04-30"}
	if len(ends) != len(want) {
		t.Fatalf("got %d month ends, want %d: %v", len(ends), len(want), ends)
	}
	for i, w := range want {
		if Format(ends[i]) != w {
			t.Errorf("month end %d = %s, want %s", i, Format(ends[i]), w)
		}
	}

	if ends := MonthEnds(MustParse("2020-02-01"), MustParse("2020-01-01")); ends != nil {
		t.Errorf("inverted range should yield nil, got %v", ends)
	}
}

func TestQuarterEnds(t *testing.T) {
	ends := QuarterEnds(MustParse("2020-02-15"), MustParse("2020-11-30"))
	want := []string{"2020-03-31", "2020-06-30", "2020-09-30", "2020-12-31"}
	if len(ends) != len(want) {
		t.Fatalf("got %d quarter ends, want %d: %v", len(ends), len(want), ends)
	}
	for i, w := range want {
		if Format(ends[i]) != w {
			t.Errorf("quarter end %d = %s, want %s", i, Format(ends[i]), w)
		}
	}
}

func TestParseAll(t *testing.T) {
	ts, err := ParseAll([]string{"2020-01-01", "2020-02-01"})
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(ts) != 2 {
		t.Fatalf("got %d dates", len(ts))
	}

	if _, err := ParseAll([]string{"2020-01-01", "bogus"}); err == nil {
		t.Error("expected error on first invalid entry")
	}
}
