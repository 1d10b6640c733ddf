package fred

import (
	"net/url"
	"strings"
	"testing"
)

func TestAPIURL(t *testing.T) {
	c := New("secret", WithBaseURL("https://example.test/fred"))

	q := url.Values{}
	q.Set("series_id", "GDP")
	q.Set("search_text", "consumer price index")

	u := c.apiURL("series/observations", q)

	if !strings.HasPrefix(u, "https://example.test/fred/series/observations?") {
		t.Fatalf("unexpected URL prefix: %s", u)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse built URL: %v", err)
	}
	query := parsed.Query()

	tests := []struct {
		key, want string
	}{
		{"api_key", "secret"},
		{"file_type", "json"},
		{"series_id", "GDP"},
		{"search_text", "consumer price index"},
	}
	for _, tt := range tests {
		if got := query.Get(tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestAPIURLNilQuery(t *testing.T) {
	c := New("k", WithBaseURL("https://example.test/fred"))
	u := c.apiURL("releases", nil)
	if !strings.Contains(u, "api_key=k") || !strings.Contains(u, "file_type=json") {
		t.Errorf("credentials not appended: %s", u)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		year  int
		month int
		day   int
	}{
		{"2024-01-15", 2024, 1, 15},
		{"2023-12-31", 2023, 12, 31},
	}
	for _, tt := range tests {
		got := parseDate(tt.input)
		if got.Year() != tt.year || int(got.Month()) != tt.month || got.Day() != tt.day {
			t.Errorf("parseDate(%q) = %v, want %d-%02d-%02d", tt.input, got, tt.year, tt.month, tt.day)
		}
	}
	if !parseDate("not a date").IsZero() {
		t.Error("invalid input should yield zero time")
	}
}
