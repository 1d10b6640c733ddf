package fred

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/fredpanel/fredpanel/pkg/dates"
)

func TestReleases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"realtime_start": "2024-01-15",
			"count":          2,
			"releases": []map[string]any{
				{"id": 9, "name": "Advance Monthly Sales for Retail and Food Services", "press_release": true, "link": "http://www.census.gov/retail/"},
				{"id": 10, "name": "Consumer Price Index", "press_release": true},
			},
		})
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	set, err := c.Releases(context.Background())
	if err != nil {
		t.Fatalf("Releases: %v", err)
	}
	if len(set.Releases) != 2 {
		t.Fatalf("got %d releases, want 2", len(set.Releases))
	}
	if set.Releases[0].ID != 9 || !set.Releases[0].PressRelease {
		t.Errorf("unexpected release: %+v", set.Releases[0])
	}
	if _, ok := set.Meta["realtime_start"]; !ok {
		t.Error("meta sidecar missing realtime_start")
	}
}

func TestVintageDatesPagination(t *testing.T) {
	const total = 23
	const pageSize = 10

	all := make([]string, 0, total)
	base := dates.MustParse("2000-01-01")
	for i := 0; i < total; i++ {
		all = append(all, dates.Format(base.AddDate(0, i, 0)))
	}

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/vintagedates" {
			http.NotFound(w, r)
			return
		}
		requests++

		offset := 0
		if s := r.URL.Query().Get("offset"); s != "" {
			offset, _ = strconv.Atoi(s)
		}
		end := offset + pageSize
		if end > total {
			end = total
		}

		json.NewEncoder(w).Encode(map[string]any{
			"count":         total,
			"offset":        offset,
			"vintage_dates": all[offset:end],
		})
	}))
	defer srv.Close()

	c := New("test-key", WithBaseURL(srv.URL))
	vintages, err := c.VintageDates(context.Background(), "GDPC1")
	if err != nil {
		t.Fatalf("VintageDates: %v", err)
	}

	if len(vintages) != total {
		t.Fatalf("got %d vintage dates, want %d", len(vintages), total)
	}
	if requests != 3 {
		t.Errorf("made %d requests, want 3", requests)
	}
	for i, v := range vintages {
		if dates.Format(v) != all[i] {
			t.Fatalf("vintage %d = %s, want %s: duplicate or gap", i, dates.Format(v), all[i])
		}
	}
}
