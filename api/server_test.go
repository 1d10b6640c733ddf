package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fredpanel/fredpanel/internal/config"
	"github.com/fredpanel/fredpanel/internal/fred"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc) (*Server, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.FRED.APIKey = "test-key"
	client := fred.New("test-key", fred.WithBaseURL(srv.URL))
	return NewServer(cfg, client), srv
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Errorf("health envelope: %+v", resp)
	}
}

func TestSearchEndpoint(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/search" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("search_text"); got != "unemployment" {
			t.Errorf("search_text = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"count": 1,
			"seriess": []map[string]any{
				{"id": "UNRATE", "title": "Unemployment Rate"},
			},
		})
	})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=unemployment", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.Data == nil {
		t.Errorf("envelope: %+v", resp)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called without q")
	})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error == "" {
		t.Errorf("envelope: %+v", resp)
	}
}

func TestUpstreamFailureMapsToBadGateway(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "api_key invalid", http.StatusForbidden)
	})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=gdp", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error == "" {
		t.Errorf("envelope: %+v", resp)
	}
}

func TestPanelEndpoint(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/observations" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"count": 1,
			"observations": []map[string]string{
				{"realtime_start": "2021-02-01", "realtime_end": "9999-12-31", "date": "2021-01-31", "value": "100"},
			},
		})
	})

	body, _ := json.Marshal(PanelRequest{Dates: []string{"2021-03-01", "2021-04-01"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/series/GDPC1/panel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool       `json:"success"`
		Data    fred.Panel `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if len(resp.Data.Rows) != 2 {
		t.Fatalf("got %d panel rows, want 2", len(resp.Data.Rows))
	}
	for _, row := range resp.Data.Rows {
		if row.Value != "100" || row.PeriodsBack != 1 {
			t.Errorf("unexpected row: %+v", row)
		}
	}
}

func TestPanelBadBody(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for invalid body")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/series/GDPC1/panel", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPanelMissingDates(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called without dates")
	})

	body, _ := json.Marshal(PanelRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/series/GDPC1/panel", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSeriesRangeValidation(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for bad range")
	})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/series/GDPC1?start=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConfigKeysEndpoint(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config/keys", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Success bool               `json:"success"`
		Data    []config.KeyStatus `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || !resp.Data[0].IsSet {
		t.Errorf("key status: %+v", resp.Data)
	}
}
