// Package api provides the HTTP REST API server for fredpanel.
//
// It exposes series search, observation retrieval, point-in-time panel
// construction, release listings, and vintage dates as JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fredpanel/fredpanel/internal/config"
	"github.com/fredpanel/fredpanel/internal/fred"
	"github.com/fredpanel/fredpanel/internal/infra"
	"github.com/fredpanel/fredpanel/pkg/dates"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	client *fred.Client
}

// APIResponse is the uniform response envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PanelRequest is the body for POST /api/v1/series/{id}/panel.
// Observation dates may be listed explicitly, or generated as month-ends
// between From and To when Dates is empty.
type PanelRequest struct {
	Dates  []string `json:"observation_dates,omitempty"`
	From   string   `json:"from,omitempty"` // YYYY-MM-DD
	To     string   `json:"to,omitempty"`   // YYYY-MM-DD
	Window *int     `json:"window,omitempty"`
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, client *fred.Client) *Server {
	s := &Server{cfg: cfg, client: client}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/search", s.handleSearch)

		r.Get("/series/{id}", s.handleSeries)
		r.Get("/series/{id}/info", s.handleSeriesInfo)
		r.Post("/series/{id}/panel", s.handlePanel)
		r.Get("/series/{id}/vintages", s.handleVintages)
		r.Get("/series/{id}/feed", s.handleFeed)

		r.Get("/releases", s.handleReleases)

		r.Get("/config/keys", s.handleConfigKeys)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	result, err := s.client.SearchSeries(r.Context(), query)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start, end, err := parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := s.client.GetSeries(r.Context(), id, start, end)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: points})
}

func (s *Server) handleSeriesInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := s.client.SeriesInfo(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: info})
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	obsDates, err := req.observationDates()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	window := fred.DefaultWindow
	if req.Window != nil {
		window = *req.Window
	}

	panel, err := s.client.GetPanel(r.Context(), id, obsDates, window)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: panel})
}

func (s *Server) handleVintages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	vintages, err := s.client.VintageDates(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: vintages})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := s.client.SeriesFeed(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: items})
}

func (s *Server) handleReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := s.client.Releases(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: releases})
}

func (s *Server) handleConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// observationDates resolves a panel request into concrete dates: either the
// explicit list, or a month-end grid between from and to.
func (pr *PanelRequest) observationDates() ([]time.Time, error) {
	if len(pr.Dates) > 0 {
		return dates.ParseAll(pr.Dates)
	}
	if pr.From == "" || pr.To == "" {
		return nil, errors.New("observation_dates or from/to are required")
	}
	from, err := dates.Parse(pr.From)
	if err != nil {
		return nil, err
	}
	to, err := dates.Parse(pr.To)
	if err != nil {
		return nil, err
	}
	return dates.MonthEnds(from, to), nil
}

// parseRange parses optional start/end query parameters, defaulting to the
// trailing year.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(-1, 0, 0)
	end := now

	var err error
	if startStr != "" {
		if start, err = dates.Parse(startStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		if end, err = dates.Parse(endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// writeUpstreamError maps an upstream HTTP failure to 502 and everything
// else to 500.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var httpErr *infra.ErrHTTP
	if errors.As(err, &httpErr) {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
