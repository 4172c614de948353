// Package api provides the HTTP REST API server for riskdesk.
//
// It exposes report generation and health endpoints. Report runs are
// synchronous: the handler blocks until the committee pipeline finishes.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/riskdesk/internal/committee"
	"github.com/seenimoa/riskdesk/internal/config"
	"github.com/seenimoa/riskdesk/internal/llm"
	"github.com/seenimoa/riskdesk/internal/marketdata"
	"github.com/seenimoa/riskdesk/pkg/models"
	"github.com/seenimoa/riskdesk/pkg/utils"
)

// Fetcher gathers provider payloads for one ticker.
type Fetcher interface {
	FetchBundle(ctx context.Context, ticker string) marketdata.Bundle
}

// Runner executes the committee pipeline over fetched bundles.
type Runner interface {
	Run(ctx context.Context, bundle marketdata.Bundle, bench *marketdata.Bundle) (*models.Report, error)
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	fetcher Fetcher
	runner  Runner
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.ValidateForGeneration(); err != nil {
		return nil, err
	}
	provider, err := llm.NewFromConfig(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("LLM setup failed: %w", err)
	}

	srv := &Server{
		cfg:     cfg,
		fetcher: marketdata.NewClient(cfg.Data, cfg.Committee.Headlines),
		runner:  committee.NewPipeline(cfg, provider),
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// NewServerWith wires a server around explicit collaborators, for tests.
func NewServerWith(cfg *config.Config, fetcher Fetcher, runner Runner) *Server {
	srv := &Server{cfg: cfg, fetcher: fetcher, runner: runner}
	srv.router = srv.buildRouter()
	return srv
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
		WriteTimeout: 300 * time.Second,
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
	r.Use(middleware.Timeout(300 * time.Second))

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
		r.Post("/report", s.handleReport)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ReportRequest is the body for POST /api/v1/report. Benchmark defaults to
// the configured committee benchmark; "none" disables the benchmark block.
type ReportRequest struct {
	Ticker    string `json:"ticker"`
	Benchmark string `json:"benchmark,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": "dev",
		},
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticker := utils.ExtractTicker(req.Ticker)
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "no usable ticker in request")
		return
	}

	benchmark := req.Benchmark
	if benchmark == "" {
		benchmark = s.cfg.Committee.Benchmark
	}
	if benchmark == "none" {
		benchmark = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	bundle := s.fetcher.FetchBundle(ctx, ticker)
	var bench *marketdata.Bundle
	if benchmark != "" && benchmark != ticker {
		b := s.fetcher.FetchBundle(ctx, benchmark)
		bench = &b
	}

	rep, err := s.runner.Run(ctx, bundle, bench)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    rep,
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
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
