// Package server exposes the load engines over a local JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"loadfinder/internal/config"
	"loadfinder/internal/feed"
	"loadfinder/internal/ingest"
	"loadfinder/internal/loads"
	"loadfinder/internal/query"
	"loadfinder/internal/scoring"
	"loadfinder/internal/shortlist"
	"loadfinder/internal/store"
)

// Server serves the ingest, shortlist, scoring, and query operations over
// HTTP. It is the only process expected to write to the store while running.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store

	ingest    *ingest.Engine
	shortlist *shortlist.Engine
	scoring   *scoring.Engine
	query     *query.Engine

	listener net.Listener
	server   *http.Server
}

// New wires the engines and routes.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		ingest:    ingest.NewEngine(st, logger),
		shortlist: shortlist.NewEngine(st, logger),
		scoring:   scoring.NewEngine(st, scoring.NewCalculator(cfg.Scoring), logger),
		query:     query.NewEngine(st, cfg.Limits, logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/ingest", srv.handleIngest)
	mux.HandleFunc("/api/shortlist", srv.handleShortlist)
	mux.HandleFunc("/api/score", srv.handleScore)
	mux.HandleFunc("/api/query", srv.handleQuery)
	mux.HandleFunc("/api/pipeline", srv.handlePipeline)
	mux.HandleFunc("/api/loads/state", srv.handleState)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address. Cancelling ctx shuts
// the server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) opContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.OpTimeout())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx, cancel := s.opContext(r)
	defer cancel()

	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	runs, err := s.store.RecentRuns(ctx, 10)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	total := 0
	states := make(map[string]int, len(stats))
	for state, count := range stats {
		states[string(state)] = count
		total += count
	}
	payload := statsResponse{Total: total, States: states, Runs: make([]runPayload, 0, len(runs))}
	for _, run := range runs {
		payload.Runs = append(payload.Runs, runPayload{
			RunID:     run.RunID,
			StartedAt: run.StartedAt,
			Mode:      run.Mode,
			Source:    run.Source,
			Inserted:  run.Inserted,
			Updated:   run.Updated,
			Skipped:   run.Skipped,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	ctx, cancel := s.opContext(r)
	defer cancel()

	resp, err := s.runIngest(ctx, req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) runIngest(ctx context.Context, req ingestRequest) (ingestResponse, error) {
	path := strings.TrimSpace(req.FeedPath)
	if path == "" {
		path = s.cfg.Ingest.FeedPath
	}
	records, err := feed.ReadFile(path)
	if err != nil {
		return ingestResponse{}, err
	}
	result, err := s.ingest.Run(ctx, records, ingest.Options{Overwrite: req.Overwrite, Source: path})
	if err != nil {
		return ingestResponse{}, err
	}
	return ingestResponse{
		RunID:    result.RunID,
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
	}, nil
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	var req shortlistRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	ctx, cancel := s.opContext(r)
	defer cancel()

	resp, err := s.runShortlist(ctx, req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) runShortlist(ctx context.Context, req shortlistRequest) (shortlistResponse, error) {
	result, err := s.shortlist.Run(ctx, shortlist.Request{
		Filter:       req.toSpec(),
		Tag:          req.Tag,
		Replace:      req.Replace,
		OnlyUnscored: req.OnlyUnscored,
		Limit:        req.Limit,
	})
	if err != nil {
		return shortlistResponse{}, err
	}
	return shortlistResponse{Tag: result.Tag, Marked: result.Tagged, Total: result.Total}, nil
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	ctx, cancel := s.opContext(r)
	defer cancel()

	resp, err := s.runScore(ctx, req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) runScore(ctx context.Context, req scoreRequest) (scoreResponse, error) {
	result, err := s.scoring.Score(ctx, req.Tag, scoring.Options{
		OnlyUnscored: req.OnlyUnscored,
		Limit:        req.Limit,
	})
	if err != nil {
		return scoreResponse{}, err
	}
	return scoreResponse{Tag: result.Tag, Scored: result.Scored}, nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	ctx, cancel := s.opContext(r)
	defer cancel()

	result, err := s.query.Run(ctx, query.Request{
		Filter:       req.toSpec(),
		OnlyUnscored: req.OnlyUnscored,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	payload := queryResponse{Count: result.Count, Loads: make([]loadPayload, 0, len(result.Loads))}
	for _, load := range result.Loads {
		payload.Loads = append(payload.Loads, fromLoad(load))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	ctx, cancel := s.opContext(r)
	defer cancel()

	var resp pipelineResponse
	if req.Ingest != nil {
		result, err := s.runIngest(ctx, *req.Ingest)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		resp.Ingest = &result
	}
	if req.Shortlist != nil {
		result, err := s.runShortlist(ctx, *req.Shortlist)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		resp.Shortlist = &result

		// Score the tag the shortlist pass produced unless the caller
		// named one explicitly.
		if req.Score == nil {
			req.Score = &scoreRequest{Tag: result.Tag}
		}
	}
	if req.Score != nil {
		result, err := s.runScore(ctx, *req.Score)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		resp.Score = &result
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	key := strings.TrimSpace(req.LoadKey)
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "load_key is required")
		return
	}
	state, ok := loads.ParseState(req.State)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown state %q", req.State))
		return
	}

	ctx, cancel := s.opContext(r)
	defer cancel()
	if err := s.store.UpdateState(ctx, key, state); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stateResponse{LoadKey: key, State: string(state)})
}

func (s *Server) decodePost(w http.ResponseWriter, r *http.Request, target any) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loads.ErrValidation), errors.Is(err, loads.ErrMalformedRecord):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, loads.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, loads.ErrInvariantViolation):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
