package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stoik/phishguard/internal/domain"
	"github.com/stoik/phishguard/internal/ports"
	"go.uber.org/zap"
)

const maxRequestBytes = 64 << 10

// Analyzer runs one analysis. *application.AnalysisService satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, targetURL string) (*domain.AnalysisReport, error)
}

// Server exposes analyses over HTTP
type Server struct {
	analyzer Analyzer
	store    ports.ReportStore // nil when persistence is disabled
	logger   *zap.Logger
}

// New creates a new API server. store may be nil.
func New(analyzer Analyzer, store ports.ReportStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{analyzer: analyzer, store: store, logger: logger.Named("httpapi")}
}

// Routes returns a chi.Router with every endpoint mounted
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealthz)
	r.Route("/analyses", func(r chi.Router) {
		r.Post("/", s.postAnalysis)
		r.Get("/", s.listAnalyses)
		r.Get("/{id}", s.getAnalysis)
	})
	return r
}

// ListenAndServe serves Routes on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("API listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("Shutting down API")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type analysisRequest struct {
	TargetURL string `json:"target_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) postAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.TargetURL) == "" {
		writeError(w, http.StatusBadRequest, "target_url is required")
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req.TargetURL)
	var fetchErr *domain.FetchError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case report != nil && errors.As(err, &fetchErr):
		// The report itself records the failure
		writeJSON(w, http.StatusUnprocessableEntity, report)
	case errors.Is(err, domain.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Analysis failed", zap.String("target", req.TargetURL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "report storage is not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := s.store.GetReport(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to load report", zap.Stringer("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotImplemented, "report storage is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reports, err := s.store.RecentReports(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
