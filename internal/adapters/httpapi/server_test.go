package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stoik/phishguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	report *domain.AnalysisReport
	err    error
	got    string
}

func (a *stubAnalyzer) Analyze(_ context.Context, targetURL string) (*domain.AnalysisReport, error) {
	a.got = targetURL
	return a.report, a.err
}

type stubStore struct {
	reports map[uuid.UUID]*domain.AnalysisReport
	limit   int
}

func (s *stubStore) SaveReport(_ context.Context, r *domain.AnalysisReport) error {
	s.reports[r.ID] = r
	return nil
}

func (s *stubStore) GetReport(_ context.Context, id uuid.UUID) (*domain.AnalysisReport, error) {
	return s.reports[id], nil
}

func (s *stubStore) RecentReports(_ context.Context, limit int) ([]domain.AnalysisReport, error) {
	s.limit = limit
	out := make([]domain.AnalysisReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubStore) Close() error { return nil }

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, New(&stubAnalyzer{}, nil, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPostAnalysis(t *testing.T) {
	complete := domain.NewAnalysisReport("https://phish.example")
	complete.Status = domain.StatusComplete

	unreachable := domain.NewAnalysisReport("https://gone.example")
	unreachable.Status = domain.StatusTargetUnreachable

	tests := []struct {
		name       string
		body       string
		analyzer   *stubAnalyzer
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{
			name:       "Complete analysis",
			body:       `{"target_url":"https://phish.example"}`,
			analyzer:   &stubAnalyzer{report: complete},
			wantStatus: http.StatusOK,
			wantField:  "status",
			wantValue:  "complete",
		},
		{
			name:       "Unreachable target still returns report",
			body:       `{"target_url":"https://gone.example"}`,
			analyzer:   &stubAnalyzer{report: unreachable, err: &domain.FetchError{URL: "https://gone.example", StatusCode: 404}},
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "status",
			wantValue:  "target_unreachable",
		},
		{
			name:       "Malformed JSON",
			body:       `{"target_url":`,
			analyzer:   &stubAnalyzer{},
			wantStatus: http.StatusBadRequest,
			wantField:  "error",
			wantValue:  "invalid request body",
		},
		{
			name:       "Missing target",
			body:       `{"target_url":"  "}`,
			analyzer:   &stubAnalyzer{},
			wantStatus: http.StatusBadRequest,
			wantField:  "error",
			wantValue:  "target_url is required",
		},
		{
			name:       "Empty input from service",
			body:       `{"target_url":"https://phish.example"}`,
			analyzer:   &stubAnalyzer{err: domain.ErrEmptyInput},
			wantStatus: http.StatusBadRequest,
			wantField:  "error",
			wantValue:  "empty input",
		},
		{
			name:       "Unexpected failure",
			body:       `{"target_url":"https://phish.example"}`,
			analyzer:   &stubAnalyzer{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantField:  "error",
			wantValue:  "analysis failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, New(tt.analyzer, nil, nil), http.MethodPost, "/analyses", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantValue, body[tt.wantField])
		})
	}
}

func TestGetAnalysis(t *testing.T) {
	stored := domain.NewAnalysisReport("https://phish.example")
	stored.Status = domain.StatusComplete
	store := &stubStore{reports: map[uuid.UUID]*domain.AnalysisReport{stored.ID: stored}}
	srv := New(&stubAnalyzer{}, store, nil)

	rec := do(t, srv, http.MethodGet, "/analyses/"+stored.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stored.ID, got.ID)

	rec = do(t, srv, http.MethodGet, "/analyses/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/analyses/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAnalyses(t *testing.T) {
	stored := domain.NewAnalysisReport("https://phish.example")
	store := &stubStore{reports: map[uuid.UUID]*domain.AnalysisReport{stored.ID: stored}}
	srv := New(&stubAnalyzer{}, store, nil)

	rec := do(t, srv, http.MethodGet, "/analyses?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, store.limit)

	var got []domain.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	rec = do(t, srv, http.MethodGet, "/analyses?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStorageEndpointsWithoutStore(t *testing.T) {
	srv := New(&stubAnalyzer{}, nil, nil)

	assert.Equal(t, http.StatusNotImplemented, do(t, srv, http.MethodGet, "/analyses", "").Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, srv, http.MethodGet, "/analyses/"+uuid.NewString(), "").Code)
}
