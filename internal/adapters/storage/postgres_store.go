package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stoik/phishguard/internal/domain"
)

// DefaultRecentLimit caps RecentReports when the caller passes no limit
const DefaultRecentLimit = 20

// PostgresStore implements ports.ReportStore for PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage instance
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Reports are written once per run and read back rarely
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates database tables if they don't exist
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
	-- ============================================================================
	-- ANALYSIS_REPORTS TABLE
	-- ============================================================================
	-- One row per analysis run, whatever its outcome.
	--
	-- typo_findings, content_findings and diagnostics are JSONB arrays. They are
	-- always read together with their report and never queried on their own.
	--
	-- status is 'complete' or 'target_unreachable'. An unreachable target still
	-- gets a row so repeated failures against the same URL stay visible.
	CREATE TABLE IF NOT EXISTS analysis_reports (
		id UUID PRIMARY KEY,
		target_url TEXT NOT NULL,
		status VARCHAR(32) NOT NULL CHECK (status IN ('complete', 'target_unreachable')),
		typo_findings JSONB NOT NULL DEFAULT '[]',
		content_findings JSONB NOT NULL DEFAULT '[]',
		diagnostics JSONB NOT NULL DEFAULT '[]',
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL
	);

	-- Backs RecentReports
	CREATE INDEX IF NOT EXISTS idx_reports_finished_at ON analysis_reports(finished_at DESC);
	-- History of a single target: "every run against this URL"
	CREATE INDEX IF NOT EXISTS idx_reports_target ON analysis_reports(target_url, finished_at DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport inserts a report. Saving the same report twice overwrites the first copy.
func (s *PostgresStore) SaveReport(ctx context.Context, report *domain.AnalysisReport) error {
	if report == nil {
		return errors.New("save report: nil report")
	}

	typoJSON, contentJSON, diagnosticsJSON, err := marshalFindings(report)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_reports (
			id, target_url, status, typo_findings, content_findings,
			diagnostics, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    typo_findings = EXCLUDED.typo_findings,
		    content_findings = EXCLUDED.content_findings,
		    diagnostics = EXCLUDED.diagnostics,
		    finished_at = EXCLUDED.finished_at
	`
	_, err = s.db.ExecContext(ctx, query,
		report.ID, report.TargetURL, string(report.Status),
		typoJSON, contentJSON, diagnosticsJSON,
		report.StartedAt, report.FinishedAt,
	)
	return err
}

// GetReport retrieves a report by ID
func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (*domain.AnalysisReport, error) {
	query := `
		SELECT id, target_url, status, typo_findings, content_findings,
		       diagnostics, started_at, finished_at
		FROM analysis_reports
		WHERE id = $1
	`
	report, err := scanReport(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RecentReports retrieves the latest reports, most recent first
func (s *PostgresStore) RecentReports(ctx context.Context, limit int) ([]domain.AnalysisReport, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT id, target_url, status, typo_findings, content_findings,
		       diagnostics, started_at, finished_at
		FROM analysis_reports
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]domain.AnalysisReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.AnalysisReport, error) {
	report := &domain.AnalysisReport{}
	var status string
	var typoJSON, contentJSON, diagnosticsJSON []byte

	err := row.Scan(
		&report.ID, &report.TargetURL, &status,
		&typoJSON, &contentJSON, &diagnosticsJSON,
		&report.StartedAt, &report.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	report.Status = domain.RunStatus(status)

	if err := unmarshalFindings(report, typoJSON, contentJSON, diagnosticsJSON); err != nil {
		return nil, fmt.Errorf("report %s: %w", report.ID, err)
	}
	return report, nil
}

func marshalFindings(report *domain.AnalysisReport) (typoJSON, contentJSON, diagnosticsJSON []byte, err error) {
	typo := report.TypoFindings
	if typo == nil {
		typo = []domain.TypoFinding{}
	}
	content := report.ContentFindings
	if content == nil {
		content = []domain.ContentFinding{}
	}
	diagnostics := report.Diagnostics
	if diagnostics == nil {
		diagnostics = []domain.Diagnostic{}
	}

	if typoJSON, err = json.Marshal(typo); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal typo findings: %w", err)
	}
	if contentJSON, err = json.Marshal(content); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal content findings: %w", err)
	}
	if diagnosticsJSON, err = json.Marshal(diagnostics); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal diagnostics: %w", err)
	}
	return typoJSON, contentJSON, diagnosticsJSON, nil
}

func unmarshalFindings(report *domain.AnalysisReport, typoJSON, contentJSON, diagnosticsJSON []byte) error {
	report.TypoFindings = []domain.TypoFinding{}
	report.ContentFindings = []domain.ContentFinding{}

	if len(typoJSON) > 0 {
		if err := json.Unmarshal(typoJSON, &report.TypoFindings); err != nil {
			return fmt.Errorf("failed to unmarshal typo findings: %w", err)
		}
	}
	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &report.ContentFindings); err != nil {
			return fmt.Errorf("failed to unmarshal content findings: %w", err)
		}
	}
	if len(diagnosticsJSON) > 0 {
		if err := json.Unmarshal(diagnosticsJSON, &report.Diagnostics); err != nil {
			return fmt.Errorf("failed to unmarshal diagnostics: %w", err)
		}
	}
	if len(report.Diagnostics) == 0 {
		report.Diagnostics = nil
	}
	return nil
}
