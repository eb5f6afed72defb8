package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/stoik/phishguard/internal/domain"
)

// ReportStore defines the contract for persisting and querying analysis reports
type ReportStore interface {
	SaveReport(ctx context.Context, report *domain.AnalysisReport) error

	// GetReport returns nil, nil when no report has that ID
	GetReport(ctx context.Context, id uuid.UUID) (*domain.AnalysisReport, error)

	// RecentReports returns the latest reports, most recent first
	RecentReports(ctx context.Context, limit int) ([]domain.AnalysisReport, error)

	// Lifecycle
	Close() error
}
