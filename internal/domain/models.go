package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus describes how far an analysis run got
type RunStatus string

const (
	// StatusComplete means every stage ran. Zero findings is still complete.
	StatusComplete RunStatus = "complete"

	// StatusTargetUnreachable means the target page could not be fetched and
	// no detector ran
	StatusTargetUnreachable RunStatus = "target_unreachable"
)

// DiagnosticKind classifies a contained, non-fatal failure
type DiagnosticKind string

const (
	DiagnosticFetchFailure       DiagnosticKind = "FETCH_FAILURE"
	DiagnosticParseFailure       DiagnosticKind = "PARSE_FAILURE"
	DiagnosticComputationFailure DiagnosticKind = "COMPUTATION_FAILURE"
)

// TypoFinding records a linked domain that sits within edit-distance range
// of a legitimate domain without being identical to it
type TypoFinding struct {
	ObservedDomainBase string `json:"observed_domain_base"`
	MatchedDomainBase  string `json:"matched_domain_base"`
	EditDistance       int    `json:"edit_distance"`
}

// ContentFinding records a target page whose body closely resembles a
// legitimate page
type ContentFinding struct {
	TargetURL      string  `json:"target_url"`
	LegitimateURL  string  `json:"legitimate_url"`
	FuzzyScore     int     `json:"fuzzy_score"`     // 0 to 100
	OverlapPercent float64 `json:"overlap_percent"` // 0.0 to 100.0
}

// Diagnostic is a failure on a single item (one link, one legitimate domain)
// that was skipped without aborting the run
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Subject string         `json:"subject"`
	Message string         `json:"message"`
}

// AnalysisReport aggregates everything one run found for one target URL
//
// Findings are kept sorted so two runs over the same inputs produce equal
// reports.
type AnalysisReport struct {
	ID              uuid.UUID        `json:"id"`
	TargetURL       string           `json:"target_url"`
	Status          RunStatus        `json:"status"`
	TypoFindings    []TypoFinding    `json:"typo_findings"`
	ContentFindings []ContentFinding `json:"content_findings"`
	Diagnostics     []Diagnostic     `json:"diagnostics,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
}

// NewAnalysisReport starts an empty report for targetURL
func NewAnalysisReport(targetURL string) *AnalysisReport {
	return &AnalysisReport{
		ID:              uuid.New(),
		TargetURL:       targetURL,
		TypoFindings:    make([]TypoFinding, 0),
		ContentFindings: make([]ContentFinding, 0),
		StartedAt:       time.Now().UTC(),
	}
}

// HasIndicators reports whether any detector produced a finding
func (r *AnalysisReport) HasIndicators() bool {
	return len(r.TypoFindings) > 0 || len(r.ContentFindings) > 0
}

// Verdict converts a report into a short categorical label for display
func (r *AnalysisReport) Verdict() string {
	switch {
	case r.Status == StatusTargetUnreachable:
		return "unknown"
	case len(r.ContentFindings) > 0 && len(r.TypoFindings) > 0:
		return "likely impersonation"
	case r.HasIndicators():
		return "suspicious"
	default:
		return "no indicators found"
	}
}
