package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stoik/phishguard/internal/domain"
	"github.com/stoik/phishguard/internal/domain/detection"
	"github.com/stoik/phishguard/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalysisService orchestrates page retrieval and both detectors for one target
type AnalysisService struct {
	fetcher   ports.PageFetcher
	extractor ports.LinkExtractor
	typo      *detection.TyposquattingDetector
	content   *detection.ContentSimilarityDetector

	// legitimate is injected once and never modified
	legitimate []string
	workers    int

	// store is optional; nil disables persistence
	store  ports.ReportStore
	logger *zap.Logger
}

// Option customizes an AnalysisService
type Option func(*AnalysisService)

// WithWorkers bounds the fan-out over legitimate domains. Zero or less
// means one goroutine per domain.
func WithWorkers(n int) Option {
	return func(s *AnalysisService) { s.workers = n }
}

// WithReportStore persists every finished report to store
func WithReportStore(store ports.ReportStore) Option {
	return func(s *AnalysisService) { s.store = store }
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *AnalysisService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnalysisService creates a new analysis service with dependency injection
func NewAnalysisService(
	fetcher ports.PageFetcher,
	extractor ports.LinkExtractor,
	typo *detection.TyposquattingDetector,
	content *detection.ContentSimilarityDetector,
	legitimate []string,
	opts ...Option,
) *AnalysisService {
	s := &AnalysisService{
		fetcher:    fetcher,
		extractor:  extractor,
		typo:       typo,
		content:    content,
		legitimate: append([]string(nil), legitimate...),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("analysis")
	return s
}

// LegitimateDomains returns a copy of the configured legitimate domains
func (s *AnalysisService) LegitimateDomains() []string {
	return append([]string(nil), s.legitimate...)
}

// Analyze runs the full pipeline against targetURL.
//
// Error handling strategy:
//   - Empty target or no legitimate domains: returns ErrEmptyInput and no report
//   - Target cannot be fetched: returns a target_unreachable report AND the *FetchError
//   - Failures on a single link or legitimate domain become report diagnostics
func (s *AnalysisService) Analyze(ctx context.Context, targetURL string) (*domain.AnalysisReport, error) {
	targetURL = strings.TrimSpace(targetURL)
	if targetURL == "" {
		return nil, fmt.Errorf("target url: %w", domain.ErrEmptyInput)
	}
	if len(s.legitimate) == 0 {
		return nil, fmt.Errorf("legitimate domains: %w", domain.ErrEmptyInput)
	}

	report := domain.NewAnalysisReport(targetURL)
	log := s.logger.With(zap.String("report_id", report.ID.String()), zap.String("target", targetURL))
	log.Info("Analyzing target", zap.Int("legitimate_domains", len(s.legitimate)))

	// Fetching
	pageURL := withScheme(targetURL)
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.FetchError{URL: pageURL, Err: err}
		}
		report.Status = domain.StatusTargetUnreachable
		report.Diagnostics = append(report.Diagnostics, domain.DiagnosticFor(targetURL, err))
		report.FinishedAt = time.Now().UTC()

		log.Warn("Target could not be fetched", zap.Error(err))
		s.persist(ctx, report, log)
		return report, err
	}

	// LinkExtraction
	hrefs, err := s.extractor.ExtractHrefs(body)
	if err != nil {
		report.Diagnostics = append(report.Diagnostics, domain.DiagnosticFor(targetURL, err))
		hrefs = nil
	}
	links, linkDiagnostics, err := detection.NormalizeLinks(hrefs, pageURL)
	if err != nil {
		return nil, fmt.Errorf("normalize links: %w", err)
	}
	report.Diagnostics = append(report.Diagnostics, linkDiagnostics...)
	log.Debug("Extracted links", zap.Int("raw", len(hrefs)), zap.Int("normalized", len(links)))

	// TypoCheck
	log.Debug("Running detector", zap.String("detector", s.typo.Name()))
	typoFindings, typoDiagnostics, err := s.checkTypos(ctx, pageURL, links)
	if err != nil {
		return nil, err
	}
	report.TypoFindings = typoFindings
	report.Diagnostics = append(report.Diagnostics, typoDiagnostics...)

	// ContentCheck
	log.Debug("Running detector", zap.String("detector", s.content.Name()))
	contentFindings, contentDiagnostics, err := s.checkContent(ctx, pageURL, body)
	if err != nil {
		return nil, err
	}
	report.ContentFindings = contentFindings
	report.Diagnostics = append(report.Diagnostics, contentDiagnostics...)

	// Complete
	sortDiagnostics(report.Diagnostics)
	report.Status = domain.StatusComplete
	report.FinishedAt = time.Now().UTC()

	for _, d := range report.Diagnostics {
		log.Warn("Skipped item", zap.String("kind", string(d.Kind)), zap.String("subject", d.Subject), zap.String("reason", d.Message))
	}
	log.Info("Analysis complete",
		zap.String("verdict", report.Verdict()),
		zap.Int("typo_findings", len(report.TypoFindings)),
		zap.Int("content_findings", len(report.ContentFindings)),
		zap.Int("diagnostics", len(report.Diagnostics)),
	)

	s.persist(ctx, report, log)
	return report, nil
}

// checkTypos compares the link domain bases against every legitimate domain,
// one goroutine per domain
func (s *AnalysisService) checkTypos(ctx context.Context, pageURL string, links []string) ([]domain.TypoFinding, []domain.Diagnostic, error) {
	targetBase, err := s.typo.DomainBaseOf(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("target domain: %w", err)
	}
	observed, diagnostics := s.typo.LinkBases(targetBase, links)

	var mu sync.Mutex
	findings := make([]domain.TypoFinding, 0)

	s.fanOut(ctx, func(_ context.Context, legit string) {
		matched, err := s.typo.MatchLegitimate(observed, legit)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			diagnostics = append(diagnostics, domain.DiagnosticFor(legit, err))
			return
		}
		findings = append(findings, matched...)
	})

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("typo check: %w", err)
	}
	return detection.DedupeTypoFindings(findings), diagnostics, nil
}

// checkContent fetches every legitimate page and compares it with the target body
func (s *AnalysisService) checkContent(ctx context.Context, pageURL, body string) ([]domain.ContentFinding, []domain.Diagnostic, error) {
	var mu sync.Mutex
	findings := make([]domain.ContentFinding, 0)
	diagnostics := make([]domain.Diagnostic, 0)

	s.fanOut(ctx, func(ctx context.Context, legit string) {
		legitURL := withScheme(legit)

		// A legitimate page that cannot be fetched is skipped, never compared
		legitBody, err := s.fetcher.Fetch(ctx, legitURL)
		if err == nil {
			var finding *domain.ContentFinding
			finding, err = s.content.Detect(pageURL, body, legitURL, legitBody)

			if err == nil {
				if finding != nil {
					mu.Lock()
					findings = append(findings, *finding)
					mu.Unlock()
				}
				return
			}
		}

		mu.Lock()
		diagnostics = append(diagnostics, domain.DiagnosticFor(legit, err))
		mu.Unlock()
	})

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("content check: %w", err)
	}
	detection.SortContentFindings(findings)
	return findings, diagnostics, nil
}

// fanOut runs fn once per legitimate domain, bounded by the worker count.
// fn must contain its own failures.
func (s *AnalysisService) fanOut(ctx context.Context, fn func(ctx context.Context, legit string)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerLimit())

	for _, legit := range s.legitimate {
		legit := legit // per-iteration copy (go1.21 loop semantics)
		g.Go(func() error {
			fn(gctx, legit)
			return nil
		})
	}
	// Workers never return an error
	_ = g.Wait()
}

func (s *AnalysisService) workerLimit() int {
	if s.workers <= 0 || s.workers > len(s.legitimate) {
		return len(s.legitimate)
	}
	return s.workers
}

// persist stores the report when a store is configured. A failure here is
// logged and never fails the run.
func (s *AnalysisService) persist(ctx context.Context, report *domain.AnalysisReport, log *zap.Logger) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveReport(ctx, report); err != nil {
		log.Error("Failed to persist report", zap.Error(err))
	}
}

// withScheme turns a bare hostname into an https URL
func withScheme(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + strings.TrimPrefix(raw, "//")
}

func sortDiagnostics(diagnostics []domain.Diagnostic) {
	sort.Slice(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Message < b.Message
	})
}
