package detection

import (
	"sort"
	"unicode/utf8"

	"github.com/stoik/phishguard/internal/domain"
)

// TyposquattingDetector flags linked domains that are a small number of
// edits away from a legitimate domain
type TyposquattingDetector struct {
	reduce Reducer
}

// NewTyposquattingDetector creates a detector using reduce to compute domain
// bases. A nil reducer uses DomainBase.
func NewTyposquattingDetector(reduce Reducer) *TyposquattingDetector {
	if reduce == nil {
		reduce = DomainBase
	}
	return &TyposquattingDetector{reduce: reduce}
}

// Name returns the detector name
func (d *TyposquattingDetector) Name() string {
	return "Domain Typosquatting"
}

// SimilarityThreshold returns the largest edit distance still treated as a
// typo of legitimateBase. Short bases get the stricter cutoff.
func SimilarityThreshold(legitimateBase string) int {
	if utf8.RuneCountInString(legitimateBase) <= 7 {
		return 2
	}
	return 3
}

// DomainBaseOf returns the domain base of a URL or bare hostname
func (d *TyposquattingDetector) DomainBaseOf(rawURL string) (string, error) {
	host, err := hostname(rawURL)
	if err != nil {
		return "", err
	}
	return d.reduce(host), nil
}

// Detect runs the full check of links against every legitimate domain.
// Only an unusable targetURL is returned as an error.
func (d *TyposquattingDetector) Detect(targetURL string, links, legitimate []string) ([]domain.TypoFinding, []domain.Diagnostic, error) {
	targetBase, err := d.DomainBaseOf(targetURL)
	if err != nil {
		return nil, nil, err
	}

	observed, diagnostics := d.LinkBases(targetBase, links)

	findings := make([]domain.TypoFinding, 0)
	for _, legit := range legitimate {
		matched, err := d.MatchLegitimate(observed, legit)
		if err != nil {
			diagnostics = append(diagnostics, domain.DiagnosticFor(legit, err))
			continue
		}
		findings = append(findings, matched...)
	}

	return DedupeTypoFindings(findings), diagnostics, nil
}

// LinkBases returns the distinct domain bases of links, leaving out the
// target's own base. A link without a usable hostname is skipped.
func (d *TyposquattingDetector) LinkBases(targetBase string, links []string) ([]string, []domain.Diagnostic) {
	seen := make(map[string]struct{}, len(links))
	bases := make([]string, 0, len(links))
	diagnostics := make([]domain.Diagnostic, 0)

	for _, link := range links {
		base, err := d.DomainBaseOf(link)
		if err != nil {
			diagnostics = append(diagnostics, domain.DiagnosticFor(link, err))
			continue
		}

		// A site linking to itself is never a finding
		if base == targetBase {
			continue
		}

		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		bases = append(bases, base)
	}

	sort.Strings(bases)
	return bases, diagnostics
}

// MatchLegitimate compares observed domain bases against one legitimate
// domain. Exact matches are real links to the legitimate site, not findings.
func (d *TyposquattingDetector) MatchLegitimate(observed []string, legitimate string) ([]domain.TypoFinding, error) {
	legitBase, err := d.DomainBaseOf(legitimate)
	if err != nil {
		return nil, err
	}
	threshold := SimilarityThreshold(legitBase)

	findings := make([]domain.TypoFinding, 0)
	for _, base := range observed {
		distance := EditDistance(base, legitBase)
		if distance > 0 && distance <= threshold {
			findings = append(findings, domain.TypoFinding{
				ObservedDomainBase: base,
				MatchedDomainBase:  legitBase,
				EditDistance:       distance,
			})
		}
	}
	return findings, nil
}

// DedupeTypoFindings collapses identical findings and sorts the result
func DedupeTypoFindings(findings []domain.TypoFinding) []domain.TypoFinding {
	seen := make(map[domain.TypoFinding]struct{}, len(findings))
	unique := make([]domain.TypoFinding, 0, len(findings))
	for _, finding := range findings {
		if _, ok := seen[finding]; ok {
			continue
		}
		seen[finding] = struct{}{}
		unique = append(unique, finding)
	}

	sort.Slice(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.ObservedDomainBase != b.ObservedDomainBase {
			return a.ObservedDomainBase < b.ObservedDomainBase
		}
		if a.MatchedDomainBase != b.MatchedDomainBase {
			return a.MatchedDomainBase < b.MatchedDomainBase
		}
		return a.EditDistance < b.EditDistance
	})
	return unique
}
