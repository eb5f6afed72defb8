package detection

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/stoik/phishguard/internal/domain"
)

// nonNavigablePrefixes are hrefs that never lead to another page
var nonNavigablePrefixes = []string{"#", "mailto:", "javascript:", "tel:"}

// NormalizeLinks resolves raw hrefs against baseURL and returns the
// deduplicated, sorted set of absolute http(s) links.
//
// A link that cannot be parsed is skipped and reported as a diagnostic. The
// returned error is only set when baseURL itself is unusable.
func NormalizeLinks(rawLinks []string, baseURL string) ([]string, []domain.Diagnostic, error) {
	base, err := parseAbsoluteURL(baseURL)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(rawLinks))
	diagnostics := make([]domain.Diagnostic, 0)

	for _, raw := range rawLinks {
		link := strings.TrimSpace(raw)
		if link == "" || isNonNavigable(link) {
			continue
		}

		ref, err := url.Parse(link)
		if err != nil {
			diagnostics = append(diagnostics, domain.DiagnosticFor(raw, &domain.ParseError{Input: raw, Err: err}))
			continue
		}

		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		seen[resolved.String()] = struct{}{}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return links, diagnostics, nil
}

func isNonNavigable(link string) bool {
	lower := strings.ToLower(link)
	for _, prefix := range nonNavigablePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// parseAbsoluteURL parses a URL that must carry a scheme and a host
func parseAbsoluteURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base URL: %w", domain.ErrEmptyInput)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &domain.ParseError{Input: raw, Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, &domain.ParseError{Input: raw, Err: errors.New("not an absolute URL")}
	}
	return u, nil
}
