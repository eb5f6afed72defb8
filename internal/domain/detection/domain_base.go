package detection

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Reducer maps a hostname to its registrable domain base
type Reducer func(host string) string

const (
	ReducerHeuristic    = "heuristic"
	ReducerPublicSuffix = "publicsuffix"
)

// DomainBase reduces a hostname to "label.tld", or to "label.co.tld" when the
// label before the TLD is "co".
//
// This is a narrow heuristic, not a public suffix lookup: "example.com.au"
// reduces to "com.au". PublicSuffixBase answers the same question with the
// maintained suffix list.
func DomainBase(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return strings.ToLower(host)
	}

	keep := 2
	if labels[len(labels)-2] == "co" {
		keep = 3
	}
	return strings.ToLower(strings.Join(labels[len(labels)-keep:], "."))
}

// PublicSuffixBase returns the eTLD+1 of host, falling back to DomainBase
// when the suffix list cannot reduce it (bare TLDs, IP literals, "localhost")
func PublicSuffixBase(host string) string {
	normalized := strings.ToLower(strings.TrimSuffix(host, "."))
	base, err := publicsuffix.EffectiveTLDPlusOne(normalized)
	if err != nil {
		return DomainBase(normalized)
	}
	return base
}

// ReducerFor resolves a configured reducer name
func ReducerFor(name string) (Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ReducerHeuristic:
		return DomainBase, nil
	case ReducerPublicSuffix:
		return PublicSuffixBase, nil
	default:
		return nil, fmt.Errorf("unknown domain reducer %q", name)
	}
}
