package detection

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/stoik/phishguard/internal/domain"
)

var errNoHostname = errors.New("no hostname")

// hostname extracts the hostname from a full URL or a bare host such as
// "paypal.com" or "paypal.com/login". Case is preserved; reducers lowercase.
func hostname(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("hostname: %w", domain.ErrEmptyInput)
	}

	// Bare hosts such as "paypal.com/login" or "localhost:8080" need an
	// authority marker to parse as a host rather than a path
	candidate := trimmed
	if !strings.Contains(trimmed, "://") && !strings.HasPrefix(trimmed, "//") {
		candidate = "//" + trimmed
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", &domain.ParseError{Input: raw, Err: err}
	}

	host := u.Hostname()
	if host == "" {
		return "", &domain.ParseError{Input: raw, Err: errNoHostname}
	}
	return host, nil
}

// levenshteinDistance calculates the edit distance between two rune slices
func levenshteinDistance(s1, s2 []rune) int {
	// Base cases: if either string is empty, distance is the other string's length
	if len(s1) == 0 || len(s2) == 0 {
		return len(s1) + len(s2)
	}

	// matrix[i][j] = distance between s1[0:i] and s2[0:j]
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}

	// matrix[i][0] represents deleting all i characters from s1
	// matrix[0][j] represents inserting all j characters from s2
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}
