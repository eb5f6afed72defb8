package detection

import (
	"strings"
	"unicode/utf8"

	"github.com/stoik/phishguard/internal/domain"
)

// MaxFuzzyScore is the top of the fuzzy-hash comparison scale
const MaxFuzzyScore = 100

// EditDistance returns the case-insensitive Levenshtein distance between
// s1 and s2, counting runes rather than bytes.
//
// If the computation fails, the result is larger than either input, so a
// threshold comparison downstream can never match on an error.
func EditDistance(s1, s2 string) (distance int) {
	defer func() {
		if recover() != nil {
			distance = failedDistance(s1, s2)
		}
	}()

	return levenshteinDistance([]rune(strings.ToLower(s1)), []rune(strings.ToLower(s2)))
}

func failedDistance(s1, s2 string) int {
	return max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2)) + 2
}

// ContentScore holds the two content similarity metrics for a pair of bodies
type ContentScore struct {
	OverlapPercent float64
	FuzzyScore     int
}

// Scorer compares page bodies with a lexical metric and a fuzzy hash
type Scorer struct {
	hasher FuzzyHasher
}

// NewScorer creates a scorer backed by hasher. A nil hasher uses ssdeep.
func NewScorer(hasher FuzzyHasher) *Scorer {
	if hasher == nil {
		hasher = SSDeepHasher{}
	}
	return &Scorer{hasher: hasher}
}

// ContentSimilarity scores bodyA against bodyB.
//
// The fuzzy score is the signal detectors threshold on; the overlap
// percentage is reported alongside it.
func (s *Scorer) ContentSimilarity(bodyA, bodyB string) (ContentScore, error) {
	if strings.TrimSpace(bodyA) == "" || strings.TrimSpace(bodyB) == "" {
		return ContentScore{}, domain.ErrInsufficientContent
	}

	score := ContentScore{OverlapPercent: TokenOverlap(bodyA, bodyB)}

	// Identical input always hashes identically
	if bodyA == bodyB {
		score.FuzzyScore = MaxFuzzyScore
		return score, nil
	}

	hashA, err := s.hasher.Hash([]byte(bodyA))
	if err != nil {
		return ContentScore{}, &domain.ComputationError{Op: "fuzzy hash", Err: err}
	}
	hashB, err := s.hasher.Hash([]byte(bodyB))
	if err != nil {
		return ContentScore{}, &domain.ComputationError{Op: "fuzzy hash", Err: err}
	}

	fuzzy, err := s.hasher.Compare(hashA, hashB)
	if err != nil {
		return ContentScore{}, &domain.ComputationError{Op: "fuzzy hash compare", Err: err}
	}
	score.FuzzyScore = min(max(fuzzy, 0), MaxFuzzyScore)

	return score, nil
}

// TokenOverlap returns the share of distinct whitespace-delimited tokens the
// two texts have in common, as a percentage of all distinct tokens
func TokenOverlap(textA, textB string) float64 {
	tokensA := tokenSet(textA)
	tokensB := tokenSet(textB)

	union := len(tokensA)
	shared := 0
	for token := range tokensB {
		if _, ok := tokensA[token]; ok {
			shared++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(shared) / float64(union) * 100
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(text)
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}
