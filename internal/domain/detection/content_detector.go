package detection

import (
	"sort"

	"github.com/stoik/phishguard/internal/domain"
)

// ContentAlertThreshold is the fuzzy score a pair must exceed to be reported
const ContentAlertThreshold = 50

// ContentSimilarityDetector flags a target page whose body is a near copy of
// a legitimate page
type ContentSimilarityDetector struct {
	scorer *Scorer
}

// NewContentSimilarityDetector creates a detector around scorer
func NewContentSimilarityDetector(scorer *Scorer) *ContentSimilarityDetector {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	return &ContentSimilarityDetector{scorer: scorer}
}

// Name returns the detector name
func (d *ContentSimilarityDetector) Name() string {
	return "Content Similarity"
}

// Detect compares one target body with one legitimate body. It returns nil
// when the pair scores at or below the threshold, and the scorer's error
// when the pair could not be scored.
func (d *ContentSimilarityDetector) Detect(targetURL, targetBody, legitimateURL, legitimateBody string) (*domain.ContentFinding, error) {
	score, err := d.scorer.ContentSimilarity(targetBody, legitimateBody)
	if err != nil {
		return nil, err
	}

	if score.FuzzyScore <= ContentAlertThreshold {
		return nil, nil
	}

	return &domain.ContentFinding{
		TargetURL:      targetURL,
		LegitimateURL:  legitimateURL,
		FuzzyScore:     score.FuzzyScore,
		OverlapPercent: score.OverlapPercent,
	}, nil
}

// SortContentFindings orders findings by legitimate URL
func SortContentFindings(findings []domain.ContentFinding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].LegitimateURL != findings[j].LegitimateURL {
			return findings[i].LegitimateURL < findings[j].LegitimateURL
		}
		return findings[i].TargetURL < findings[j].TargetURL
	})
}
