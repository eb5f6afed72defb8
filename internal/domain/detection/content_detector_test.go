package detection

import (
	"testing"

	"github.com/stoik/phishguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentSimilarityDetector_Detect(t *testing.T) {
	tests := []struct {
		name            string
		score           int
		targetBody      string
		legitBody       string
		expectDetection bool
	}{
		{
			name:            "Identical bodies - maximum score",
			score:           0,
			targetBody:      "<form>Sign in to PayPal</form>",
			legitBody:       "<form>Sign in to PayPal</form>",
			expectDetection: true,
		},
		{
			name:            "Score above threshold",
			score:           51,
			targetBody:      "a b c",
			legitBody:       "a b d",
			expectDetection: true,
		},
		{
			name:            "Score at threshold - not reported",
			score:           ContentAlertThreshold,
			targetBody:      "a b c",
			legitBody:       "a b d",
			expectDetection: false,
		},
		{
			name:            "Low score",
			score:           12,
			targetBody:      "completely different",
			legitBody:       "page content",
			expectDetection: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := NewContentSimilarityDetector(NewScorer(&stubHasher{score: tt.score}))
			finding, err := detector.Detect("https://phish.example", tt.targetBody, "https://www.paypal.com", tt.legitBody)
			require.NoError(t, err)

			if tt.expectDetection {
				require.NotNil(t, finding, "Expected content finding")
				assert.Equal(t, "https://phish.example", finding.TargetURL)
				assert.Equal(t, "https://www.paypal.com", finding.LegitimateURL)
				assert.Greater(t, finding.FuzzyScore, ContentAlertThreshold)
			} else {
				assert.Nil(t, finding, "Expected no finding")
			}
		})
	}
}

func TestContentSimilarityDetector_IdenticalCarriesBothMetrics(t *testing.T) {
	detector := NewContentSimilarityDetector(NewScorer(&stubHasher{}))

	finding, err := detector.Detect("https://t.test", "same page body", "https://l.test", "same page body")
	require.NoError(t, err)
	require.NotNil(t, finding)
	assert.Equal(t, MaxFuzzyScore, finding.FuzzyScore)
	assert.InDelta(t, 100.0, finding.OverlapPercent, 0.001)
}

func TestContentSimilarityDetector_ZeroSharedTokens(t *testing.T) {
	detector := NewContentSimilarityDetector(NewScorer(&stubHasher{score: 80}))

	finding, err := detector.Detect("https://t.test", "alpha beta", "https://l.test", "gamma delta")
	require.NoError(t, err)
	require.NotNil(t, finding)
	assert.Zero(t, finding.OverlapPercent)
}

func TestContentSimilarityDetector_EmptyBody(t *testing.T) {
	detector := NewContentSimilarityDetector(NewScorer(&stubHasher{score: 100}))

	finding, err := detector.Detect("https://t.test", "", "https://l.test", "body")
	assert.Nil(t, finding)
	assert.ErrorIs(t, err, domain.ErrInsufficientContent)
}

func TestSortContentFindings(t *testing.T) {
	findings := []domain.ContentFinding{
		{TargetURL: "https://t", LegitimateURL: "https://www.paypal.com"},
		{TargetURL: "https://t", LegitimateURL: "https://www.google.com"},
	}
	SortContentFindings(findings)
	assert.Equal(t, "https://www.google.com", findings[0].LegitimateURL)
}
