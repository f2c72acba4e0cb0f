package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func result(score float64, issues ...string) AnalyzerResult {
	return AnalyzerResult{Score: score, Issues: issues}
}

func TestClassify_AllClean(t *testing.T) {
	a := Classify(result(1), result(1), result(1), DefaultWeights)
	assert.Equal(t, RiskLow, a.RiskLevel)
	assert.InDelta(t, 0.0, a.RiskScore, 1e-9)
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
}

func TestClassify_AllFailed(t *testing.T) {
	a := Classify(result(0), result(0), result(0), DefaultWeights)
	assert.Equal(t, RiskHigh, a.RiskLevel)
	assert.InDelta(t, 1.0, a.RiskScore, 1e-9)
}

func TestClassify_Middling(t *testing.T) {
	a := Classify(result(0.6), result(0.6), result(0.6), DefaultWeights)
	assert.Equal(t, RiskMedium, a.RiskLevel)
	assert.InDelta(t, 0.4, a.RiskScore, 1e-9)
}

func TestClassify_TierEdges(t *testing.T) {
	a := Classify(result(0.75), result(0.75), result(0.75), DefaultWeights)
	assert.Equal(t, RiskLow, a.RiskLevel)

	a = Classify(result(0.55), result(0.55), result(0.55), DefaultWeights)
	assert.Equal(t, RiskMedium, a.RiskLevel)

	a = Classify(result(0.45), result(0.45), result(0.45), DefaultWeights)
	assert.Equal(t, RiskHigh, a.RiskLevel)
}

func TestClassify_CollectsIssuesAndRecommendations(t *testing.T) {
	a := Classify(
		result(0.2, "Edge structure shows tampering signs"),
		result(0.2, "Suspicious institution name detected"),
		result(0.2, "Issue date format is unreadable"),
		DefaultWeights,
	)
	assert.Equal(t, RiskHigh, a.RiskLevel)
	assert.Len(t, a.Issues, 3)
	assert.Contains(t, a.Recommendations, "Reject pending verification with the issuing institute")
	assert.Contains(t, a.Recommendations, "Image forensics analysis required")
	assert.Contains(t, a.Recommendations, "Verify document format with institution")
	assert.Contains(t, a.Recommendations, "Enhanced verification process required")
}
