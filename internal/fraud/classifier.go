package fraud

import (
	"strings"
	"time"
)

// RiskLevel buckets a composite score into an actionable tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Weights blend the three analyzer scores into the composite.
type Weights struct {
	Structure float64
	Content   float64
	Forensics float64
}

// DefaultWeights favors structure slightly: layout tampering is the most
// common forgery signal in practice.
var DefaultWeights = Weights{Structure: 0.4, Content: 0.3, Forensics: 0.3}

// Tier cutoffs on the composite score.
const (
	riskLowThreshold    = 0.7
	riskMediumThreshold = 0.5
)

// AnalysisDetails carries the per-analyzer breakdown.
type AnalysisDetails struct {
	Structure AnalyzerResult `json:"structure"`
	Content   AnalyzerResult `json:"content"`
	Forensics AnalyzerResult `json:"forensics"`
}

// Assessment is the final fraud verdict for one analysis run.
type Assessment struct {
	AnalysisID      string          `json:"analysis_id"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	RiskScore       float64         `json:"fraud_probability"`
	Confidence      float64         `json:"confidence_score"`
	Details         AnalysisDetails `json:"analysis_details"`
	Issues          []string        `json:"detected_issues,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
}

// Classify blends the analyzer results into a risk assessment.
func Classify(structure, content, forensics AnalyzerResult, weights Weights) Assessment {
	composite := weights.Structure*structure.Score +
		weights.Content*content.Score +
		weights.Forensics*forensics.Score

	level := RiskHigh
	switch {
	case composite >= riskLowThreshold:
		level = RiskLow
	case composite >= riskMediumThreshold:
		level = RiskMedium
	}

	var issues []string
	issues = append(issues, structure.Issues...)
	issues = append(issues, content.Issues...)
	issues = append(issues, forensics.Issues...)

	return Assessment{
		RiskLevel:       level,
		RiskScore:       1 - composite,
		Confidence:      composite,
		Details:         AnalysisDetails{Structure: structure, Content: content, Forensics: forensics},
		Issues:          issues,
		Recommendations: recommend(level, issues),
	}
}

// recommend maps the tier and the observed issues to reviewer guidance.
func recommend(level RiskLevel, issues []string) []string {
	var recs []string
	switch level {
	case RiskLow:
		recs = append(recs, "Document appears authentic; no manual review required")
	case RiskMedium:
		recs = append(recs, "Manual review recommended before accepting this document")
	case RiskHigh:
		recs = append(recs, "Reject pending verification with the issuing institute")
	}
	joined := strings.ToLower(strings.Join(issues, " "))
	if strings.Contains(joined, "tampering") {
		recs = append(recs, "Image forensics analysis required")
	}
	if strings.Contains(joined, "format") {
		recs = append(recs, "Verify document format with institution")
	}
	if strings.Contains(joined, "suspicious") {
		recs = append(recs, "Enhanced verification process required")
	}
	return recs
}
