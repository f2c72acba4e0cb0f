package fraud

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ContentFields is the declared document content submitted alongside the file.
type ContentFields struct {
	Institution string `json:"institution"`
	StudentName string `json:"student_name"`
	Grade       string `json:"grade"`
	Date        string `json:"date"`
}

var placeholderPattern = regexp.MustCompile(`(?i)\b(fake|test|sample|demo)\b`)

// Earliest plausible issue year for a document still being verified.
const earliestIssueYear = 1950

// AnalyzeContent scores the declared fields for plausibility: presence,
// placeholder values, and a believable issue date. The overall score is the
// mean of the four field scores.
func AnalyzeContent(fields ContentFields, now time.Time) AnalyzerResult {
	var issues []string

	institution := 1.0
	switch {
	case strings.TrimSpace(fields.Institution) == "":
		institution = 0
		issues = append(issues, "Institution name is missing")
	case placeholderPattern.MatchString(fields.Institution):
		institution = 0.1
		issues = append(issues, "Suspicious institution name detected")
	}

	name := 1.0
	trimmedName := strings.TrimSpace(fields.StudentName)
	switch {
	case trimmedName == "":
		name = 0
		issues = append(issues, "Student name is missing")
	case placeholderPattern.MatchString(trimmedName) || strings.EqualFold(trimmedName, "admin"):
		name = 0.2
		issues = append(issues, "Suspicious student name detected")
	}

	grade := 1.0
	if strings.TrimSpace(fields.Grade) == "" {
		grade = 0.5
		issues = append(issues, "Grade is missing")
	}

	date := 1.0
	switch year, ok := parseYear(fields.Date); {
	case strings.TrimSpace(fields.Date) == "":
		date = 0
		issues = append(issues, "Issue date is missing")
	case !ok:
		date = 0.3
		issues = append(issues, "Issue date format is unreadable")
	case year < earliestIssueYear || year > now.Year()+5:
		date = 0.2
		issues = append(issues, "Issue date is outside a plausible range")
	}

	score := (institution + name + grade + date) / 4
	return AnalyzerResult{Score: score, Issues: issues}
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

func parseYear(date string) (int, bool) {
	m := yearPattern.FindStringSubmatch(date)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
