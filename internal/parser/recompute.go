package parser

import "github.com/misty-step/cerberus/internal/models"

// confidenceThreshold is the floor below which a finding is too uncertain
// to count toward the recomputed verdict, mirroring parse-review.py's
// recompute_verdict.
const confidenceThreshold = 0.7

// Recompute derives the verdict a reviewer's (possibly demoted) findings
// actually support, rather than trusting the verdict field the model
// itself emitted: FAIL if any counted finding is critical or there are two
// or more counted major findings; WARN if there is exactly one counted
// major finding, five or more counted minor findings, or three or more
// counted minor findings sharing one category; otherwise PASS.
func Recompute(findings []models.Finding, overallConfidence float64) models.Verdict {
	var critical, major, minor int
	minorByCategory := map[string]int{}

	for _, f := range findings {
		conf := f.Confidence
		if conf == 0 {
			conf = overallConfidence
		}
		if conf < confidenceThreshold {
			continue
		}
		switch f.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityMajor:
			major++
		case models.SeverityMinor:
			minor++
			minorByCategory[f.Category]++
		}
	}

	if critical > 0 || major >= 2 {
		return models.VerdictFail
	}

	if major == 1 || minor >= 5 {
		return models.VerdictWarn
	}
	for _, count := range minorByCategory {
		if count >= 3 {
			return models.VerdictWarn
		}
	}

	return models.VerdictPass
}
