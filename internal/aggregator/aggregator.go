// Package aggregator combines N reviewer verdicts into a single
// CerberusVerdict: override resolution, the pass/warn/fail/skip decision
// rule, and wave-gate evaluation.
//
// Grounded in original_source/scripts/aggregate-verdict.py.
package aggregator

import (
	"github.com/google/uuid"

	"github.com/misty-step/cerberus/internal/models"
)

// Aggregate combines reviewers into one CerberusVerdict. criticalOf reports
// whether a reviewer codename is marked critical in the roster (a FAIL from
// a critical reviewer blocks the merge outright unless an override was
// authorized for this head commit).
func Aggregate(reviewers []models.ReviewerVerdict, criticalOf func(reviewer string) bool, override *models.AppliedOverride) models.CerberusVerdict {
	out := make([]models.ReviewerVerdict, len(reviewers))
	copy(out, reviewers)

	skipCount, failCount, warnCount := 0, 0, 0
	criticalFail := false

	for i := range out {
		switch out[i].Verdict {
		case models.VerdictSkip:
			skipCount++
		case models.VerdictFail:
			failCount++
			if criticalOf(out[i].Reviewer) {
				criticalFail = true
			}
			if override != nil {
				out[i].Overridden = true
				out[i].OverrideReason = override.Reason
				out[i].OverrideActor = override.Actor
			}
		case models.VerdictWarn:
			warnCount++
		}
	}

	cv := models.CerberusVerdict{RunID: uuid.NewString(), Reviewers: out}
	if override != nil {
		cv.AppliedOverrides = []models.AppliedOverride{*override}
	}

	switch {
	case skipCount == len(out):
		cv.Verdict = models.VerdictSkip
		cv.Summary = "all reviewers skipped; no verdict could be reached"
	case criticalFail && override == nil:
		cv.Verdict = models.VerdictFail
		cv.Summary = "a critical reviewer reported a failing verdict"
	case failCount >= 2:
		cv.Verdict = models.VerdictFail
		cv.Summary = "multiple reviewers reported a failing verdict"
	case failCount == 1:
		cv.Verdict = models.VerdictWarn
		cv.Summary = "one non-critical reviewer reported a failing verdict"
	case warnCount >= 1:
		cv.Verdict = models.VerdictWarn
		cv.Summary = "one or more reviewers reported a warning"
	default:
		cv.Verdict = models.VerdictPass
		cv.Summary = "all reviewers passed"
	}

	if override != nil && cv.Verdict == models.VerdictFail && criticalFail {
		// Override was present but did not actually change the outcome
		// (e.g. a second, non-overridden critical FAIL still blocks). Keep
		// the override recorded for audit, but do not claim it resolved
		// the verdict in the summary.
		cv.Summary = "a critical reviewer reported a failing verdict that the recorded override does not cover"
	}

	return cv
}
