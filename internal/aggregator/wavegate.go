package aggregator

import (
	"github.com/misty-step/cerberus/internal/config"
	"github.com/misty-step/cerberus/internal/models"
)

// gateSeverityMatches reports whether a finding's severity trips the
// configured gate. Resolved Open Question: the gate predicate is
// "critical OR major" (the stricter reading) rather than critical-only,
// regardless of whether waves.gate.severity names "critical" or "major" —
// a wave whose gate names "major" is read as "major or worse".
func gateSeverityMatches(severity models.Severity) bool {
	return severity == models.SeverityCritical || severity == models.SeverityMajor
}

// ResolveWaveGate decides whether the next wave in order should run, given
// the current wave's reviewer verdicts. Grounded in
// evaluate-wave-gate.py's blocking-reason taxonomy.
func ResolveWaveGate(wc config.WaveConfig, currentWave string, reviewers []models.ReviewerVerdict, tier string) models.WaveMetadata {
	md := models.WaveMetadata{Wave: currentWave}

	idx := -1
	for i, w := range wc.Order {
		if w == currentWave {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(wc.Order) {
		md.ShouldAdvance = false
		return md
	}
	next := wc.Order[idx+1]

	if maxTier, ok := wc.MaxForTier[tier]; ok && !waveAtOrBefore(wc.Order, currentWave, maxTier) {
		md.ShouldAdvance = false
		md.BlockingReason = "model tier " + tier + " is capped at wave " + maxTier
		return md
	}

	for _, rv := range reviewers {
		if rv.Verdict == models.VerdictSkip && rv.SkipCategory == models.SkipCategoryParseFailure {
			md.ShouldAdvance = false
			md.BlockingReason = "malformed reviewer artifact in wave " + currentWave
			return md
		}
		for _, f := range rv.Findings {
			if gateSeverityMatches(f.Severity) {
				md.ShouldAdvance = false
				md.BlockingReason = "gate severity finding in wave " + currentWave + " from " + rv.Reviewer
				return md
			}
		}
	}

	md.ShouldAdvance = true
	md.NextWave = next
	return md
}

func waveAtOrBefore(order []string, wave, limit string) bool {
	wi, li := -1, -1
	for i, w := range order {
		if w == wave {
			wi = i
		}
		if w == limit {
			li = i
		}
	}
	if wi < 0 || li < 0 {
		return true
	}
	return wi <= li
}
