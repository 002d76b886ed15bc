package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/misty-step/cerberus/internal/matrix"
	"github.com/misty-step/cerberus/internal/models"
	"github.com/misty-step/cerberus/internal/runner"
)

// rawFinding mirrors the JSON shape a reviewer emits, before normalization.
type rawFinding struct {
	Severity           string   `json:"severity"`
	Category           string   `json:"category"`
	File               string   `json:"file"`
	Line               any      `json:"line"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Suggestion         string   `json:"suggestion"`
	Evidence           string   `json:"evidence"`
	Scope              string   `json:"scope"`
	SuggestionVerified *bool    `json:"suggestion_verified"`
	Confidence         *float64 `json:"confidence"`
}

// rawVerdict mirrors the top-level JSON object a reviewer emits.
type rawVerdict struct {
	Reviewer    string       `json:"reviewer"`
	Perspective string       `json:"perspective"`
	Verdict     string       `json:"verdict"`
	Confidence  float64      `json:"confidence"`
	Summary     string       `json:"summary"`
	Findings    []rawFinding `json:"findings"`
}

// Parse converts a completed reviewer Artifact into a normalized,
// recomputed ReviewerVerdict. It never returns an error for reviewer-side
// failures (timeout, API error, malformed JSON) — those become a SKIP
// verdict instead, so the aggregator always has one verdict per task.
func Parse(art *runner.Artifact, task matrix.Entry, diff string) *models.ReviewerVerdict {
	base := models.ReviewerVerdict{
		Reviewer:       task.Reviewer,
		Perspective:    task.Perspective,
		RuntimeSeconds: art.RuntimeSeconds,
		ModelUsed:      art.ModelUsed,
		PrimaryModel:   art.PrimaryModel,
		FallbackUsed:   art.FallbackUsed,
		ModelTier:      task.ModelTier,
		ModelWave:      task.ModelWave,
	}

	if art.TimedOut {
		return skip(base, models.SkipCategoryTimeout, "reviewer timed out before producing a verdict", art.Stdout)
	}
	kind := art.Classification.Kind
	if kind == runner.KindPermanent || kind == runner.KindTransient ||
		(kind == runner.KindUnknown && strings.TrimSpace(art.Stdout) == "") {
		title := runner.ClassifyAPIErrorText(art.Stderr + "\n" + art.Stdout)
		return skip(base, models.SkipCategoryAPIError, title, art.Stdout)
	}

	payload, ok := ExtractJSON(art.Stdout)
	if !ok {
		if substantialScratchpad(art.Stdout) {
			v := base
			v.Verdict = models.VerdictWarn
			v.Confidence = 0.3
			v.Summary = "reviewer produced free-form analysis without a structured verdict"
			v.RawReview = art.Stdout
			if len(v.RawReview) > maxRawReview {
				v.RawReview = v.RawReview[:maxRawReview]
			}
			return &v
		}
		return skip(base, models.SkipCategoryParseFailure, "no JSON verdict block found in reviewer output", art.Stdout)
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return skip(base, models.SkipCategoryParseFailure, fmt.Sprintf("malformed JSON verdict: %v", err), art.Stdout)
	}
	if err := validateSchema(raw); err != nil {
		return skip(base, models.SkipCategoryParseFailure, err.Error(), art.Stdout)
	}

	v := base
	v.Summary = raw.Summary
	v.Confidence = raw.Confidence
	if v.Confidence < 0 {
		v.Confidence = 0
	} else if v.Confidence > 1 {
		v.Confidence = 1
	}
	v.Findings = make([]models.Finding, 0, len(raw.Findings))
	for _, rf := range raw.Findings {
		v.Findings = append(v.Findings, toFinding(rf))
	}

	Normalize(&v, diff)
	v.Verdict = Recompute(v.Findings, v.Confidence)
	if claimed := models.Verdict(strings.ToUpper(raw.Verdict)); claimed != v.Verdict {
		slog.Warn("parser: reviewer verdict disagrees with recomputed verdict", "reviewer", v.Reviewer, "claimed", claimed, "recomputed", v.Verdict)
	}
	v.Stats = computeStats(v.Findings)
	return &v
}

func toFinding(rf rawFinding) models.Finding {
	f := models.Finding{
		Severity:    models.Severity(rf.Severity),
		Category:    rf.Category,
		File:        rf.File,
		Title:       rf.Title,
		Description: rf.Description,
		Suggestion:  rf.Suggestion,
		Evidence:    rf.Evidence,
		Scope:       models.Scope(rf.Scope),
	}
	// A non-numeric line becomes 0; an unknown severity becomes info.
	if n, ok := rf.Line.(float64); ok && n > 0 {
		f.Line = int(n)
	}
	switch f.Severity {
	case models.SeverityCritical, models.SeverityMajor, models.SeverityMinor, models.SeverityInfo:
	default:
		f.Severity = models.SeverityInfo
	}
	if rf.SuggestionVerified != nil {
		f.SuggestionVerified = rf.SuggestionVerified
	}
	if rf.Confidence != nil {
		f.Confidence = *rf.Confidence
	} else {
		f.Confidence = 1.0
	}
	return f
}

func validateSchema(raw rawVerdict) error {
	if raw.Reviewer == "" {
		return fmt.Errorf("verdict JSON missing required field: reviewer")
	}
	if raw.Perspective == "" {
		return fmt.Errorf("verdict JSON missing required field: perspective")
	}
	if raw.Summary == "" {
		return fmt.Errorf("verdict JSON missing required field: summary")
	}
	switch models.Verdict(strings.ToUpper(raw.Verdict)) {
	case models.VerdictPass, models.VerdictWarn, models.VerdictFail, models.VerdictSkip:
	default:
		return fmt.Errorf("verdict JSON has invalid verdict value: %q", raw.Verdict)
	}
	return nil
}

// maxRawReview caps how much raw reviewer output a verdict retains.
const maxRawReview = 50 * 1024

func skip(base models.ReviewerVerdict, category, summary, raw string) *models.ReviewerVerdict {
	if len(raw) > maxRawReview {
		raw = raw[:maxRawReview]
	}
	v := base
	v.Verdict = models.VerdictSkip
	v.SkipCategory = category
	v.Summary = summary
	v.RawReview = raw
	v.Stats = models.Stats{}
	return &v
}

func computeStats(findings []models.Finding) models.Stats {
	var s models.Stats
	filesWithIssues := map[string]bool{}
	for _, f := range findings {
		if f.File != "" {
			filesWithIssues[f.File] = true
		}
		switch f.Severity {
		case models.SeverityCritical:
			s.Critical++
		case models.SeverityMajor:
			s.Major++
		case models.SeverityMinor:
			s.Minor++
		case models.SeverityInfo:
			s.Info++
		}
	}
	s.FilesWithIssues = len(filesWithIssues)
	return s
}
