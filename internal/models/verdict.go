// Package models defines the wire-format types shared across every Cerberus
// pipeline stage: the per-reviewer verdict artifact, its findings, and the
// aggregated cerberus-level verdict.
package models

import "time"

// Severity is the normalized severity of a single Finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// Verdict is the outcome a reviewer (or the aggregator) assigns to a review.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
	VerdictSkip Verdict = "SKIP"
)

// Scope narrows where a Finding's evidence is allowed to come from.
type Scope string

const (
	ScopeDiff           Scope = "diff"
	ScopeDefaultsChange Scope = "defaults-change"
)

// SKIP subtype categories. A SKIP verdict's synthetic finding always carries
// one of these as its Category.
const (
	SkipCategoryTimeout      = "timeout"
	SkipCategoryAPIError     = "api_error"
	SkipCategoryParseFailure = "parse_failure"
)

// Finding is one reviewer-reported issue, before or after normalization.
type Finding struct {
	Severity            Severity `json:"severity"`
	Category            string   `json:"category"`
	File                string   `json:"file"`
	Line                int      `json:"line"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Suggestion          string   `json:"suggestion,omitempty"`
	Evidence            string   `json:"evidence,omitempty"`
	Scope               Scope    `json:"scope,omitempty"`
	SuggestionVerified  *bool    `json:"suggestion_verified,omitempty"`
	Confidence          float64  `json:"confidence,omitempty"`

	// Demotion bookkeeping, populated by the parser's normalization pass.
	// Not part of the wire contract the model emits, but round-tripped on
	// the ReviewerVerdict artifact so a second parse of an already-parsed
	// artifact is idempotent.
	DemotionReason string `json:"_demotion_reason,omitempty"`
}

// Stats summarizes a reviewer's findings by severity.
type Stats struct {
	FilesReviewed  int `json:"files_reviewed"`
	FilesWithIssues int `json:"files_with_issues"`
	Critical       int `json:"critical"`
	Major          int `json:"major"`
	Minor          int `json:"minor"`
	Info           int `json:"info"`
}

// ReviewerVerdict is the primary per-reviewer artifact: the parser's output,
// enriched with runner-observed metadata.
type ReviewerVerdict struct {
	Reviewer    string    `json:"reviewer"`
	Perspective string    `json:"perspective"`
	Verdict     Verdict   `json:"verdict"`
	Confidence  float64   `json:"confidence"`
	Summary     string    `json:"summary"`
	Findings    []Finding `json:"findings"`
	Stats       Stats     `json:"stats"`

	// Pipeline-added, not supplied by the model.
	RuntimeSeconds float64 `json:"runtime_seconds,omitempty"`
	ModelUsed      string  `json:"model_used,omitempty"`
	PrimaryModel   string  `json:"primary_model,omitempty"`
	FallbackUsed   bool    `json:"fallback_used,omitempty"`
	RawReview      string  `json:"raw_review,omitempty"`

	// SkipCategory is set only when Verdict == VerdictSkip, to one of the
	// SkipCategory* constants, so the aggregator and quality report can
	// distinguish a timeout from an API error from a parse failure.
	SkipCategory string `json:"skip_category,omitempty"`

	// Display metadata carried from the matrix entry, set by the parser.
	ModelTier string `json:"model_tier,omitempty"`
	ModelWave string `json:"model_wave,omitempty"`

	// Override annotation, set by the aggregator. Never set by the runner
	// or parser; present only on the copy the aggregator renders.
	Overridden       bool   `json:"overridden,omitempty"`
	OverrideReason   string `json:"override_reason,omitempty"`
	OverrideActor    string `json:"override_actor,omitempty"`
}

// Override is a parsed, not-yet-authorized `/cerberus override` command.
type Override struct {
	SHA    string
	Reason string
	Actor  string
}

// AppliedOverride records an override that was authorized and applied.
type AppliedOverride struct {
	Reviewer string `json:"reviewer"`
	SHA      string `json:"sha"`
	Reason   string `json:"reason"`
	Actor    string `json:"actor"`
}

// WaveMetadata describes which wave produced a CerberusVerdict and whether
// the next wave is gated to run.
type WaveMetadata struct {
	Wave           string `json:"wave,omitempty"`
	NextWave       string `json:"next_wave,omitempty"`
	ShouldAdvance  bool   `json:"should_advance"`
	BlockingReason string `json:"blocking_reason,omitempty"`
}

// CerberusVerdict is the final, per-run aggregated outcome.
type CerberusVerdict struct {
	RunID            string             `json:"run_id"`
	Verdict          Verdict            `json:"verdict"`
	Reviewers        []ReviewerVerdict  `json:"reviewers"`
	AppliedOverrides []AppliedOverride  `json:"applied_overrides,omitempty"`
	Wave             WaveMetadata       `json:"wave,omitempty"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Summary          string             `json:"summary"`
}

// Comment is a single PR comment as surfaced by the PRState capability.
type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}
