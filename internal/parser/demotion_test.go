package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/misty-step/cerberus/internal/models"
)

const sampleDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "os/exec"

 func main() {}
diff --git a/other.go b/other.go
--- a/other.go
+++ b/other.go
@@ -1,2 +1,2 @@
-old line
+os/exec.Command(userInput)
`

func TestNormalize_DemotesFindingWhoseEvidenceIsMismatched(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityCritical, File: "main.go", Line: 2, Evidence: "this text does not appear anywhere", Title: "bad import"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Equal(t, "evidence-mismatch", v.Findings[0].DemotionReason)
	assert.Equal(t, "[unverified] bad import", v.Findings[0].Title)
}

func TestNormalize_DemotesFindingWhoseEvidenceIsMissing(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityMajor, File: "main.go", Line: 2, Title: "no evidence supplied"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Equal(t, "missing-evidence", v.Findings[0].DemotionReason)
	assert.Equal(t, "[unverified] no evidence supplied", v.Findings[0].Title)
}

func TestNormalize_DemotesFindingWhoseFileIsOutsideTheDiff(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityMajor, File: "unrelated.go", Line: 1, Evidence: "anything", Title: "touches unrelated.go"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Equal(t, "file is not among the diff's changed files", v.Findings[0].DemotionReason)
	assert.Equal(t, "[out-of-scope] touches unrelated.go", v.Findings[0].Title)
}

func TestNormalize_KeepsFindingWhoseEvidenceIsPresent(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityCritical, File: "main.go", Line: 2, Evidence: `import "os/exec"`},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityCritical, v.Findings[0].Severity)
	assert.Empty(t, v.Findings[0].DemotionReason)
}

func TestNormalize_StripsDiffPrefixBeforeMatchingEvidence(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityCritical, File: "main.go", Line: 2, Evidence: `+import "os/exec"`},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityCritical, v.Findings[0].Severity)
}

func TestNormalize_SkipsEvidenceAndScopeCheckForDefaultsChangeScope(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityCritical, File: "unrelated.go", Scope: models.ScopeDefaultsChange, Evidence: "not in the diff at all"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityCritical, v.Findings[0].Severity)
	assert.Empty(t, v.Findings[0].DemotionReason)
}

func TestNormalize_DemotesUnverifiedSuggestion(t *testing.T) {
	verified := false
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityMajor, SuggestionVerified: &verified, Title: "use a safer API"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Equal(t, "[speculative] use a safer API", v.Findings[0].Title)
}

func TestNormalize_DemotesStaleKnowledgeClaims(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityMajor, Description: "As of my training data, this API was removed.", Title: "removed API"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Equal(t, "[stale-knowledge] removed API", v.Findings[0].Title)
}

func TestNormalize_StacksMultipleDemotionReasons(t *testing.T) {
	verified := false
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{
			Severity:           models.SeverityCritical,
			Description:        "As of my training data, this pattern was deprecated.",
			SuggestionVerified: &verified,
			Title:              "old pattern",
		},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Contains(t, v.Findings[0].DemotionReason, ";")
	assert.Equal(t, "[stale-knowledge] [speculative] old pattern", v.Findings[0].Title)
}

func TestNormalize_InfoNeverDemotesBelowInfo(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityInfo, File: "unrelated.go", Evidence: "not present"},
	}}
	Normalize(v, sampleDiff)
	assert.Equal(t, models.SeverityInfo, v.Findings[0].Severity)
	assert.Empty(t, v.Findings[0].DemotionReason)
}

func TestNormalize_NoChangedFilesDetectedSkipsOutOfScopeCheck(t *testing.T) {
	v := &models.ReviewerVerdict{Findings: []models.Finding{
		{Severity: models.SeverityMajor, File: "main.go", Evidence: "unsafeEval(userInput)"},
	}}
	Normalize(v, "no diff headers here, just narration mentioning unsafeEval(userInput) inline")
	assert.Equal(t, models.SeverityMajor, v.Findings[0].Severity)
}
