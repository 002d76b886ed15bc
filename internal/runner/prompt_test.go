package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReviewPrompt_IncludesLabelTaglineAndDiff(t *testing.T) {
	prompt := BuildReviewPrompt(PromptInputs{
		Reviewer:      "apollo",
		Perspective:   "security",
		ReviewerLabel: "Security reviewer",
		Tagline:       "hunts injection bugs",
		Diff:          "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")",
		BaseBranch:    "main",
		HeadBranch:    "feature",
	})

	assert.Contains(t, prompt, "You are Security reviewer, reviewing this pull request from the security perspective.")
	assert.Contains(t, prompt, "hunts injection bugs")
	assert.Contains(t, prompt, "Base branch: main")
	assert.Contains(t, prompt, "Head branch: feature")
	assert.Contains(t, prompt, "```diff\n")
	assert.Contains(t, prompt, "diff --git a/main.go b/main.go")
}

func TestBuildReviewPrompt_FallsBackToReviewerWhenNoLabel(t *testing.T) {
	prompt := BuildReviewPrompt(PromptInputs{Reviewer: "apollo", Perspective: "security", Diff: "x"})
	assert.Contains(t, prompt, "You are apollo, reviewing")
}

func TestBuildReviewPrompt_AppendsNewlineToUnterminatedDiff(t *testing.T) {
	prompt := BuildReviewPrompt(PromptInputs{Reviewer: "apollo", Perspective: "security", Diff: "no trailing newline"})
	assert.Contains(t, prompt, "no trailing newline\n```\n")
}

func TestBuildReviewPrompt_IncludesExtraContext(t *testing.T) {
	prompt := BuildReviewPrompt(PromptInputs{
		Reviewer:     "apollo",
		Perspective:  "security",
		Diff:         "x",
		ExtraContext: "This PR touches authentication code.",
	})
	assert.Contains(t, prompt, "This PR touches authentication code.")
}
