package runner

import (
	"fmt"
	"strings"
)

// PromptInputs is everything the prompt template needs to render a single
// reviewer's instructions.
type PromptInputs struct {
	Reviewer      string
	Perspective   string
	ReviewerLabel string
	Tagline       string
	Diff          string
	BaseBranch    string
	HeadBranch    string
	ExtraContext  string
}

// BuildReviewPrompt renders the instructions sent to a reviewer CLI on
// stdin, following the teacher's strings.Builder + fmt.Fprintf templating
// idiom (internal/review/prompt.go's BuildReviewPrompt/BuildKickoffPrompt).
func BuildReviewPrompt(in PromptInputs) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, reviewing this pull request from the %s perspective.\n", displayName(in), in.Perspective)
	if in.Tagline != "" {
		fmt.Fprintf(&b, "%s\n", in.Tagline)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Base branch: %s\n", in.BaseBranch)
	fmt.Fprintf(&b, "Head branch: %s\n\n", in.HeadBranch)

	if in.ExtraContext != "" {
		b.WriteString(in.ExtraContext)
		b.WriteString("\n\n")
	}

	b.WriteString("Review the following diff. Respond with a single fenced ```json code\n")
	b.WriteString("block containing your verdict. The JSON object must have the keys:\n")
	b.WriteString("reviewer, perspective, verdict (pass|warn|fail|skip), confidence (0-1),\n")
	b.WriteString("summary, and findings (a list of objects with severity, category, file,\n")
	b.WriteString("line, title, description, suggestion, evidence, and scope).\n\n")

	b.WriteString("```diff\n")
	b.WriteString(in.Diff)
	if !strings.HasSuffix(in.Diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")

	return b.String()
}

func displayName(in PromptInputs) string {
	if in.ReviewerLabel != "" {
		return in.ReviewerLabel
	}
	return in.Reviewer
}
