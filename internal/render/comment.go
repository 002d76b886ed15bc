package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/misty-step/cerberus/internal/models"
)

// MaxCommentSize is the largest markdown body Cerberus will post as one PR
// comment, mirroring render_verdict_comment.py's MAX_COMMENT_SIZE. Over
// this, the renderer drops lowest-severity findings first until it fits.
const MaxCommentSize = 60000

// CommentMarker is the hidden HTML comment every Cerberus verdict comment
// carries, used to find-and-replace the comment on a later push instead of
// posting a duplicate. The machine-readable verdict travels in a separate
// marker (verdictMarker), which internal/triage.ExtractCouncilVerdict reads.
const CommentMarker = "<!-- cerberus:verdict -->"

func verdictMarker(v models.Verdict) string {
	return fmt.Sprintf("<!-- cerberus:verdict=%s -->", v)
}

// RenderComment builds the full markdown PR comment body for cv.
func RenderComment(cv models.CerberusVerdict, rc RepoContext) string {
	body := renderFull(cv, rc, 0)
	if len(body) <= MaxCommentSize {
		return body
	}

	for minSeverity := 1; minSeverity <= 3; minSeverity++ {
		body = renderFull(cv, rc, minSeverity)
		if len(body) <= MaxCommentSize {
			return body + "\n\n_Some lower-severity findings were omitted to fit the comment size limit._\n"
		}
	}
	return body[:MaxCommentSize]
}

// renderFull renders the comment including only findings at severity rank
// >= minSeverityRank (0=info .. 3=critical; pass 0 to include everything).
func renderFull(cv models.CerberusVerdict, rc RepoContext, minSeverityRank int) string {
	var b strings.Builder

	b.WriteString(CommentMarker)
	b.WriteString("\n")
	b.WriteString(verdictMarker(cv.Verdict))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## %s Cerberus review: %s\n\n", VerdictIcon(cv.Verdict), cv.Verdict)
	if cv.Summary != "" {
		b.WriteString(cv.Summary)
		b.WriteString("\n\n")
	}

	if len(cv.AppliedOverrides) > 0 {
		b.WriteString("**Overrides applied:**\n")
		for _, ov := range cv.AppliedOverrides {
			fmt.Fprintf(&b, "- `%s` by @%s: %s\n", shortSHA(ov.SHA), ov.Actor, ov.Reason)
		}
		b.WriteString("\n")
	}

	if cv.Wave.Wave != "" {
		fmt.Fprintf(&b, "**Wave:** %s", cv.Wave.Wave)
		if cv.Wave.ShouldAdvance {
			fmt.Fprintf(&b, " → advancing to %s\n\n", cv.Wave.NextWave)
		} else {
			fmt.Fprintf(&b, " → blocked: %s\n\n", cv.Wave.BlockingReason)
		}
	}

	reviewers := make([]models.ReviewerVerdict, len(cv.Reviewers))
	copy(reviewers, cv.Reviewers)
	sort.SliceStable(reviewers, func(i, j int) bool {
		oi, oj := VerdictOrder[reviewers[i].Verdict], VerdictOrder[reviewers[j].Verdict]
		if oi != oj {
			return oi < oj
		}
		return reviewers[i].Reviewer < reviewers[j].Reviewer
	})

	for _, rv := range reviewers {
		b.WriteString(renderReviewerSection(rv, rc, minSeverityRank))
	}

	return b.String()
}

func renderReviewerSection(rv models.ReviewerVerdict, rc RepoContext, minSeverityRank int) string {
	title := fmt.Sprintf("%s %s (%s)", VerdictIcon(rv.Verdict), reviewerName(rv), rv.Perspective)
	if rv.Overridden {
		title += " — overridden"
	}

	var body strings.Builder
	if rv.Summary != "" {
		body.WriteString(rv.Summary)
		body.WriteString("\n\n")
	}

	findings := filterFindings(rv.Findings, minSeverityRank)
	if len(findings) == 0 && rv.Verdict == models.VerdictSkip {
		fmt.Fprintf(&body, "_Skipped: %s_\n", rv.SkipCategory)
	}
	for _, f := range findings {
		fmt.Fprintf(&body, "- %s **%s** %s — %s\n", SeverityIcon(f.Severity), f.Title, LocationLink(rc, f.File, f.Line), f.Description)
		if f.Suggestion != "" {
			fmt.Fprintf(&body, "  - Suggested fix: %s\n", f.Suggestion)
		}
	}

	return DetailsBlock(title, body.String()) + "\n"
}

var severityRankOrder = map[models.Severity]int{
	models.SeverityInfo:     0,
	models.SeverityMinor:    1,
	models.SeverityMajor:    2,
	models.SeverityCritical: 3,
}

func filterFindings(findings []models.Finding, minRank int) []models.Finding {
	out := make([]models.Finding, 0, len(findings))
	for _, f := range findings {
		if severityRankOrder[f.Severity] >= minRank {
			out = append(out, f)
		}
	}
	return out
}

func reviewerName(rv models.ReviewerVerdict) string {
	if rv.Reviewer != "" {
		return rv.Reviewer
	}
	return rv.Perspective
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
