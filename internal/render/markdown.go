// Package render turns a CerberusVerdict into the markdown PR comment body
// and GitHub review-comment positions.
//
// Grounded in original_source/scripts/lib/markdown.py and
// render_verdict_comment.py.
package render

import (
	"fmt"
	"os"

	"github.com/misty-step/cerberus/internal/models"
)

// severityIcons mirrors markdown.py's SEVERITY_ICON map.
var severityIcons = map[models.Severity]string{
	models.SeverityCritical: "🔴",
	models.SeverityMajor:    "🟠",
	models.SeverityMinor:    "🟡",
	models.SeverityInfo:     "🔵",
}

// SeverityIcon returns the emoji badge for a finding severity.
func SeverityIcon(s models.Severity) string {
	if icon, ok := severityIcons[s]; ok {
		return icon
	}
	return "⚪"
}

// verdictIcons mirrors render_verdict_comment.py's VERDICT_ICON map.
var verdictIcons = map[models.Verdict]string{
	models.VerdictPass: "✅",
	models.VerdictWarn: "⚠️",
	models.VerdictFail: "❌",
	models.VerdictSkip: "⏭️",
}

// VerdictIcon returns the emoji badge for a verdict.
func VerdictIcon(v models.Verdict) string {
	if icon, ok := verdictIcons[v]; ok {
		return icon
	}
	return "❔"
}

// VerdictOrder mirrors render_verdict_comment.py's VERDICT_ORDER: the
// display/severity ranking used to sort reviewer sections, worst first.
var VerdictOrder = map[models.Verdict]int{
	models.VerdictFail: 0,
	models.VerdictWarn: 1,
	models.VerdictSkip: 2,
	models.VerdictPass: 3,
}

// RepoContext resolves the repo/sha context used to build blob links, from
// the ambient GitHub Actions environment variables, mirroring markdown.py's
// repo_context.
type RepoContext struct {
	ServerURL string
	Repo      string
	SHA       string
}

// LoadRepoContext reads GITHUB_SERVER_URL / GITHUB_REPOSITORY / GH_HEAD_SHA
// from the environment. Any of them may be empty.
func LoadRepoContext() RepoContext {
	return RepoContext{
		ServerURL: envOr("GITHUB_SERVER_URL", "https://github.com"),
		Repo:      os.Getenv("GITHUB_REPOSITORY"),
		SHA:       os.Getenv("GH_HEAD_SHA"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// BlobURL builds a permalink to file:line at the context's commit.
func (rc RepoContext) BlobURL(file string, line int) string {
	if rc.Repo == "" || rc.SHA == "" || file == "" {
		return ""
	}
	if line > 0 {
		return fmt.Sprintf("%s/%s/blob/%s/%s#L%d", rc.ServerURL, rc.Repo, rc.SHA, file, line)
	}
	return fmt.Sprintf("%s/%s/blob/%s/%s", rc.ServerURL, rc.Repo, rc.SHA, file)
}

// LocationLabel renders "file:line" or just "file", or "N/A" when file is empty.
func LocationLabel(file string, line int) string {
	if file == "" {
		return "N/A"
	}
	if line > 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}

// LocationLink renders a backtick-wrapped location, linked to a blob URL
// when repo context is available.
func LocationLink(rc RepoContext, file string, line int) string {
	label := LocationLabel(file, line)
	if label == "N/A" {
		return "`N/A`"
	}
	if url := rc.BlobURL(file, line); url != "" {
		return fmt.Sprintf("[`%s`](%s)", label, url)
	}
	return fmt.Sprintf("`%s`", label)
}

// DetailsBlock wraps body in a collapsible <details><summary> element.
func DetailsBlock(summary, body string) string {
	return fmt.Sprintf("<details>\n<summary>%s</summary>\n\n%s\n\n</details>\n", summary, body)
}
