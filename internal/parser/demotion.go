package parser

import (
	"regexp"
	"strings"

	"github.com/misty-step/cerberus/internal/models"
)

// staleKnowledgeRe matches phrasing that indicates the reviewer is
// reasoning from training-data knowledge that may no longer hold (a
// deprecation/removal claim about an API, package, or language feature)
// rather than from something actually visible in the diff.
var staleKnowledgeRe = regexp.MustCompile(`(?i)\bv?\d+(\.\d+){0,2}\b[^.\n]{0,40}(deprecated|removed in|no longer supported)|as of my (training|knowledge)|i (recall|believe) that|in (older|previous) versions|used to (be|work)|historically`)

// diffFileHeaderRe matches a unified diff's new-file header line.
var diffFileHeaderRe = regexp.MustCompile(`(?m)^\+\+\+ b/(.+)$`)

// changedFileSet extracts the set of files touched by diff, from its
// "+++ b/<file>" headers.
func changedFileSet(diff string) map[string]bool {
	set := map[string]bool{}
	for _, m := range diffFileHeaderRe.FindAllStringSubmatch(diff, -1) {
		set[strings.TrimSpace(m[1])] = true
	}
	return set
}

// Normalize runs the demotion passes over v.Findings in place, in the order
// the model's output is least trustworthy to most: an explicitly-unverified
// suggestion, stale-knowledge phrasing, then evidence and scope
// verification against the diff the reviewer was shown. Every demotion
// lands the finding directly at info severity and tags its title so a
// reader can see why, rather than stepping down one rank at a time.
func Normalize(v *models.ReviewerVerdict, diff string) {
	changed := changedFileSet(diff)

	for i := range v.Findings {
		f := &v.Findings[i]

		if f.SuggestionVerified != nil && !*f.SuggestionVerified {
			demote(f, "[speculative] ", "suggested fix could not be verified against the diff")
		}

		if staleKnowledgeRe.MatchString(f.Description) || staleKnowledgeRe.MatchString(f.Title) {
			demote(f, "[stale-knowledge] ", "finding relies on possibly-stale model knowledge rather than diff evidence")
		}

		if f.Severity == models.SeverityInfo || f.Scope == models.ScopeDefaultsChange {
			continue
		}

		if f.File != "" && len(changed) > 0 && !changed[f.File] {
			demote(f, "[out-of-scope] ", "file is not among the diff's changed files")
			continue
		}

		evidence := stripDiffLinePrefix(strings.TrimSpace(f.Evidence))
		if evidence == "" {
			demote(f, "[unverified] ", "missing-evidence")
			continue
		}

		if !evidenceNearLine(diff, f.File, f.Line, evidence) {
			demote(f, "[unverified] ", "evidence-mismatch")
		}
	}
}

// demote lands f at info severity, tags its title with prefix unless
// already tagged, and appends reason to its stacked demotion history.
func demote(f *models.Finding, prefix, reason string) {
	f.Severity = models.SeverityInfo
	if !strings.HasPrefix(f.Title, prefix) {
		f.Title = prefix + f.Title
	}
	if f.DemotionReason == "" {
		f.DemotionReason = reason
	} else {
		f.DemotionReason = f.DemotionReason + "; " + reason
	}
}

// stripDiffLinePrefix removes a leading +, -, or space, in case the model
// pasted evidence straight from a diff hunk rather than quoting source text.
func stripDiffLinePrefix(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '+', '-', ' ':
		return strings.TrimSpace(s[1:])
	default:
		return s
	}
}

// evidenceNearLine reports whether text matching evidence appears in diff
// within a 12-line window of the claimed line for the claimed file (or
// anywhere in the file's section when line is 0). This is a best-effort
// textual check, not a structural diff parse, to tolerate line-number drift
// between what the reviewer saw and the literal diff text.
func evidenceNearLine(diff, file string, line int, evidence string) bool {
	if evidence == "" {
		return true
	}
	lines := strings.Split(diff, "\n")

	fileStart, fileEnd := 0, len(lines)
	if file != "" {
		if start, end, ok := fileSection(lines, file); ok {
			fileStart, fileEnd = start, end
		}
	}

	lo, hi := fileStart, fileEnd
	if line > 0 {
		const window = 12
		if idx := findLineIndex(lines[fileStart:fileEnd], line); idx >= 0 {
			center := idx + fileStart
			lo = center - window
			if lo < fileStart {
				lo = fileStart
			}
			hi = center + window
			if hi > fileEnd {
				hi = fileEnd
			}
		}
	}

	for _, l := range lines[lo:hi] {
		if strings.Contains(l, evidence) {
			return true
		}
	}
	return false
}

func fileSection(lines []string, file string) (start, end int, ok bool) {
	marker := "+++ b/" + file
	for i, l := range lines {
		if strings.HasPrefix(l, marker) {
			start = i
			ok = true
			break
		}
	}
	if !ok {
		return 0, 0, false
	}
	end = len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "diff --git ") {
			end = i
			break
		}
	}
	return start, end, true
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// findLineIndex locates the slice index whose new-file line number matches
// target, walking hunk headers and +/space-prefixed lines the way a
// unified-diff-to-position map is built.
func findLineIndex(lines []string, target int) int {
	newLine := 0
	for i, l := range lines {
		if m := hunkHeaderRe.FindStringSubmatch(l); m != nil {
			newLine = atoiSafe(m[1]) - 1
			continue
		}
		if strings.HasPrefix(l, "-") {
			continue
		}
		if strings.HasPrefix(l, "+") || strings.HasPrefix(l, " ") {
			newLine++
			if newLine == target {
				return i
			}
		}
	}
	return -1
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
