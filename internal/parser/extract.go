// Package parser turns a reviewer's raw CLI output into a validated,
// normalized models.ReviewerVerdict.
//
// Grounded in original_source/scripts/parse-review.py.
package parser

import (
	"regexp"
	"strings"
)

// fencedJSONRe matches fenced ```json ... ``` code blocks. (?s) makes '.'
// match newlines, mirroring parse-review.py's re.DOTALL flag.
var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractJSON returns the payload of the LAST fenced ```json block in text,
// matching parse-review.py's "take the final code block" rule: reviewers
// sometimes think out loud in earlier fenced blocks before emitting their
// real verdict last.
func ExtractJSON(text string) (string, bool) {
	matches := fencedJSONRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	last := matches[len(matches)-1][1]
	return strings.TrimSpace(last), true
}

// substantialScratchpad reports whether text, absent any structured JSON
// verdict, still contains enough free-form review content to be worth
// preserving as a WARN rather than discarded as a parse failure.
func substantialScratchpad(text string) bool {
	return len(strings.TrimSpace(text)) >= 200
}
