package render

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// BuildNewlineToPosition maps each new-file line number touched by patch to
// its GitHub review-comment "position" (a 1-based offset into the patch
// text itself, counted from the first hunk header), so findings can be
// posted as inline comments. Grounded in diff_positions.py's
// build_newline_to_position.
func BuildNewlineToPosition(patch string) map[int]int {
	result := map[int]int{}
	position := 0
	newLine := 0
	inHunk := false

	for _, line := range strings.Split(patch, "\n") {
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			if inHunk {
				// A later hunk header occupies a position of its own.
				position++
			}
			inHunk = true
			newLine, _ = strconv.Atoi(m[1])
			newLine--
			continue
		}
		if !inHunk {
			continue
		}
		if strings.HasPrefix(line, `\ No newline`) {
			continue
		}

		position++

		switch {
		case strings.HasPrefix(line, "+"):
			newLine++
			result[newLine] = position
		case strings.HasPrefix(line, "-"):
			// removed line: does not exist in the new file, no mapping.
		case strings.HasPrefix(line, " "):
			newLine++
			result[newLine] = position
		default:
			// stray line outside any recognized prefix (e.g. the @@ line
			// was already consumed); ignore.
		}
	}

	return result
}
