package router

import (
	"fmt"
	"strings"

	"github.com/misty-step/cerberus/internal/config"
)

const routerSystemPrompt = `You select which reviewer perspectives should review a pull request diff.
Return ONLY a JSON array of perspective name strings, nothing else — no
markdown fencing, no explanation.`

// BuildPrompt renders the router's user prompt: the diff-complexity
// summary plus the roster of selectable perspectives, mirroring route.py's
// build_prompt.
func BuildPrompt(changes []FileChange, perspectives []string, panelSize int) string {
	var b strings.Builder

	total := 0
	for _, c := range changes {
		total += c.Added + c.Removed
	}
	fmt.Fprintf(&b, "Diff touches %d files, %d changed lines.\n\n", len(changes), total)

	b.WriteString("Files:\n")
	for _, c := range changes {
		fmt.Fprintf(&b, "- %s (+%d/-%d) [%s]\n", c.Path, c.Added, c.Removed, ClassifyFile(c.Path))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Select exactly %d perspectives from this list:\n", panelSize)
	for _, p := range perspectives {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	return b.String()
}

// SystemPrompt returns the router's fixed system prompt.
func SystemPrompt() string { return routerSystemPrompt }

// Perspectives returns every perspective in the roster, in declared order.
func Perspectives(doc *config.Document) []string {
	out := make([]string, 0, len(doc.Reviewers))
	for _, r := range doc.Reviewers {
		out = append(out, r.Perspective)
	}
	return out
}
