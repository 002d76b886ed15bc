package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/misty-step/cerberus/internal/config"
)

// fencedPanelRe matches a fenced ```json array of perspective strings.
var fencedPanelRe = regexp.MustCompile(`(?s)` + "```json\\s*(.*?)```")
var bracketPanelRe = regexp.MustCompile(`(?s)\[.*\]`)

// ParsePanelFromText extracts a JSON string array from free-form model
// output, trying a fenced code block first and falling back to the first
// bracket-delimited span in the text, mirroring route.py's
// parse_panel_from_text.
func ParsePanelFromText(text string) (string, bool) {
	if m := fencedPanelRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := bracketPanelRe.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// ValidatePanel enforces route.py's validate_panel invariants: the panel
// must be exactly cfg.PanelSize perspectives, must be a subset of allowed
// (the full roster), and must contain every entry in required
// (always_include).
func ValidatePanel(panel []string, allowed map[string]bool, required []string, panelSize int) error {
	if panelSize > 0 && len(panel) != panelSize {
		return fmt.Errorf("router: panel has %d entries, want %d", len(panel), panelSize)
	}
	seen := map[string]bool{}
	for _, p := range panel {
		if !allowed[p] {
			return fmt.Errorf("router: panel includes unknown perspective %q", p)
		}
		seen[p] = true
	}
	for _, req := range required {
		if !seen[req] {
			return fmt.Errorf("router: panel is missing required perspective %q", req)
		}
	}
	return nil
}

// BuildFallbackPanel deterministically assembles a panel without calling
// the model: always_include first, then include_if_code_changed if the
// diff touches non-doc/non-test files, then fallback_panel entries in
// declared order until panel_size is reached.
func BuildFallbackPanel(cfg config.RoutingConfig, changes []FileChange) []string {
	codeChanged := false
	for _, c := range changes {
		if ClassifyFile(c.Path) == ClassCode {
			codeChanged = true
			break
		}
	}

	seen := map[string]bool{}
	var panel []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		panel = append(panel, p)
	}

	for _, p := range cfg.AlwaysInclude {
		add(p)
	}
	if codeChanged {
		for _, p := range cfg.IncludeIfCodeChanged {
			add(p)
		}
	}
	for _, p := range cfg.FallbackPanel {
		if cfg.PanelSize > 0 && len(panel) >= cfg.PanelSize {
			break
		}
		add(p)
	}
	return panel
}
