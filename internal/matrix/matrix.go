// Package matrix expands the reviewer roster (plus an optional wave/tier
// selector) into the ordered list of reviewer tasks a run should execute.
//
// Grounded in matrix/generate-matrix.py and matrix/filter-panel.py.
package matrix

import (
	"fmt"
	"strings"

	"github.com/misty-step/cerberus/internal/config"
)

// Entry is one reviewer task to run.
type Entry struct {
	Reviewer          string
	Perspective       string
	ModelTier         string
	ModelWave         string
	ReviewerLabel     string
	ReviewerCodename  string
	ReviewerDescription string
	ReviewerTagline   string
}

// Options selects a subset/annotation of the roster.
type Options struct {
	Wave      string // empty means "no wave filtering"
	ModelTier string // empty means "no tier annotation"
	Panel     []string // when non-empty, filter to only these perspectives (C7 output)
}

// Expand builds the ordered task list for a run.
func Expand(doc *config.Document, opts Options) ([]Entry, error) {
	reviewers := doc.Reviewers
	if len(reviewers) == 0 {
		return nil, fmt.Errorf("matrix: no reviewers found in config")
	}

	if opts.Wave != "" {
		wave, ok := doc.Waves.Definitions[strings.ToLower(opts.Wave)]
		if !ok || len(wave.Reviewers) == 0 {
			return nil, fmt.Errorf("matrix: wave %q produced an empty reviewer matrix", opts.Wave)
		}
		byName := map[string]config.ReviewerProfile{}
		for _, r := range reviewers {
			byName[r.Codename] = r
		}
		filtered := make([]config.ReviewerProfile, 0, len(wave.Reviewers))
		for _, name := range wave.Reviewers {
			if r, ok := byName[name]; ok {
				filtered = append(filtered, r)
			}
		}
		reviewers = filtered
	}

	if len(opts.Panel) > 0 {
		panelSet := make(map[string]bool, len(opts.Panel))
		for _, p := range opts.Panel {
			panelSet[p] = true
		}
		filtered := make([]config.ReviewerProfile, 0, len(reviewers))
		for _, r := range reviewers {
			if panelSet[r.Perspective] {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) > 0 {
			reviewers = filtered
		}
		// If no reviewers match the panel, fall back to the full (possibly
		// wave-filtered) matrix rather than emitting nothing, matching
		// filter-panel.py's warn-and-fallback behavior.
	}

	entries := make([]Entry, 0, len(reviewers))
	for _, r := range reviewers {
		role, tagline := splitDescription(r.Description)
		label := role
		if label == "" {
			label = titleCasePerspective(r.Perspective)
		}
		entries = append(entries, Entry{
			Reviewer:            r.Codename,
			Perspective:         r.Perspective,
			ModelTier:           opts.ModelTier,
			ModelWave:           opts.Wave,
			ReviewerLabel:       label,
			ReviewerCodename:    friendlyCodename(r.Codename),
			ReviewerDescription: r.Description,
			ReviewerTagline:     tagline,
		})
	}
	return entries, nil
}

// splitDescription mirrors generate-matrix.py's split_description: an
// em-dash or " - " separator divides "role" from "tagline".
func splitDescription(desc string) (role, tagline string) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", ""
	}
	if idx := strings.Index(desc, "—"); idx >= 0 {
		return strings.TrimSpace(desc[:idx]), strings.TrimSpace(desc[idx+len("—"):])
	}
	if idx := strings.Index(desc, " - "); idx >= 0 {
		return strings.TrimSpace(desc[:idx]), strings.TrimSpace(desc[idx+3:])
	}
	return desc, ""
}

func titleCasePerspective(perspective string) string {
	words := strings.Split(strings.ReplaceAll(perspective, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// friendlyCodename title-cases legacy ALL-CAPS codenames; new lowercase
// codenames pass through unchanged.
func friendlyCodename(name string) string {
	if name != "" && name == strings.ToUpper(name) && isAllLetters(name) {
		return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
	}
	return name
}

func isAllLetters(s string) bool {
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '_') {
			return false
		}
	}
	return s != ""
}
