package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuntimeProfile is a layered runtime setting for a reviewer invocation:
// provider/model/thinking-level plus tool/extension/skill lists. Grounded
// in reviewer_profiles.py's RuntimeProfile dataclass.
type RuntimeProfile struct {
	Provider      string   `yaml:"provider"`
	Model         string   `yaml:"model"`
	ThinkingLevel string   `yaml:"thinking_level"`
	Tools         []string `yaml:"tools"`
	Extensions    []string `yaml:"extensions"`
	Skills        []string `yaml:"skills"`
	MaxSteps      int      `yaml:"max_steps"`
	Timeout       int      `yaml:"timeout"`
}

// ReviewerProfilesDocument is the base + per-perspective override document.
type ReviewerProfilesDocument struct {
	Version      int                       `yaml:"version"`
	Base         RuntimeProfile            `yaml:"base"`
	Perspectives map[string]RuntimeProfile `yaml:"perspectives"`
}

// LoadReviewerProfiles loads and validates reviewer_profiles.yml. Absence of
// the file is not an error at the call site (callers check os.IsNotExist);
// presence-but-malformed is fatal.
func LoadReviewerProfiles(path string) (*ReviewerProfilesDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc ReviewerProfilesDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if doc.Version <= 0 {
		return nil, fmt.Errorf("config.version: must be > 0")
	}
	if doc.Base.Provider == "" {
		doc.Base.Provider = "openrouter"
	}
	for name, p := range doc.Perspectives {
		if p.Provider == "" {
			p.Provider = "openrouter"
			doc.Perspectives[name] = p
		}
	}
	return &doc, nil
}

// MergedForPerspective layers a perspective override onto the base profile:
// scalars replace when set, Tools replaces when non-empty, Extensions and
// Skills append with de-duplication preserving order. Mirrors
// ReviewerProfilesConfig.merged_for_perspective.
func (d *ReviewerProfilesDocument) MergedForPerspective(perspective string) RuntimeProfile {
	override, ok := d.Perspectives[perspective]
	if !ok {
		return d.Base
	}

	tools := override.Tools
	if len(tools) == 0 {
		tools = d.Base.Tools
	}

	merged := RuntimeProfile{
		Provider:      firstNonEmpty(override.Provider, d.Base.Provider),
		Model:         firstNonEmpty(override.Model, d.Base.Model),
		ThinkingLevel: firstNonEmpty(override.ThinkingLevel, d.Base.ThinkingLevel),
		Tools:         tools,
		Extensions:    mergeUnique(d.Base.Extensions, override.Extensions),
		Skills:        mergeUnique(d.Base.Skills, override.Skills),
		MaxSteps:      firstPositive(override.MaxSteps, d.Base.MaxSteps),
		Timeout:       firstPositive(override.Timeout, d.Base.Timeout),
	}
	return merged
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func mergeUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, item := range append(append([]string{}, base...), extra...) {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
