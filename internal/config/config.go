// Package config loads the declarative reviewer roster, model pool, wave
// definitions, and override policy that drive a Cerberus run.
//
// Parsing mirrors the teacher's separation of concerns: app-level tunables
// live in viper (see cmd/root.go), while this domain document is its own
// validated structure, parsed with yaml.v3 directly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OverridePolicy gates who may author a `/cerberus override` for a reviewer.
type OverridePolicy string

const (
	PolicyPRAuthor        OverridePolicy = "pr_author"
	PolicyWriteAccess     OverridePolicy = "write_access"
	PolicyMaintainersOnly OverridePolicy = "maintainers_only"
)

// policyStrictness orders policies from least to most strict, mirroring
// overrides.py's POLICY_STRICTNESS table.
var policyStrictness = map[OverridePolicy]int{
	PolicyPRAuthor:        0,
	PolicyWriteAccess:     1,
	PolicyMaintainersOnly: 2,
}

// Stricter returns whichever of a, b demands more authority. Unknown
// policies sort as least strict.
func Stricter(a, b OverridePolicy) OverridePolicy {
	if policyStrictness[b] > policyStrictness[a] {
		return b
	}
	return a
}

// ReviewerProfile is one entry in the static reviewer roster.
type ReviewerProfile struct {
	Codename       string         `yaml:"name"`
	Perspective    string         `yaml:"perspective"`
	Description    string         `yaml:"description"`
	Model          string         `yaml:"model"`
	OverridePolicy OverridePolicy `yaml:"override_policy"`
	Critical       bool           `yaml:"critical"`
}

// ModelConfig is the static model pool / tier / wave-pool configuration.
type ModelConfig struct {
	Default   string              `yaml:"default"`
	Pool      []string            `yaml:"pool"`
	Tiers     map[string][]string `yaml:"tiers"`
	WavePools map[string][]string `yaml:"wave_pools"`
}

// WaveDefinition names the reviewers that run in one wave.
type WaveDefinition struct {
	Reviewers []string `yaml:"reviewers"`
}

// WaveGate configures the severity threshold that blocks wave advancement.
type WaveGate struct {
	Severity string `yaml:"severity"` // "critical" or "major"
}

// WaveConfig is the static multi-wave policy, if configured.
type WaveConfig struct {
	Order       []string                  `yaml:"order"`
	Definitions map[string]WaveDefinition `yaml:"definitions"`
	Gate        WaveGate                  `yaml:"gate"`
	MaxForTier  map[string]string         `yaml:"max_for_tier"`
}

// OverrideConfig configures the override command surface.
type OverrideConfig struct {
	Command         string `yaml:"command"`
	TrustedBotLogin string `yaml:"trusted_bot_login"`
}

// RoutingConfig configures the panel router (C7).
type RoutingConfig struct {
	PanelSize            int      `yaml:"panel_size"`
	AlwaysInclude        []string `yaml:"always_include"`
	IncludeIfCodeChanged []string `yaml:"include_if_code_changed"`
	FallbackPanel        []string `yaml:"fallback_panel"`
}

// Document is the top-level declarative configuration document (§6.1).
type Document struct {
	Reviewers []ReviewerProfile `yaml:"reviewers"`
	Model     ModelConfig       `yaml:"model"`
	Waves     WaveConfig        `yaml:"waves"`
	Overrides OverrideConfig    `yaml:"overrides"`
	Routing   RoutingConfig     `yaml:"routing"`
}

// ConfigError is a fatal configuration problem: unknown perspective,
// malformed document, or empty roster. The CLI maps this to exit code 2.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func errf(format string, a ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, a...)}
}

// Load reads and validates a configuration document from path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errf("missing config file: %s", path)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errf("invalid YAML in %s: %v", path, err)
	}

	if err := validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func validate(doc *Document) error {
	if len(doc.Reviewers) == 0 {
		return errf("config.reviewers: must be non-empty")
	}
	seenCodename := map[string]bool{}
	seenPerspective := map[string]bool{}
	for i, r := range doc.Reviewers {
		if r.Codename == "" {
			return errf("config.reviewers[%d].name: must be non-empty", i)
		}
		if r.Perspective == "" {
			return errf("config.reviewers[%d].perspective: must be non-empty", i)
		}
		if seenCodename[r.Codename] {
			return errf("config.reviewers: duplicate codename %q", r.Codename)
		}
		if seenPerspective[r.Perspective] {
			return errf("config.reviewers: duplicate perspective %q", r.Perspective)
		}
		seenCodename[r.Codename] = true
		seenPerspective[r.Perspective] = true
		if r.OverridePolicy == "" {
			doc.Reviewers[i].OverridePolicy = PolicyWriteAccess
		}
	}
	return nil
}

// ReviewerFor returns the reviewer profile for a perspective, or nil.
func (d *Document) ReviewerFor(perspective string) *ReviewerProfile {
	for i := range d.Reviewers {
		if d.Reviewers[i].Perspective == perspective {
			return &d.Reviewers[i]
		}
	}
	return nil
}

// OverridePolicyFor returns the override policy for a perspective, defaulting
// to write_access if the perspective is unknown.
func (d *Document) OverridePolicyFor(perspective string) OverridePolicy {
	if r := d.ReviewerFor(perspective); r != nil {
		return r.OverridePolicy
	}
	return PolicyWriteAccess
}

// PoolSelector picks one model uniformly from a non-empty pool. Production
// code uses RandomPoolSelector; tests inject a deterministic stub so
// selection is pinned (Design Note: "Randomized model draw").
type PoolSelector interface {
	Select(pool []string) string
}

// ResolveModel implements the §4.1 resolution order: action-level override
// → reviewer's explicit model_binding → wave pool → tier pool → global
// default. "pool" triggers a uniform-random draw via sel.
func (d *Document) ResolveModel(perspective, tier, wave string, actionOverride string, sel PoolSelector) (string, error) {
	if actionOverride != "" {
		return actionOverride, nil
	}

	r := d.ReviewerFor(perspective)
	if r == nil {
		return "", errf("unknown perspective: %s", perspective)
	}

	if r.Model != "" && r.Model != "pool" {
		return r.Model, nil
	}

	if r.Model == "pool" {
		if wave != "" {
			if pool, ok := d.Model.WavePools[wave]; ok && len(pool) > 0 {
				return sel.Select(pool), nil
			}
		}
		if tier != "" {
			if pool, ok := d.Model.Tiers[tier]; ok && len(pool) > 0 {
				return sel.Select(pool), nil
			}
		}
		if len(d.Model.Pool) > 0 {
			return sel.Select(d.Model.Pool), nil
		}
	}

	if d.Model.Default != "" {
		return d.Model.Default, nil
	}
	return "", errf("no model resolvable for perspective %s", perspective)
}
