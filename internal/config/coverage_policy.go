package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CoveragePolicy is the single source of truth for coverage floors,
// grounded verbatim in coverage_policy.py's validation rules.
type CoveragePolicy struct {
	GlobalFloor     int   `yaml:"global_floor"`
	PatchThreshold  int   `yaml:"patch_threshold"`
	RatchetSteps    []int `yaml:"ratchet_steps"`
}

// LoadCoveragePolicy loads and validates coverage-policy.yml.
func LoadCoveragePolicy(path string) (*CoveragePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CoveragePolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := validateCoveragePolicy(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func validateCoveragePolicy(p *CoveragePolicy) error {
	if p.GlobalFloor < 0 || p.GlobalFloor > 100 {
		return fmt.Errorf("global_floor must be in [0, 100], got %d", p.GlobalFloor)
	}
	if p.PatchThreshold < 0 || p.PatchThreshold > 100 {
		return fmt.Errorf("patch_threshold must be in [0, 100], got %d", p.PatchThreshold)
	}
	for i := 1; i < len(p.RatchetSteps); i++ {
		if p.RatchetSteps[i] <= p.RatchetSteps[i-1] {
			return fmt.Errorf("ratchet_steps must be strictly ascending; got %d then %d", p.RatchetSteps[i-1], p.RatchetSteps[i])
		}
	}
	found := false
	for _, s := range p.RatchetSteps {
		if s == p.GlobalFloor {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("global_floor %d must be one of the ratchet_steps %v", p.GlobalFloor, p.RatchetSteps)
	}
	return nil
}
