package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// allowedEnvNames and allowedEnvPrefixes mirror runtime_facade.py's sanitized subprocess
// environment: only a narrow allowlist of variable names/prefixes crosses
// into the reviewer child process, so a reviewer command cannot read the
// orchestrator's ambient secrets (GitHub tokens, cache credentials, etc).
var allowedEnvNames = map[string]bool{
	"PATH":     true,
	"HOME":     true,
	"LANG":     true,
	"LC_ALL":   true,
	"TMPDIR":   true,
	"TZ":       true,
	"SHELL":    true,
	"USER":     true,
}

var allowedEnvPrefixes = []string{
	"OPENROUTER_",
	"ANTHROPIC_",
	"CEREBUS_REVIEWER_",
	"CERBERUS_REVIEWER_",
}

// SanitizeEnv builds the environment for a reviewer subprocess: the
// allowlisted ambient variables from the current process, plus HOME
// overridden to an isolated directory, plus any extra key=value pairs the
// caller supplies (e.g. a provider API key resolved for this reviewer).
func SanitizeEnv(isolatedHome string, extra map[string]string) []string {
	out := make([]string, 0, len(os.Environ()))
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if name == "HOME" {
			continue
		}
		if allowedEnvNames[name] || hasAllowedPrefix(name) {
			out = append(out, kv)
		}
	}
	out = append(out, "HOME="+isolatedHome)
	for k, v := range extra {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

func hasAllowedPrefix(name string) bool {
	for _, p := range allowedEnvPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsolatedHome creates a fresh per-reviewer HOME directory under baseDir so
// concurrent reviewer invocations cannot see each other's config/cache
// state. Every attempt for the same reviewer reuses the directory; it is
// not removed here, and the caller is responsible for removing it.
func IsolatedHome(baseDir, reviewer string) (string, error) {
	dir := filepath.Join(baseDir, "home-"+sanitizeName(reviewer))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("runner: creating isolated home for %s: %w", reviewer, err)
	}
	return dir, nil
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
