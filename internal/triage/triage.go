// Package triage implements the circuit breaker that decides whether a PR
// should be rescheduled for another automated review pass: commit-tag
// detection, attempt counting, staleness checks, and the trigger-aware mode
// selection that keeps triage from writing unattended against forks or
// untrusted checkouts.
//
// Grounded in original_source/tests/test_triage.py (the implementation it
// exercises was not retrieved, so these functions are rebuilt directly from
// the test cases' documented signatures and behavior).
package triage

import (
	"regexp"
	"strings"
	"time"

	"github.com/misty-step/cerberus/internal/models"
)

const triageMarker = "<!-- cerberus:triage-attempt -->"

var verdictMarkerRe = regexp.MustCompile(`(?i)<!--\s*cerberus:verdict=(PASS|WARN|FAIL|SKIP)\s*-->`)

// ExtractCouncilVerdict reads the machine-readable verdict marker Cerberus
// stamps into its own PR comment, so triage can reason about the last
// posted decision without re-parsing the rendered markdown table.
func ExtractCouncilVerdict(body string) (models.Verdict, bool) {
	m := verdictMarkerRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return models.Verdict(strings.ToUpper(m[1])), true
}

// RequestedMode is the mode a commenter can explicitly request, overriding
// the trigger's default mode when the requester is authorized to write.
type RequestedMode string

const (
	RequestedModeDiagnose RequestedMode = "diagnose"
	RequestedModeFix      RequestedMode = "fix"
)

// triageCommandRe matches the canonical `/cerberus triage mode=<mode>`
// command and its `/council triage` alias. The mode key is optional so a
// bare `/council triage` also matches the alias's documented shorthand.
var triageCommandRe = regexp.MustCompile(`(?im)^/(?:cerberus|council) triage(?:\s+mode=(\S+))?\s*$`)

// ParseTriageCommandMode looks for a `/cerberus triage mode=<mode>` command
// (or its `/council triage` alias) in text, returning defaultMode when no
// command is present or its mode value doesn't resolve to a known mode.
func ParseTriageCommandMode(text string, defaultMode RequestedMode) RequestedMode {
	m := triageCommandRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return defaultMode
	}
	switch mode := RequestedMode(strings.ToLower(m[1])); mode {
	case RequestedModeDiagnose, RequestedModeFix:
		return mode
	default:
		return defaultMode
	}
}

// HasTriageCommitTag reports whether a commit message carries the
// `[triage]` tag that a prior triage fix commit stamps on itself. Its
// presence on HEAD is a loop guard: it means HEAD is already the product of
// a triage run, so triage must skip rather than fix it again.
func HasTriageCommitTag(commitMessage string) bool {
	return strings.Contains(strings.ToLower(commitMessage), "[triage]")
}

// CountAttemptsForSHA counts how many triage attempts have already been
// recorded for sha. Only comments authored by the configured trusted bot
// login count — a human re-running `/cerberus triage` manually does not
// consume the automated retry budget (resolved Open Question: trusted-bot
// gating on attempt counting).
func CountAttemptsForSHA(comments []models.Comment, sha, trustedBotLogin string) int {
	count := 0
	for _, c := range comments {
		if c.Author != trustedBotLogin {
			continue
		}
		if strings.Contains(c.Body, triageMarker) && strings.Contains(c.Body, sha) {
			count++
		}
	}
	return count
}

// ShouldSchedulePR decides whether a PR should be re-queued for another
// review pass: only a FAIL verdict that has gone stale (or never posted)
// and has not exhausted its attempt budget is eligible. A WARN is advisory
// and never triggers triage.
func ShouldSchedulePR(verdict models.Verdict, councilUpdatedAt *time.Time, attemptsForSHA, maxAttempts int, staleHours float64, now time.Time) bool {
	if verdict != models.VerdictFail {
		return false
	}
	if attemptsForSHA >= maxAttempts {
		return false
	}
	if councilUpdatedAt == nil {
		return true
	}
	return now.Sub(*councilUpdatedAt) >= time.Duration(staleHours*float64(time.Hour))
}

// Decision is the guard's outcome: one of disabled, skip, diagnose, fix.
type Decision string

const (
	// DecisionDisabled means the global kill switch is set; triage never runs.
	DecisionDisabled Decision = "disabled"
	// DecisionSkip means a skip condition applied; no action is taken.
	DecisionSkip Decision = "skip"
	// DecisionDiagnose means triage may analyze but must not write: a fork
	// head, a non-checkout working tree, or a manual/scheduled trigger.
	DecisionDiagnose Decision = "diagnose"
	// DecisionFix means triage is authorized to run its fix command, commit,
	// and push.
	DecisionFix Decision = "fix"
)

// Trigger is the event that invoked triage.
type Trigger string

const (
	TriggerAutomatic Trigger = "automatic" // a PR event (push, review posted)
	TriggerManual    Trigger = "manual"    // a human posted a triage command
	TriggerScheduled Trigger = "scheduled" // a cron/periodic sweep
)

// DecideInput bundles everything Decide needs: the PR's live state, the
// trusted bot's comment history, and the trigger that invoked this run.
type DecideInput struct {
	Trigger           Trigger
	RequestedMode     RequestedMode
	HasVerdict        bool
	Verdict           models.Verdict
	VerdictIsStale    bool
	HeadCommitMessage string
	AttemptsForSHA    int
	MaxAttempts       int
	IsForkHead        bool
	IsGitCheckout     bool
	KillSwitch        bool
}

// Decide implements the guard contract: given the trigger, the latest
// trusted verdict on HEAD, the commit tag, the fork/checkout state, and the
// circuit-breaker counters, return the mode triage should run in.
func Decide(in DecideInput) Decision {
	if in.KillSwitch {
		return DecisionDisabled
	}
	if !in.HasVerdict || in.Verdict != models.VerdictFail {
		return DecisionSkip
	}
	if in.AttemptsForSHA >= in.MaxAttempts {
		return DecisionSkip
	}
	if HasTriageCommitTag(in.HeadCommitMessage) {
		return DecisionSkip
	}
	if in.Trigger == TriggerScheduled && !in.VerdictIsStale {
		return DecisionSkip
	}

	if in.Trigger != TriggerAutomatic {
		return DecisionDiagnose
	}
	if in.IsForkHead {
		return DecisionDiagnose
	}
	if !in.IsGitCheckout {
		return DecisionDiagnose
	}
	if in.RequestedMode == RequestedModeDiagnose {
		return DecisionDiagnose
	}
	return DecisionFix
}

// FixOutcome records what happened when a fix-mode triage run executed its
// repair command.
type FixOutcome string

const (
	FixOutcomeFixed     FixOutcome = "fixed"
	FixOutcomeNoChanges FixOutcome = "no_changes"
	FixOutcomeFixFailed FixOutcome = "fix_failed"
)
