package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misty-step/cerberus/internal/models"
)

func TestExtractCouncilVerdict_Found(t *testing.T) {
	v, ok := ExtractCouncilVerdict("Some comment\n<!-- cerberus:verdict=FAIL -->\nmore text")
	require.True(t, ok)
	assert.Equal(t, models.VerdictFail, v)
}

func TestExtractCouncilVerdict_CaseInsensitive(t *testing.T) {
	v, ok := ExtractCouncilVerdict("<!-- CERBERUS:verdict=pass -->")
	require.True(t, ok)
	assert.Equal(t, models.VerdictPass, v)
}

func TestExtractCouncilVerdict_NotFound(t *testing.T) {
	_, ok := ExtractCouncilVerdict("just a regular comment")
	assert.False(t, ok)
}

func TestParseTriageCommandMode_ExplicitCommand(t *testing.T) {
	assert.Equal(t, RequestedModeFix, ParseTriageCommandMode("/cerberus triage mode=fix", RequestedModeDiagnose))
	assert.Equal(t, RequestedModeDiagnose, ParseTriageCommandMode("/cerberus triage mode=diagnose", RequestedModeFix))
}

func TestParseTriageCommandMode_LegacyAliasWithoutModeKeyUsesDefault(t *testing.T) {
	assert.Equal(t, RequestedModeFix, ParseTriageCommandMode("/council triage", RequestedModeFix))
}

func TestParseTriageCommandMode_InvalidModeFallsBackToDefault(t *testing.T) {
	assert.Equal(t, RequestedModeDiagnose, ParseTriageCommandMode("/cerberus triage mode=bogus", RequestedModeDiagnose))
}

func TestParseTriageCommandMode_DefaultsWhenAbsent(t *testing.T) {
	assert.Equal(t, RequestedModeFix, ParseTriageCommandMode("no command here", RequestedModeFix))
}

func TestParseTriageCommandMode_UnprefixedCommandNeverMatches(t *testing.T) {
	// The spec's grammar requires the /cerberus or /council prefix; a bare
	// "/triage ..." command is not recognized and falls back to default.
	assert.Equal(t, RequestedModeDiagnose, ParseTriageCommandMode("/triage fix", RequestedModeDiagnose))
}

func TestHasTriageCommitTag(t *testing.T) {
	assert.True(t, HasTriageCommitTag("fix: retry flaky test [triage]"))
	assert.True(t, HasTriageCommitTag("FIX: RETRY [TRIAGE]"))
	assert.False(t, HasTriageCommitTag("fix: normal commit"))
}

func TestCountAttemptsForSHA_OnlyCountsTrustedBotMarkedComments(t *testing.T) {
	comments := []models.Comment{
		{Author: "cerberus-bot", Body: "<!-- cerberus:triage-attempt -->abc123"},
		{Author: "cerberus-bot", Body: "<!-- cerberus:triage-attempt -->abc123"},
		{Author: "mallory", Body: "<!-- cerberus:triage-attempt -->abc123"},
		{Author: "cerberus-bot", Body: "<!-- cerberus:triage-attempt -->def456"},
	}
	assert.Equal(t, 2, CountAttemptsForSHA(comments, "abc123", "cerberus-bot"))
}

func TestShouldSchedulePR_PassNeverSchedules(t *testing.T) {
	assert.False(t, ShouldSchedulePR(models.VerdictPass, nil, 0, 3, 24, time.Now()))
}

func TestShouldSchedulePR_WarnNeverSchedules(t *testing.T) {
	// Only a FAIL is eligible for triage; WARN is advisory.
	now := time.Now()
	old := now.Add(-25 * time.Hour)
	assert.False(t, ShouldSchedulePR(models.VerdictWarn, &old, 0, 3, 24, now))
	assert.False(t, ShouldSchedulePR(models.VerdictWarn, nil, 0, 3, 24, now))
}

func TestShouldSchedulePR_ExhaustedAttemptsNeverSchedules(t *testing.T) {
	assert.False(t, ShouldSchedulePR(models.VerdictFail, nil, 3, 3, 24, time.Now()))
}

func TestShouldSchedulePR_NeverPostedSchedulesImmediately(t *testing.T) {
	assert.True(t, ShouldSchedulePR(models.VerdictFail, nil, 0, 3, 24, time.Now()))
}

func TestShouldSchedulePR_StaleVerdictSchedules(t *testing.T) {
	now := time.Now()
	old := now.Add(-25 * time.Hour)
	assert.True(t, ShouldSchedulePR(models.VerdictFail, &old, 0, 3, 24, now))
}

func TestShouldSchedulePR_FreshVerdictDoesNotSchedule(t *testing.T) {
	now := time.Now()
	recent := now.Add(-1 * time.Hour)
	assert.False(t, ShouldSchedulePR(models.VerdictFail, &recent, 0, 3, 24, now))
}

func baseDecideInput() DecideInput {
	return DecideInput{
		Trigger:       TriggerAutomatic,
		RequestedMode: RequestedModeFix,
		HasVerdict:    true,
		Verdict:       models.VerdictFail,
		MaxAttempts:   3,
		IsGitCheckout: true,
	}
}

func TestDecide_KillSwitchDisables(t *testing.T) {
	in := baseDecideInput()
	in.KillSwitch = true
	assert.Equal(t, DecisionDisabled, Decide(in))
}

func TestDecide_MissingVerdictSkips(t *testing.T) {
	in := baseDecideInput()
	in.HasVerdict = false
	assert.Equal(t, DecisionSkip, Decide(in))
}

func TestDecide_NonFailVerdictSkips(t *testing.T) {
	in := baseDecideInput()
	in.Verdict = models.VerdictWarn
	assert.Equal(t, DecisionSkip, Decide(in))
}

func TestDecide_ExhaustedAttemptsSkips(t *testing.T) {
	in := baseDecideInput()
	in.AttemptsForSHA = 3
	assert.Equal(t, DecisionSkip, Decide(in))
}

func TestDecide_TriageCommitTagSkips(t *testing.T) {
	in := baseDecideInput()
	in.HeadCommitMessage = "retry flaky test [triage]"
	assert.Equal(t, DecisionSkip, Decide(in))
}

func TestDecide_FreshScheduledVerdictSkips(t *testing.T) {
	in := baseDecideInput()
	in.Trigger = TriggerScheduled
	in.VerdictIsStale = false
	assert.Equal(t, DecisionSkip, Decide(in))
}

func TestDecide_StaleScheduledVerdictDiagnoses(t *testing.T) {
	in := baseDecideInput()
	in.Trigger = TriggerScheduled
	in.VerdictIsStale = true
	assert.Equal(t, DecisionDiagnose, Decide(in))
}

func TestDecide_ManualTriggerDiagnoses(t *testing.T) {
	in := baseDecideInput()
	in.Trigger = TriggerManual
	assert.Equal(t, DecisionDiagnose, Decide(in))
}

func TestDecide_ForkHeadDiagnoses(t *testing.T) {
	in := baseDecideInput()
	in.IsForkHead = true
	assert.Equal(t, DecisionDiagnose, Decide(in))
}

func TestDecide_NonGitCheckoutDiagnoses(t *testing.T) {
	in := baseDecideInput()
	in.IsGitCheckout = false
	assert.Equal(t, DecisionDiagnose, Decide(in))
}

func TestDecide_ExplicitDiagnoseRequestHonored(t *testing.T) {
	in := baseDecideInput()
	in.RequestedMode = RequestedModeDiagnose
	assert.Equal(t, DecisionDiagnose, Decide(in))
}

func TestDecide_AutomaticTriggerWithWritableCheckoutFixes(t *testing.T) {
	in := baseDecideInput()
	assert.Equal(t, DecisionFix, Decide(in))
}
