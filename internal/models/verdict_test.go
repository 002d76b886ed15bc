package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewerVerdict_OmitsUnsetOptionalFields(t *testing.T) {
	rv := ReviewerVerdict{
		Reviewer:    "apollo",
		Perspective: "security",
		Verdict:     VerdictPass,
		Confidence:  0.9,
		Summary:     "looks fine",
	}

	data, err := json.Marshal(rv)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, field := range []string{
		"runtime_seconds", "model_used", "primary_model", "fallback_used",
		"raw_review", "skip_category", "model_tier", "model_wave",
		"overridden", "override_reason", "override_actor",
	} {
		_, present := raw[field]
		assert.Falsef(t, present, "expected %q to be omitted when unset", field)
	}
}

func TestFinding_RoundTripsDemotionReason(t *testing.T) {
	f := Finding{
		Severity:       SeverityMajor,
		Category:       "security",
		File:           "main.go",
		Line:           10,
		Title:          "sql injection",
		Description:    "unsanitized input",
		DemotionReason: "file_outside_diff",
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var round Finding
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, "file_outside_diff", round.DemotionReason)
}

func TestCerberusVerdict_ZeroWaveStillPresentAsStruct(t *testing.T) {
	// encoding/json's omitempty never omits a struct-typed field regardless
	// of the tag, so a zero-value WaveMetadata still round-trips as an
	// object rather than disappearing.
	cv := CerberusVerdict{RunID: "abc", Verdict: VerdictPass, Summary: "ok"}

	data, err := json.Marshal(cv)
	require.NoError(t, err)

	var round CerberusVerdict
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, WaveMetadata{}, round.Wave)
}
