package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/misty-step/cerberus/internal/config"
	"github.com/misty-step/cerberus/internal/models"
)

func waveConfig() config.WaveConfig {
	return config.WaveConfig{
		Order:      []string{"fast", "thorough", "deep"},
		MaxForTier: map[string]string{"flash": "fast"},
	}
}

func TestResolveWaveGate_AdvancesWhenClean(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", []models.ReviewerVerdict{
		{Reviewer: "apollo", Verdict: models.VerdictPass},
	}, "")
	assert.True(t, md.ShouldAdvance)
	assert.Equal(t, "thorough", md.NextWave)
	assert.Empty(t, md.BlockingReason)
}

func TestResolveWaveGate_LastWaveNeverAdvances(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "deep", nil, "")
	assert.False(t, md.ShouldAdvance)
	assert.Empty(t, md.NextWave)
}

func TestResolveWaveGate_UnknownWaveNeverAdvances(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "nonexistent", nil, "")
	assert.False(t, md.ShouldAdvance)
}

func TestResolveWaveGate_CriticalFindingBlocks(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", []models.ReviewerVerdict{
		{Reviewer: "apollo", Verdict: models.VerdictFail, Findings: []models.Finding{
			{Severity: models.SeverityCritical},
		}},
	}, "")
	assert.False(t, md.ShouldAdvance)
	assert.Contains(t, md.BlockingReason, "gate severity finding")
	assert.Contains(t, md.BlockingReason, "apollo")
}

func TestResolveWaveGate_MajorFindingBlocksTooByDesign(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", []models.ReviewerVerdict{
		{Reviewer: "trace", Verdict: models.VerdictWarn, Findings: []models.Finding{
			{Severity: models.SeverityMajor},
		}},
	}, "")
	assert.False(t, md.ShouldAdvance)
}

func TestResolveWaveGate_MinorFindingDoesNotBlock(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", []models.ReviewerVerdict{
		{Reviewer: "trace", Verdict: models.VerdictWarn, Findings: []models.Finding{
			{Severity: models.SeverityMinor},
		}},
	}, "")
	assert.True(t, md.ShouldAdvance)
}

func TestResolveWaveGate_MalformedArtifactBlocks(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", []models.ReviewerVerdict{
		{Reviewer: "apollo", Verdict: models.VerdictSkip, SkipCategory: models.SkipCategoryParseFailure},
	}, "")
	assert.False(t, md.ShouldAdvance)
	assert.Contains(t, md.BlockingReason, "malformed reviewer artifact")
}

func TestResolveWaveGate_TimeoutSkipDoesNotBlock(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", []models.ReviewerVerdict{
		{Reviewer: "apollo", Verdict: models.VerdictSkip, SkipCategory: models.SkipCategoryTimeout},
	}, "")
	assert.True(t, md.ShouldAdvance)
}

func TestResolveWaveGate_TierCapBlocksAdvancePastLimit(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "thorough", nil, "flash")
	assert.False(t, md.ShouldAdvance)
	assert.Contains(t, md.BlockingReason, "capped at wave fast")
}

func TestResolveWaveGate_TierCapAllowsAtOrBeforeLimit(t *testing.T) {
	md := ResolveWaveGate(waveConfig(), "fast", nil, "flash")
	assert.True(t, md.ShouldAdvance)
}
