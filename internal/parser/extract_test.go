package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_TakesLastFencedBlock(t *testing.T) {
	text := "Let me think.\n```json\n{\"scratch\": true}\n```\nActually:\n```json\n{\"final\": true}\n```\n"
	payload, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.Equal(t, `{"final": true}`, payload)
}

func TestExtractJSON_NoFencedBlock(t *testing.T) {
	_, ok := ExtractJSON("just prose, no code fence")
	assert.False(t, ok)
}

func TestExtractJSON_MultilineBlock(t *testing.T) {
	text := "```json\n{\n  \"a\": 1\n}\n```"
	payload, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.Equal(t, "{\n  \"a\": 1\n}", payload)
}

func TestSubstantialScratchpad(t *testing.T) {
	assert.False(t, substantialScratchpad("too short"))
	assert.True(t, substantialScratchpad(strings.Repeat("a", 200)))
}
