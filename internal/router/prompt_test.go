package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misty-step/cerberus/internal/config"
)

func TestBuildPrompt_SummarizesDiffAndPerspectives(t *testing.T) {
	changes := []FileChange{{Path: "main.go", Added: 3, Removed: 1}}
	prompt := BuildPrompt(changes, []string{"security", "performance"}, 2)

	assert.Contains(t, prompt, "Diff touches 1 files, 4 changed lines.")
	assert.Contains(t, prompt, "main.go (+3/-1) [code]")
	assert.Contains(t, prompt, "Select exactly 2 perspectives")
	assert.Contains(t, prompt, "- security")
	assert.Contains(t, prompt, "- performance")
}

func TestSystemPrompt_RequestsJSONOnly(t *testing.T) {
	assert.Contains(t, SystemPrompt(), "JSON array")
}

func TestPerspectives_ReturnsDeclaredOrder(t *testing.T) {
	doc := &config.Document{Reviewers: []config.ReviewerProfile{
		{Codename: "apollo", Perspective: "security"},
		{Codename: "trace", Perspective: "performance"},
	}}
	perspectives := Perspectives(doc)
	require.Equal(t, []string{"security", "performance"}, perspectives)
}
