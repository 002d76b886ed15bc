package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/misty-step/cerberus/internal/config"
)

func TestClient_NilClientUsesFallbackPanel(t *testing.T) {
	var c *Client
	doc := &config.Document{
		Reviewers: []config.ReviewerProfile{{Codename: "apollo", Perspective: "security"}},
		Routing:   config.RoutingConfig{PanelSize: 1, AlwaysInclude: []string{"security"}},
	}

	panel, usedModel := c.Route(context.Background(), doc, "diff --git a/main.go b/main.go\n+++ b/main.go\n+x\n")
	assert.False(t, usedModel)
	assert.Equal(t, []string{"security"}, panel)
}

func TestClient_UninitializedAPIFieldUsesFallback(t *testing.T) {
	c := &Client{}
	doc := &config.Document{
		Reviewers: []config.ReviewerProfile{{Codename: "apollo", Perspective: "security"}},
		Routing:   config.RoutingConfig{PanelSize: 1, FallbackPanel: []string{"security"}},
	}

	panel, usedModel := c.Route(context.Background(), doc, "")
	assert.False(t, usedModel)
	assert.Equal(t, []string{"security"}, panel)
}
