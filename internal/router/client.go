package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/misty-step/cerberus/internal/config"
)

// Client calls an Anthropic model to select a reviewer panel. It replaces
// route.py's raw OpenRouter HTTP call with the SDK the rest of this module
// already depends on.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
	log   *slog.Logger
}

// NewClient builds a router client. An empty apiKey defers to the SDK's
// default environment-variable resolution.
func NewClient(apiKey, model string, log *slog.Logger) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	api := anthropic.NewClient(opts...)
	if log == nil {
		log = slog.Default()
	}
	return &Client{api: &api, model: anthropic.Model(model), log: log}
}

// Route selects a reviewer panel for diff. It never returns an error for a
// routing failure — a disabled router, a missing API key, a malformed
// model response, or a model call error all fall back to
// BuildFallbackPanel, matching route.py's main(): routing never blocks the
// workflow.
func (c *Client) Route(ctx context.Context, doc *config.Document, diff string) ([]string, bool) {
	changes := ParseDiff(diff)
	fallback := BuildFallbackPanel(doc.Routing, changes)

	if c == nil || c.api == nil {
		return fallback, false
	}

	perspectives := Perspectives(doc)
	allowed := make(map[string]bool, len(perspectives))
	for _, p := range perspectives {
		allowed[p] = true
	}

	prompt := BuildPrompt(changes, perspectives, doc.Routing.PanelSize)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.log.Warn("router: model call failed, using fallback panel", "error", err)
		return fallback, false
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	payload, ok := ParsePanelFromText(text)
	if !ok {
		c.log.Warn("router: model response had no parseable panel, using fallback")
		return fallback, false
	}

	var panel []string
	if err := json.Unmarshal([]byte(payload), &panel); err != nil {
		c.log.Warn("router: model panel was not valid JSON, using fallback", "error", err)
		return fallback, false
	}

	if err := ValidatePanel(panel, allowed, doc.Routing.AlwaysInclude, doc.Routing.PanelSize); err != nil {
		c.log.Warn("router: model panel failed validation, using fallback", "error", err)
		return fallback, false
	}

	return panel, true
}

// ErrRoutingDisabled is returned by Route callers that short-circuit before
// ever constructing a Client (routing=disabled in config).
var ErrRoutingDisabled = fmt.Errorf("router: routing is disabled")
