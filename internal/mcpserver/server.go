// Package mcpserver exposes Cerberus's verdict, roster, and history data
// as MCP tools over stdio, for editor and agent integration.
//
// Grounded in the teacher's internal/mcp/server.go: the Server-wraps-data-
// layer shape, the toolFn-returns-(mcp.Tool, server.ToolHandlerFunc) idiom,
// and NewMCPServer/ServeStdio wiring are kept, narrowed from the teacher's
// eight project/issue/agent tools down to the three SPEC_FULL.md names.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/misty-step/cerberus/internal/config"
	"github.com/misty-step/cerberus/internal/models"
	"github.com/misty-step/cerberus/internal/qualityreport"
)

// VerdictLookup resolves the last known CerberusVerdict for a head SHA.
// The CLI wires this to whatever the current run (or a cached artifact
// file) produced; it is an interface here so tests can fake it.
type VerdictLookup interface {
	VerdictForSHA(ctx context.Context, sha string) (*models.CerberusVerdict, error)
}

// Server wraps Cerberus's roster, verdict lookup, and history store and
// exposes them as MCP tools.
type Server struct {
	doc     *config.Document
	lookup  VerdictLookup
	history *qualityreport.Store
}

// NewServer creates the MCP server wrapper. history may be nil, in which
// case quality_report reports that no history cache is configured.
func NewServer(doc *config.Document, lookup VerdictLookup, history *qualityreport.Store) *Server {
	return &Server{doc: doc, lookup: lookup, history: history}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("cerberus", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.getVerdictTool())
	srv.AddTool(s.listReviewersTool())
	srv.AddTool(s.qualityReportTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// get_verdict
func (s *Server) getVerdictTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_verdict",
		mcp.WithDescription("Look up the Cerberus verdict for a commit SHA. Returns the aggregated pass/warn/fail/skip decision and per-reviewer findings as JSON."),
		mcp.WithString("sha", mcp.Required(), mcp.Description("Commit SHA (full or prefix) to look up")),
	)
	return tool, s.handleGetVerdict
}

func (s *Server) handleGetVerdict(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sha, err := request.RequireString("sha")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: sha"), nil
	}

	if s.lookup == nil {
		return mcp.NewToolResultError("no verdict source configured"), nil
	}

	cv, err := s.lookup.VerdictForSHA(ctx, sha)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to look up verdict: %v", err)), nil
	}
	if cv == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no verdict recorded for sha %s", sha)), nil
	}

	data, err := json.Marshal(cv)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal verdict: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// list_reviewers
func (s *Server) listReviewersTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_reviewers",
		mcp.WithDescription("List the configured reviewer roster. Returns each reviewer's codename, perspective, model, and critical flag."),
	)
	return tool, s.handleListReviewers
}

type reviewerOut struct {
	Codename    string `json:"codename"`
	Perspective string `json:"perspective"`
	Model       string `json:"model"`
	Critical    bool   `json:"critical"`
}

func (s *Server) handleListReviewers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.doc == nil {
		return mcp.NewToolResultError("no roster configured"), nil
	}

	out := make([]reviewerOut, 0, len(s.doc.Reviewers))
	for _, r := range s.doc.Reviewers {
		out = append(out, reviewerOut{
			Codename:    r.Codename,
			Perspective: r.Perspective,
			Model:       r.Model,
			Critical:    r.Critical,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal roster: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// quality_report
func (s *Server) qualityReportTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("quality_report",
		mcp.WithDescription("Return the recorded verdict history for a pull request number, most recent first."),
		mcp.WithNumber("pr_number", mcp.Required(), mcp.Description("Pull request number")),
	)
	return tool, s.handleQualityReport
}

func (s *Server) handleQualityReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prNumber := request.GetInt("pr_number", 0)
	if prNumber == 0 {
		return mcp.NewToolResultError("missing required parameter: pr_number"), nil
	}

	if s.history == nil {
		return mcp.NewToolResultError("no quality-report history cache configured"), nil
	}

	entries, err := s.history.ForPR(ctx, prNumber)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal history: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
