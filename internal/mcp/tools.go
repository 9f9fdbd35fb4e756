package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nao1215/a11yscan/internal/guard"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/nao1215/a11yscan/internal/rules"
	"github.com/nao1215/a11yscan/internal/sanitize"
)

const defaultHistoryLimit = 20

// ruleInfo describes one check for the rules tool and resource.
type ruleInfo struct {
	Name       string `json:"name"`
	Limitation string `json:"limitation,omitempty"`
}

// registerTools registers all a11yscan MCP tools on the given server.
func registerTools(s *server.MCPServer, cfg *config) {
	s.AddTool(
		mcplib.NewTool("a11yscan_check",
			mcplib.WithDescription("Checks a public web page against ten accessibility rules and returns the result with recommendations as JSON"),
			mcplib.WithString("url",
				mcplib.Required(),
				mcplib.Description("Absolute http or https URL of the page to check"),
			),
		),
		handleCheck(cfg),
	)

	s.AddTool(
		mcplib.NewTool("a11yscan_rules",
			mcplib.WithDescription("Lists the accessibility checks in evaluation order and the limitations of the checks that always pass"),
		),
		handleRules(),
	)

	if cfg.history != nil {
		s.AddTool(
			mcplib.NewTool("a11yscan_history",
				mcplib.WithDescription("Returns stored results for a URL, newest first"),
				mcplib.WithString("url",
					mcplib.Required(),
					mcplib.Description("URL as it was checked"),
				),
				mcplib.WithNumber("limit", mcplib.Description("Maximum number of records (default 20)")),
			),
			handleHistory(cfg),
		)
	}
}

func handleCheck(cfg *config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
		defer cancel()

		analysis, err := cfg.analyzer.Analyze(ctx, strings.TrimSpace(raw))
		if err != nil {
			var reason guard.Reason
			switch {
			case errors.As(err, &reason):
				return errorResult(reason.Message()), nil
			case errors.Is(ctx.Err(), context.DeadlineExceeded):
				return errorResult("Request timeout - analysis took too long"), nil
			default:
				cfg.logger.Error("analysis failed", "error", err)
				return errorResult("Failed to analyze webpage: " + sanitize.Text(err.Error())), nil
			}
		}

		result := analysis.Result(cfg.now())
		if result == nil {
			return errorResult("Failed to analyze webpage"), nil
		}

		if cfg.history != nil {
			if _, err := cfg.history.SaveResult(context.WithoutCancel(ctx), result, analysis.Snapshot); err != nil {
				cfg.logger.Warn("failed to save result", "hostname", analysis.Hostname, "error", err)
			}
		}
		return jsonResult(report.NewJSONReport(result, cfg.version))
	}
}

func handleRules() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(ruleList())
	}
}

func handleHistory(cfg *config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireString("url")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		limit := defaultHistoryLimit
		if n, ok := request.GetArguments()["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}

		records, err := cfg.history.GetHistory(ctx, sanitize.URL(strings.TrimSpace(raw)), limit)
		if err != nil {
			return errorResult(fmt.Sprintf("history lookup failed: %v", err)), nil
		}
		if len(records) == 0 {
			return textResult("No stored results for " + raw), nil
		}
		return jsonResult(records)
	}
}

// ruleList describes the checks of the default engine.
func ruleList() []ruleInfo {
	checks := rules.NewEngine().Checks()
	out := make([]ruleInfo, 0, len(checks))
	for _, c := range checks {
		out = append(out, ruleInfo{Name: string(c.Name()), Limitation: c.Limitation()})
	}
	return out
}

// jsonResult marshals v as indented JSON into a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
