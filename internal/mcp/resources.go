package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nao1215/a11yscan/internal/report"
)

const (
	rulesURI       = "a11yscan://rules"
	limitationsURI = "a11yscan://limitations"
)

// registerResources registers the static a11yscan resources.
func registerResources(s *server.MCPServer) {
	s.AddResource(
		mcplib.NewResource(
			rulesURI,
			"Rules",
			mcplib.WithResourceDescription("The ten accessibility checks in evaluation order"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource(rulesURI, func() any { return ruleList() }),
	)

	s.AddResource(
		mcplib.NewResource(
			limitationsURI,
			"Limitations",
			mcplib.WithResourceDescription("Checks that always pass and what they do not analyze"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource(limitationsURI, func() any { return report.Limitations() }),
	)
}

func jsonResource(uri string, build func() any) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(build(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", uri, err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
