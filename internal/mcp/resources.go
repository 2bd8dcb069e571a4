// ABOUTME: MCP resource implementations for the classroom dashboard.
// ABOUTME: Provides dashboard://chart and dashboard://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/classdash/internal/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	chartURI   = "dashboard://chart"
	summaryURI = "dashboard://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         chartURI,
		Name:        "Dashboard Charts",
		Description: "Chart-ready performance, subject, and class distribution series",
		MIMEType:    "application/json",
	}, s.handleChartResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Dashboard Summary",
		Description: "Row counts, latest month, and averages across the dashboard",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

// Resources are read-only views; they never seed.
func (s *Server) loadState(ctx context.Context) (sync.State, error) {
	return sync.Load(ctx, s.repo, sync.WithLogger(s.log), sync.WithSeeder(nil))
}

func (s *Server) handleChartResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	return jsonResource(chartURI, state.ChartData())
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	state, err := s.loadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"summary":      state.ChartData().Summary(),
	}
	return jsonResource(summaryURI, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
