// ABOUTME: MCP tool implementations for the classroom dashboard.
// ABOUTME: Provides chart reads, seeding, row inserts, deletes, and table clears.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/seed"
	"github.com/harperreed/classdash/internal/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get chart-ready performance, subject, and class distribution data. Seeds defaults if the dashboard is empty.",
	}, s.handleGetDashboard)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "seed_dashboard",
		Description: "Insert the default dashboard rows if the performance table is empty",
	}, s.handleSeedDashboard)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_performance",
		Description: "Add a monthly performance row (score, attendance, participation)",
	}, s.handleAddPerformance)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_subject",
		Description: "Add a subject with student count and average score",
	}, s.handleAddSubject)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_distribution",
		Description: "Add a class distribution category",
	}, s.handleAddDistribution)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete one row by table and ID",
	}, s.handleDeleteRecord)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_table",
		Description: "Delete every row in a table",
	}, s.handleClearTable)
}

// Tool input/output types

type getDashboardInput struct {
	SkipSeed bool `json:"skip_seed,omitempty" jsonschema:"Do not seed defaults when the dashboard is empty"`
}

type addPerformanceInput struct {
	Month         string  `json:"month" jsonschema:"Month label such as Jan"`
	Score         float64 `json:"score" jsonschema:"Average score"`
	Attendance    float64 `json:"attendance" jsonschema:"Attendance percentage"`
	Participation float64 `json:"participation" jsonschema:"Participation percentage"`
}

type addSubjectInput struct {
	Name     string  `json:"name" jsonschema:"Subject name"`
	Students int     `json:"students" jsonschema:"Number of students"`
	AvgScore float64 `json:"avg_score" jsonschema:"Average score"`
	Color    string  `json:"color,omitempty" jsonschema:"Hex color, defaults to #8b5cf6"`
}

type addDistributionInput struct {
	Name  string `json:"name" jsonschema:"Category name"`
	Value int    `json:"value" jsonschema:"Number of classes"`
	Color string `json:"color,omitempty" jsonschema:"Hex color, defaults to #8b5cf6"`
}

type recordOutput struct {
	ID      int64  `json:"id"`
	Table   string `json:"table"`
	Message string `json:"message"`
}

type tableInput struct {
	Table string `json:"table" jsonschema:"Table: performance, subjects, or distribution"`
}

type deleteRecordInput struct {
	Table string `json:"table" jsonschema:"Table: performance, subjects, or distribution"`
	ID    int64  `json:"id" jsonschema:"Row ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type clearOutput struct {
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleGetDashboard(ctx context.Context, req *mcp.CallToolRequest, input getDashboardInput) (*mcp.CallToolResult, models.ChartData, error) {
	opts := []sync.Option{sync.WithLogger(s.log), sync.WithSeeder(s.seed)}
	if input.SkipSeed {
		opts = append(opts, sync.WithSeeder(nil))
	}

	state, err := sync.Load(ctx, s.repo, opts...)
	if err != nil {
		return nil, models.ChartData{}, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return nil, state.ChartData(), nil
}

func (s *Server) handleSeedDashboard(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, seed.Result, error) {
	res, err := s.seed(ctx, s.repo)
	if err != nil {
		return nil, seed.Result{}, fmt.Errorf("failed to seed dashboard: %w", err)
	}
	return nil, *res, nil
}

func (s *Server) handleAddPerformance(ctx context.Context, req *mcp.CallToolRequest, input addPerformanceInput) (*mcp.CallToolResult, recordOutput, error) {
	r := models.NewPerformanceRecord(input.Month, input.Score, input.Attendance, input.Participation)
	if err := s.repo.CreatePerformance(ctx, r); err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to add performance: %w", err)
	}

	return nil, recordOutput{
		ID:      r.ID,
		Table:   string(models.TablePerformance),
		Message: fmt.Sprintf("Added %s: score %.1f, attendance %.1f, participation %.1f (ID: %d)", r.Month, input.Score, input.Attendance, input.Participation, r.ID),
	}, nil
}

func (s *Server) handleAddSubject(ctx context.Context, req *mcp.CallToolRequest, input addSubjectInput) (*mcp.CallToolResult, recordOutput, error) {
	r := models.NewSubjectRecord(input.Name, input.Students, input.AvgScore, input.Color)
	if err := s.repo.CreateSubject(ctx, r); err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to add subject: %w", err)
	}

	return nil, recordOutput{
		ID:      r.ID,
		Table:   string(models.TableSubjects),
		Message: fmt.Sprintf("Added %s: %d students, avg %.1f (ID: %d)", r.Name, input.Students, input.AvgScore, r.ID),
	}, nil
}

func (s *Server) handleAddDistribution(ctx context.Context, req *mcp.CallToolRequest, input addDistributionInput) (*mcp.CallToolResult, recordOutput, error) {
	r := models.NewDistributionRecord(input.Name, input.Value, input.Color)
	if err := s.repo.CreateDistribution(ctx, r); err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to add distribution: %w", err)
	}

	return nil, recordOutput{
		ID:      r.ID,
		Table:   string(models.TableDistribution),
		Message: fmt.Sprintf("Added %s: %d classes (ID: %d)", r.Name, input.Value, r.ID),
	}, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *mcp.CallToolRequest, input deleteRecordInput) (*mcp.CallToolResult, simpleOutput, error) {
	table, err := models.ParseTable(input.Table)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	if err := s.repo.Delete(ctx, table, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete record: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s row %d", table.Label(), input.ID),
	}, nil
}

func (s *Server) handleClearTable(ctx context.Context, req *mcp.CallToolRequest, input tableInput) (*mcp.CallToolResult, clearOutput, error) {
	table, err := models.ParseTable(input.Table)
	if err != nil {
		return nil, clearOutput{}, err
	}

	n, err := s.repo.Clear(ctx, table)
	if err != nil {
		return nil, clearOutput{}, fmt.Errorf("failed to clear %s: %w", table.Label(), err)
	}

	return nil, clearOutput{
		Removed: n,
		Message: fmt.Sprintf("Cleared %d rows from %s", n, table.Label()),
	}, nil
}
