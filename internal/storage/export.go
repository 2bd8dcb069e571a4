// ABOUTME: Export and import functionality for dashboard data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for dashboard data.
type ExportData struct {
	Version      string                       `json:"version" yaml:"version"`
	ExportedAt   time.Time                    `json:"exported_at" yaml:"exported_at"`
	Tool         string                       `json:"tool" yaml:"tool"`
	Performance  []*models.PerformanceRecord  `json:"performance_data" yaml:"performance_data"`
	Subjects     []*models.SubjectRecord      `json:"subject_data" yaml:"subject_data"`
	Distribution []*models.DistributionRecord `json:"class_distribution" yaml:"class_distribution"`
}

// GetAllData retrieves all three collections for export.
func GetAllData(ctx context.Context, repo Repository) (*ExportData, error) {
	perf, err := repo.ListPerformance(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := repo.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	dist, err := repo.ListDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "classdash",
		Performance:  perf,
		Subjects:     subjects,
		Distribution: dist,
	}, nil
}

// ImportData inserts every record from data. IDs are reassigned by the destination.
func ImportData(ctx context.Context, repo Repository, data *ExportData) error {
	for _, r := range data.Performance {
		if err := repo.CreatePerformance(ctx, r); err != nil {
			return fmt.Errorf("import performance: %w", err)
		}
	}
	for _, r := range data.Subjects {
		if err := repo.CreateSubject(ctx, r); err != nil {
			return fmt.Errorf("import subject: %w", err)
		}
	}
	for _, r := range data.Distribution {
		if err := repo.CreateDistribution(ctx, r); err != nil {
			return fmt.Errorf("import distribution: %w", err)
		}
	}
	return nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := GetAllData(ctx, repo)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(ctx, repo, &data)
}

// ExportYAML exports chart-shaped data as YAML.
func ExportYAML(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := GetAllData(ctx, repo)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string           `yaml:"version"`
		ExportedAt string           `yaml:"exported_at"`
		Tool       string           `yaml:"tool"`
		Charts     models.ChartData `yaml:"charts"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Charts:     models.NewChartData(data.Performance, data.Subjects, data.Distribution),
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown renders each collection as a Markdown table.
func ExportMarkdown(ctx context.Context, repo Repository) (string, error) {
	data, err := GetAllData(ctx, repo)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Dashboard Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Month | Score | Attendance | Participation |\n")
	sb.WriteString("|-------|-------|------------|---------------|\n")
	for _, r := range data.Performance {
		sb.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %.1f |\n",
			r.Month, r.Score.Float64(), r.Attendance.Float64(), r.Participation.Float64()))
	}

	sb.WriteString("\n## Subjects\n\n")
	sb.WriteString("| Subject | Students | Avg Score | Color |\n")
	sb.WriteString("|---------|----------|-----------|-------|\n")
	for _, r := range data.Subjects {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.1f | %s |\n",
			r.Name, r.Students.Int(), r.AvgScore.Float64(), r.Color))
	}

	sb.WriteString("\n## Class Distribution\n\n")
	sb.WriteString("| Category | Classes | Color |\n")
	sb.WriteString("|----------|---------|-------|\n")
	for _, r := range data.Distribution {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", r.Name, r.Value.Int(), r.Color))
	}

	return sb.String(), nil
}
