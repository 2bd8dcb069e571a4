// ABOUTME: Tests for export, import, and backend migration.
// ABOUTME: Covers JSON round-trip, YAML chart shape, Markdown tables, and MigrateData.
package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/harperreed/classdash/internal/models"
	"gopkg.in/yaml.v3"
)

func populate(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	if err := db.CreatePerformance(ctx, models.NewPerformanceRecord("Jan", 75, 92, 68)); err != nil {
		t.Fatalf("CreatePerformance failed: %v", err)
	}
	if err := db.CreateSubject(ctx, models.NewSubjectRecord("Biology", 32, 85, "#8b5cf6")); err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}
	if err := db.CreateDistribution(ctx, models.NewDistributionRecord("Science", 5, "#8b5cf6")); err != nil {
		t.Fatalf("CreateDistribution failed: %v", err)
	}
}

func TestExportImportJSON(t *testing.T) {
	src := setupTestDB(t)
	populate(t, src)
	ctx := context.Background()

	data, err := ExportJSON(ctx, src)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"performance_data"`) {
		t.Errorf("expected performance_data key in export: %s", data)
	}

	dst := setupTestDB(t)
	if err := ImportJSON(ctx, dst, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	all, err := GetAllData(ctx, dst)
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if len(all.Performance) != 1 || len(all.Subjects) != 1 || len(all.Distribution) != 1 {
		t.Fatalf("unexpected counts after import: %d/%d/%d",
			len(all.Performance), len(all.Subjects), len(all.Distribution))
	}
	if all.Subjects[0].AvgScore != 85 {
		t.Errorf("AvgScore = %v, want 85", all.Subjects[0].AvgScore)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	db := setupTestDB(t)
	if err := ImportJSON(context.Background(), db, []byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestExportYAML(t *testing.T) {
	db := setupTestDB(t)
	populate(t, db)

	data, err := ExportYAML(context.Background(), db)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var parsed struct {
		Tool   string           `yaml:"tool"`
		Charts models.ChartData `yaml:"charts"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if parsed.Tool != "classdash" {
		t.Errorf("Tool = %q, want classdash", parsed.Tool)
	}
	if len(parsed.Charts.SubjectData) != 1 || parsed.Charts.SubjectData[0].AvgScore != 85 {
		t.Errorf("unexpected subject data: %+v", parsed.Charts.SubjectData)
	}
}

func TestExportMarkdown(t *testing.T) {
	db := setupTestDB(t)
	populate(t, db)

	md, err := ExportMarkdown(context.Background(), db)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	for _, want := range []string{"## Performance", "| Jan | 75.0 | 92.0 | 68.0 |", "| Biology | 32 | 85.0 | #8b5cf6 |", "| Science | 5 | #8b5cf6 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestMigrateData(t *testing.T) {
	src := setupTestDB(t)
	populate(t, src)
	dst := setupTestDB(t)
	ctx := context.Background()

	summary, err := MigrateData(ctx, src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Performance != 1 || summary.Subjects != 1 || summary.Distribution != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Total() != 3 {
		t.Errorf("Total() = %d, want 3", summary.Total())
	}

	for _, table := range models.AllTables {
		n, err := dst.Count(ctx, table)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if n != 1 {
			t.Errorf("%s count = %d, want 1", table, n)
		}
	}
}
