// ABOUTME: Tests for dashboard record models, tables, and chart reshaping.
// ABOUTME: Validates constructors, table aliases, and chart field renames.
package models

import (
	"errors"
	"math"
	"testing"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		input   string
		want    Table
		wantErr bool
	}{
		{"performance", TablePerformance, false},
		{"PERF", TablePerformance, false},
		{"subjects", TableSubjects, false},
		{"subject_data", TableSubjects, false},
		{"dist", TableDistribution, false},
		{"class_distribution", TableDistribution, false},
		{"grades", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTable(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTable(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTable(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTable(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestTableValid(t *testing.T) {
	for _, table := range AllTables {
		if !table.Valid() {
			t.Errorf("%s should be valid", table)
		}
	}
	if Table("users").Valid() {
		t.Error("users should not be valid")
	}
}

func TestNewRecordsDefaultColor(t *testing.T) {
	s := NewSubjectRecord("Physics", 24, 82, "")
	if s.Color != DefaultColor {
		t.Errorf("Color = %s, want %s", s.Color, DefaultColor)
	}
	d := NewDistributionRecord("Math", 4, "#06b6d4")
	if d.Color != "#06b6d4" {
		t.Errorf("Color = %s, want #06b6d4", d.Color)
	}
	if s.CreatedAt.IsZero() || d.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestValidate(t *testing.T) {
	if err := NewPerformanceRecord("", 1, 2, 3).Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty month, got %v", err)
	}
	if err := NewSubjectRecord("Biology", -1, 80, "").Validate(); err == nil {
		t.Error("expected error for negative students")
	}
	if err := NewDistributionRecord(" ", 2, "").Validate(); err == nil {
		t.Error("expected error for blank category")
	}
	if err := NewPerformanceRecord("Jul", 80, 90, 70).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	inf, nan := math.Inf(1), math.NaN()

	tests := []struct {
		name string
		rec  interface{ Validate() error }
	}{
		{"infinite score", NewPerformanceRecord("Jul", inf, 90, 70)},
		{"nan attendance", NewPerformanceRecord("Jul", 80, nan, 70)},
		{"negative infinite participation", NewPerformanceRecord("Jul", 80, 90, math.Inf(-1))},
		{"nan average score", NewSubjectRecord("Biology", 32, nan, "")},
		{"infinite students", &SubjectRecord{Name: "Biology", Students: Number(inf)}},
		{"nan students", &SubjectRecord{Name: "Biology", Students: Number(nan)}},
		{"infinite value", &DistributionRecord{Name: "Science", Value: Number(inf)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if !errors.Is(err, ErrNotFinite) {
				t.Errorf("expected ErrNotFinite, got %v", err)
			}
		})
	}
}

func TestNewChartData(t *testing.T) {
	perf := []*PerformanceRecord{NewPerformanceRecord("Jan", 75, 92, 68)}
	subjects := []*SubjectRecord{{Name: "Biology", Students: Number(32), AvgScore: Number(85), Color: "#8b5cf6"}}
	dist := []*DistributionRecord{{Name: "Science", Value: Number(5), Color: "#8b5cf6"}}

	chart := NewChartData(perf, subjects, dist)

	if len(chart.PerformanceData) != 1 || chart.PerformanceData[0].Month != "Jan" {
		t.Fatalf("unexpected performance data: %+v", chart.PerformanceData)
	}
	if chart.PerformanceData[0].Participation != 68 {
		t.Errorf("Participation = %v, want 68", chart.PerformanceData[0].Participation)
	}
	if chart.SubjectData[0].AvgScore != 85 || chart.SubjectData[0].Students != 32 {
		t.Errorf("unexpected subject bar: %+v", chart.SubjectData[0])
	}
	if chart.ClassDistributionData[0].Value != 5 {
		t.Errorf("Value = %d, want 5", chart.ClassDistributionData[0].Value)
	}
}

func TestNewChartDataEmpty(t *testing.T) {
	chart := NewChartData(nil, nil, nil)
	if chart.PerformanceData == nil || chart.SubjectData == nil || chart.ClassDistributionData == nil {
		t.Error("expected non-nil empty slices")
	}
}

func TestChartDataSummary(t *testing.T) {
	chart := NewChartData(
		[]*PerformanceRecord{
			NewPerformanceRecord("Jan", 75, 90, 68),
			NewPerformanceRecord("Feb", 82, 94, 75),
		},
		[]*SubjectRecord{
			NewSubjectRecord("Biology", 32, 85, ""),
			NewSubjectRecord("Physics", 24, 75, ""),
		},
		[]*DistributionRecord{
			NewDistributionRecord("Science", 5, ""),
			NewDistributionRecord("Math", 4, ""),
		},
	)

	s := chart.Summary()
	if s.Months != 2 || s.Subjects != 2 || s.Categories != 2 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.LatestMonth != "Feb" || s.LatestScore != 82 {
		t.Errorf("latest = %s/%v, want Feb/82", s.LatestMonth, s.LatestScore)
	}
	if s.AvgAttendance != 92 {
		t.Errorf("AvgAttendance = %v, want 92", s.AvgAttendance)
	}
	if s.AvgSubjectScore != 80 || s.TotalStudents != 56 {
		t.Errorf("subject summary = %v/%d", s.AvgSubjectScore, s.TotalStudents)
	}
	if s.TotalClasses != 9 {
		t.Errorf("TotalClasses = %d, want 9", s.TotalClasses)
	}
}

func TestEmptySummary(t *testing.T) {
	s := NewChartData(nil, nil, nil).Summary()
	if s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
