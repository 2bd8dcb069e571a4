// ABOUTME: SubjectRecord model for per-subject enrollment and scores.
// ABOUTME: Carries a display color used by dashboard charts.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultColor is used when a record is created without a color.
const DefaultColor = "#8b5cf6"

// SubjectRecord summarizes one subject.
type SubjectRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Students  Number    `json:"students" yaml:"students"`
	AvgScore  Number    `json:"avg_score" yaml:"avg_score"`
	Color     string    `json:"color" yaml:"color"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewSubjectRecord creates a record stamped with the current time.
func NewSubjectRecord(name string, students int, avgScore float64, color string) *SubjectRecord {
	if color == "" {
		color = DefaultColor
	}
	return &SubjectRecord{
		Name:      name,
		Students:  Number(students),
		AvgScore:  Number(avgScore),
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (r *SubjectRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: subject name is required", ErrInvalid)
	}
	if err := checkFinite(field{"students", r.Students}, field{"average score", r.AvgScore}); err != nil {
		return err
	}
	if r.Students < 0 {
		return fmt.Errorf("%w: student count cannot be negative", ErrInvalid)
	}
	return nil
}
