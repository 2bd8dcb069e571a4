// ABOUTME: PerformanceRecord model for monthly class performance.
// ABOUTME: Holds score, attendance, and participation rates per month.
package models

import (
	"fmt"
	"strings"
	"time"
)

// PerformanceRecord is one month of aggregate class performance.
// One record per month is expected but not enforced.
type PerformanceRecord struct {
	ID            int64     `json:"id" yaml:"id"`
	Month         string    `json:"month" yaml:"month"`
	Score         Number    `json:"score" yaml:"score"`
	Attendance    Number    `json:"attendance" yaml:"attendance"`
	Participation Number    `json:"participation" yaml:"participation"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// NewPerformanceRecord creates a record stamped with the current time.
func NewPerformanceRecord(month string, score, attendance, participation float64) *PerformanceRecord {
	return &PerformanceRecord{
		Month:         month,
		Score:         Number(score),
		Attendance:    Number(attendance),
		Participation: Number(participation),
		CreatedAt:     time.Now().UTC(),
	}
}

// Validate checks required fields.
func (r *PerformanceRecord) Validate() error {
	if strings.TrimSpace(r.Month) == "" {
		return fmt.Errorf("%w: month is required", ErrInvalid)
	}
	return checkFinite(
		field{"score", r.Score},
		field{"attendance", r.Attendance},
		field{"participation", r.Participation},
	)
}
