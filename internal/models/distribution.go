// ABOUTME: DistributionRecord model for class distribution by category.
// ABOUTME: Each record is one pie slice with a count and a color.
package models

import (
	"fmt"
	"strings"
	"time"
)

// DistributionRecord counts classes in one category.
type DistributionRecord struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Value     Number    `json:"value" yaml:"value"`
	Color     string    `json:"color" yaml:"color"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewDistributionRecord creates a record stamped with the current time.
func NewDistributionRecord(name string, value int, color string) *DistributionRecord {
	if color == "" {
		color = DefaultColor
	}
	return &DistributionRecord{
		Name:      name,
		Value:     Number(value),
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (r *DistributionRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	if err := checkFinite(field{"value", r.Value}); err != nil {
		return err
	}
	if r.Value < 0 {
		return fmt.Errorf("%w: value cannot be negative", ErrInvalid)
	}
	return nil
}
