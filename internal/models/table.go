// ABOUTME: Table identifiers for the three dashboard collections.
// ABOUTME: Maps CLI/API aliases onto canonical table names.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks a record that fails validation.
var ErrInvalid = errors.New("invalid record")

// Table names a dashboard collection.
type Table string

const (
	TablePerformance  Table = "performance_data"
	TableSubjects     Table = "subject_data"
	TableDistribution Table = "class_distribution"
)

// AllTables lists the collections in seed and fetch order.
var AllTables = []Table{TablePerformance, TableSubjects, TableDistribution}

var tableAliases = map[string]Table{
	"performance":        TablePerformance,
	"perf":               TablePerformance,
	"performance_data":   TablePerformance,
	"subject":            TableSubjects,
	"subjects":           TableSubjects,
	"subject_data":       TableSubjects,
	"distribution":       TableDistribution,
	"dist":               TableDistribution,
	"class_distribution": TableDistribution,
}

// ParseTable resolves a table name or alias.
func ParseTable(s string) (Table, error) {
	t, ok := tableAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown table: %s (use performance, subjects, or distribution)", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known tables.
func (t Table) Valid() bool {
	for _, known := range AllTables {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns a human-readable name for the table.
func (t Table) Label() string {
	switch t {
	case TablePerformance:
		return "performance data"
	case TableSubjects:
		return "subject data"
	case TableDistribution:
		return "class distribution data"
	default:
		return string(t)
	}
}

type field struct {
	name  string
	value Number
}

// checkFinite rejects NaN and infinite numeric fields as invalid records.
func checkFinite(fields ...field) error {
	for _, f := range fields {
		if !f.value.IsFinite() {
			return fmt.Errorf("%w: %s %w", ErrInvalid, f.name, ErrNotFinite)
		}
	}
	return nil
}
