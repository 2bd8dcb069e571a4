// ABOUTME: Tests for the default-data seeder.
// ABOUTME: Uses an in-memory store to count inserts and inject failures.
package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/classdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	perf    []*models.PerformanceRecord
	subj    []*models.SubjectRecord
	dist    []*models.DistributionRecord
	failOn  models.Table
	countFn func() (int, error)
}

func (m *memStore) Count(_ context.Context, table models.Table) (int, error) {
	if m.countFn != nil {
		return m.countFn()
	}
	switch table {
	case models.TablePerformance:
		return len(m.perf), nil
	case models.TableSubjects:
		return len(m.subj), nil
	default:
		return len(m.dist), nil
	}
}

func (m *memStore) CreatePerformance(_ context.Context, r *models.PerformanceRecord) error {
	if m.failOn == models.TablePerformance {
		return errors.New("boom")
	}
	m.perf = append(m.perf, r)
	return nil
}

func (m *memStore) CreateSubject(_ context.Context, r *models.SubjectRecord) error {
	if m.failOn == models.TableSubjects {
		return errors.New("boom")
	}
	m.subj = append(m.subj, r)
	return nil
}

func (m *memStore) CreateDistribution(_ context.Context, r *models.DistributionRecord) error {
	if m.failOn == models.TableDistribution {
		return errors.New("boom")
	}
	m.dist = append(m.dist, r)
	return nil
}

func TestSeedEmptyStore(t *testing.T) {
	s := &memStore{}

	res, err := Seed(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	assert.Equal(t, MessageSeeded, res.Message)

	require.Len(t, s.perf, 6)
	require.Len(t, s.subj, 4)
	require.Len(t, s.dist, 4)

	assert.Equal(t, "Jan", s.perf[0].Month)
	assert.Equal(t, models.Number(92), s.perf[5].Score)
	assert.Equal(t, "Mathematics", s.subj[3].Name)
	assert.Equal(t, models.Number(76), s.subj[3].AvgScore)
	assert.Equal(t, "#f97316", s.dist[2].Color)
	assert.Equal(t, models.Number(2), s.dist[3].Value)
}

func TestSeedSkipsWhenPerformanceExists(t *testing.T) {
	s := &memStore{perf: []*models.PerformanceRecord{models.NewPerformanceRecord("Jan", 1, 1, 1)}}

	res, err := Seed(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Seeded)
	assert.Equal(t, MessageSkipped, res.Message)
	assert.Empty(t, s.subj)
	assert.Empty(t, s.dist)
}

func TestSeedIgnoresOtherTables(t *testing.T) {
	// Subjects present but performance empty still seeds everything.
	s := &memStore{subj: []*models.SubjectRecord{models.NewSubjectRecord("Art", 1, 1, "")}}

	res, err := Seed(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Seeded)
	assert.Len(t, s.subj, 5)
}

func TestSeedPartialFailure(t *testing.T) {
	s := &memStore{failOn: models.TableSubjects}

	_, err := Seed(context.Background(), s)
	require.Error(t, err)

	var seedErr *Error
	require.ErrorAs(t, err, &seedErr)
	assert.Equal(t, models.TableSubjects, seedErr.Table)
	assert.Contains(t, err.Error(), "subject data")

	// No transaction: performance rows remain.
	assert.Len(t, s.perf, 6)
	assert.Empty(t, s.dist)
}

func TestSeedCountError(t *testing.T) {
	s := &memStore{countFn: func() (int, error) { return 0, errors.New("offline") }}

	_, err := Seed(context.Background(), s)
	require.Error(t, err)
	assert.Empty(t, s.perf)
}

func TestDefaultsAreFreshCopies(t *testing.T) {
	a := DefaultSubjects()
	a[0].Name = "changed"
	b := DefaultSubjects()
	assert.Equal(t, "Biology", b[0].Name)
}
