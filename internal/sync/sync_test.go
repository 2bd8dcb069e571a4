// ABOUTME: Tests for the dashboard Syncer.
// ABOUTME: Uses a counting in-memory source wired to a realtime hub.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
	"github.com/harperreed/classdash/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	hub *realtime.Hub

	mu   gosync.Mutex
	perf []*models.PerformanceRecord
	subj []*models.SubjectRecord
	dist []*models.DistributionRecord

	counts      atomic.Int32
	perfLists   atomic.Int32
	subjLists   atomic.Int32
	distLists   atomic.Int32
	failSubject atomic.Bool
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	hub := realtime.NewHub(nil)
	t.Cleanup(func() { _ = hub.Close() })
	return &fakeSource{hub: hub}
}

func (f *fakeSource) Count(_ context.Context, table models.Table) (int, error) {
	f.counts.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	switch table {
	case models.TablePerformance:
		return len(f.perf), nil
	case models.TableSubjects:
		return len(f.subj), nil
	default:
		return len(f.dist), nil
	}
}

func (f *fakeSource) CreatePerformance(_ context.Context, r *models.PerformanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = int64(len(f.perf) + 1)
	f.perf = append(f.perf, r)
	return nil
}

func (f *fakeSource) CreateSubject(_ context.Context, r *models.SubjectRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = int64(len(f.subj) + 1)
	f.subj = append(f.subj, r)
	return nil
}

func (f *fakeSource) CreateDistribution(_ context.Context, r *models.DistributionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = int64(len(f.dist) + 1)
	f.dist = append(f.dist, r)
	return nil
}

func (f *fakeSource) ListPerformance(context.Context) ([]*models.PerformanceRecord, error) {
	f.perfLists.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.PerformanceRecord(nil), f.perf...), nil
}

func (f *fakeSource) ListSubjects(context.Context) ([]*models.SubjectRecord, error) {
	f.subjLists.Add(1)
	if f.failSubject.Load() {
		return nil, errors.New("connection reset")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.SubjectRecord(nil), f.subj...), nil
}

func (f *fakeSource) ListDistribution(context.Context) ([]*models.DistributionRecord, error) {
	f.distLists.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.DistributionRecord(nil), f.dist...), nil
}

func (f *fakeSource) Changes() realtime.Broker { return f.hub }

func (f *fakeSource) lists() [3]int32 {
	return [3]int32{f.perfLists.Load(), f.subjLists.Load(), f.distLists.Load()}
}

func (f *fakeSource) populate() {
	f.perf = seed.DefaultPerformance()
	f.subj = seed.DefaultSubjects()
	f.dist = seed.DefaultDistribution()
}

func TestStartSeedsEmptySource(t *testing.T) {
	src := newFakeSource(t)
	s := New(src)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Start(context.Background()))

	state := s.State()
	require.NoError(t, state.Err)
	assert.False(t, state.Loading)
	assert.Len(t, state.Performance, 6)
	assert.Len(t, state.Subjects, 4)
	assert.Len(t, state.Distribution, 4)

	chart := s.ChartData()
	assert.Equal(t, "Jan", chart.PerformanceData[0].Month)
	assert.Equal(t, 85.0, chart.SubjectData[0].AvgScore)
	assert.Equal(t, 5, chart.ClassDistributionData[0].Value)
}

func TestStartDoesNotReseed(t *testing.T) {
	src := newFakeSource(t)
	src.populate()

	var seeds atomic.Int32
	s := New(src, WithSeeder(func(ctx context.Context, st seed.Store) (*seed.Result, error) {
		seeds.Add(1)
		return seed.Seed(ctx, st)
	}))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Refresh(context.Background()))

	assert.Zero(t, seeds.Load())
	assert.Len(t, s.State().Performance, 6)
}

func TestStartSubscribesThreeChannels(t *testing.T) {
	src := newFakeSource(t)
	src.populate()
	s := New(src)

	require.NoError(t, s.Start(context.Background()))
	for _, table := range models.AllTables {
		assert.Equal(t, 1, src.hub.Subscribers(table), table)
	}

	require.NoError(t, s.Close())
	for _, table := range models.AllTables {
		assert.Zero(t, src.hub.Subscribers(table), table)
	}
}

func TestSecondStartKeepsOneSubscriptionPerTable(t *testing.T) {
	src := newFakeSource(t)
	src.populate()
	s := New(src)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Start(context.Background()))
	err := s.Start(context.Background())
	require.ErrorIs(t, err, ErrStarted)

	for _, table := range models.AllTables {
		assert.Equal(t, 1, src.hub.Subscribers(table), table)
	}
	assert.Equal(t, [3]int32{1, 1, 1}, src.lists())

	require.NoError(t, s.Close())
	for _, table := range models.AllTables {
		assert.Zero(t, src.hub.Subscribers(table), table)
	}
	assert.ErrorIs(t, s.Start(context.Background()), ErrClosed)
}

func TestEventTriggersOneFullRefetch(t *testing.T) {
	src := newFakeSource(t)
	src.populate()
	s := New(src)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, [3]int32{1, 1, 1}, src.lists())

	err := src.hub.Publish(context.Background(), realtime.NewEvent(models.TableSubjects, realtime.OpInsert, 5))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return src.lists() == [3]int32{2, 2, 2}
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, [3]int32{2, 2, 2}, src.lists())
}

func TestRefreshPicksUpNewRows(t *testing.T) {
	src := newFakeSource(t)
	src.populate()

	var refreshes atomic.Int32
	s := New(src, WithOnRefresh(func(State) { refreshes.Add(1) }))
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, src.CreateDistribution(context.Background(), models.NewDistributionRecord("Art", 1, "")))
	require.NoError(t, src.hub.Publish(context.Background(), realtime.NewEvent(models.TableDistribution, realtime.OpInsert, 5)))

	require.Eventually(t, func() bool {
		return len(s.State().Distribution) == 5
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, refreshes.Load(), int32(2))
}

func TestFetchErrorKeepsPreviousData(t *testing.T) {
	src := newFakeSource(t)
	src.populate()
	s := New(src)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Start(context.Background()))

	src.failSubject.Store(true)
	err := s.Refresh(context.Background())
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, models.TableSubjects, fetchErr.Table)

	state := s.State()
	assert.Equal(t, err, state.Err)
	assert.Len(t, state.Subjects, 4)
	assert.False(t, state.Loading)

	src.failSubject.Store(false)
	require.NoError(t, s.Refresh(context.Background()))
	assert.NoError(t, s.State().Err)
}

func TestSeedErrorSurfacesInState(t *testing.T) {
	src := newFakeSource(t)
	boom := errors.New("seed failed")
	s := New(src, WithSeeder(func(context.Context, seed.Store) (*seed.Result, error) {
		return nil, boom
	}))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.State().Err, boom)
	assert.Zero(t, src.perfLists.Load())
}

func TestNoActivityAfterClose(t *testing.T) {
	src := newFakeSource(t)
	src.populate()
	s := New(src)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Close())

	before := src.lists()
	counts := src.counts.Load()

	_ = src.hub.Publish(context.Background(), realtime.NewEvent(models.TablePerformance, realtime.OpInsert, 1))
	assert.ErrorIs(t, s.Refresh(context.Background()), ErrClosed)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, src.lists())
	assert.Equal(t, counts, src.counts.Load())
	assert.NoError(t, s.Close())
}

func TestWatchReceivesSnapshots(t *testing.T) {
	src := newFakeSource(t)
	src.populate()
	s := New(src)

	ch, cancel := s.Watch()
	defer cancel()

	require.NoError(t, s.Start(context.Background()))

	select {
	case st := <-ch:
		assert.Len(t, st.Performance, 6)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	require.NoError(t, s.Close())
	_, open := <-ch
	assert.False(t, open, "watch channel should close with the syncer")
}

func TestChartDataCoercesDecimalText(t *testing.T) {
	var score, students models.Number
	require.NoError(t, score.Scan([]byte("82.50")))
	require.NoError(t, students.Scan("24"))

	state := State{
		Performance: []*models.PerformanceRecord{{Month: "Feb", Score: score}},
		Subjects:    []*models.SubjectRecord{{Name: "Physics", Students: students, AvgScore: score}},
	}

	chart := state.ChartData()
	assert.Equal(t, 82.5, chart.PerformanceData[0].Score)
	assert.Equal(t, 24, chart.SubjectData[0].Students)
	assert.Empty(t, chart.ClassDistributionData)
}

func TestLoad(t *testing.T) {
	src := newFakeSource(t)

	state, err := Load(context.Background(), src, WithSeeder(nil))
	require.NoError(t, err)
	assert.Empty(t, state.Performance)
	for _, table := range models.AllTables {
		assert.Zero(t, src.hub.Subscribers(table))
	}
}
