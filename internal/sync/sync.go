// ABOUTME: Syncer keeps an in-memory dashboard snapshot current.
// ABOUTME: Subscribes to per-table change channels and refetches everything on any change.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/classdash/internal/models"
	"github.com/harperreed/classdash/internal/realtime"
	"github.com/harperreed/classdash/internal/seed"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Refresh after Close.
var ErrClosed = errors.New("syncer closed")

// ErrStarted is returned by a second call to Start.
var ErrStarted = errors.New("syncer already started")

// Channel names, one per table.
var channelNames = map[models.Table]string{
	models.TablePerformance:  "performance-changes",
	models.TableSubjects:     "subject-changes",
	models.TableDistribution: "distribution-changes",
}

// ChannelName returns the subscription name used for table.
func ChannelName(table models.Table) string {
	return channelNames[table]
}

// Source is what the Syncer reads from, seeds into, and listens to.
type Source interface {
	seed.Store
	ListPerformance(ctx context.Context) ([]*models.PerformanceRecord, error)
	ListSubjects(ctx context.Context) ([]*models.SubjectRecord, error)
	ListDistribution(ctx context.Context) ([]*models.DistributionRecord, error)
	Changes() realtime.Broker
}

// FetchError reports which table could not be read.
type FetchError struct {
	Table models.Table
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Table.Label(), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// State is a point-in-time copy of the dashboard.
type State struct {
	Performance  []*models.PerformanceRecord  `json:"performance_data"`
	Subjects     []*models.SubjectRecord      `json:"subject_data"`
	Distribution []*models.DistributionRecord `json:"class_distribution"`
	Loading      bool                         `json:"loading"`
	Err          error                        `json:"-"`
}

// ChartData reshapes the state into chart series.
func (s State) ChartData() models.ChartData {
	return models.NewChartData(s.Performance, s.Subjects, s.Distribution)
}

func (s State) clone() State {
	out := s
	out.Performance = append([]*models.PerformanceRecord(nil), s.Performance...)
	out.Subjects = append([]*models.SubjectRecord(nil), s.Subjects...)
	out.Distribution = append([]*models.DistributionRecord(nil), s.Distribution...)
	return out
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSeeder replaces seed.Seed. A nil seeder disables seeding.
func WithSeeder(fn seed.Func) Option {
	return func(s *Syncer) { s.seed = fn }
}

// WithOnRefresh registers a callback run after every refresh completes.
func WithOnRefresh(fn func(State)) Option {
	return func(s *Syncer) { s.onRefresh = fn }
}

// Syncer holds the dashboard snapshot for one Source.
type Syncer struct {
	src       Source
	seed      seed.Func
	log       *log.Logger
	onRefresh func(State)

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup

	mu       gosync.Mutex
	state    State
	inflight int
	closed   bool
	started  bool
	subs     []*realtime.Subscription
	watchers map[int]chan State
	nextID   int
}

// New creates a Syncer. Call Start to subscribe and load.
func New(src Source, opts ...Option) *Syncer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Syncer{
		src:      src,
		seed:     seed.Seed,
		log:      log.Default(),
		ctx:      ctx,
		cancel:   cancel,
		watchers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens one change channel per table, then runs the initial refresh.
// Only a failed subscription is returned; refresh failures land in State.Err.
// A Syncer starts at most once.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.started:
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.mu.Unlock()

	broker := s.src.Changes()
	subs := make([]*realtime.Subscription, 0, len(models.AllTables))
	for _, table := range models.AllTables {
		sub, err := broker.Subscribe(ChannelName(table), table, s.handle)
		if err != nil {
			for _, open := range subs {
				open.Unsubscribe()
			}
			s.mu.Lock()
			s.started = false
			s.mu.Unlock()
			return fmt.Errorf("subscribe %s: %w", ChannelName(table), err)
		}
		subs = append(subs, sub)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		return ErrClosed
	}
	s.subs = subs
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrClosed) {
		s.log.Warn("initial dashboard load failed", "err", err)
	}
	return nil
}

// handle launches a full refresh for any change on any table.
// Refreshes are neither deduplicated nor cancelled; the last to finish wins.
func (s *Syncer) handle(ev realtime.Event) {
	s.log.Debug("change received", "table", ev.Table, "op", ev.Op, "id", ev.RecordID)
	go func() {
		_ = s.Refresh(s.ctx)
	}()
}

// Refresh seeds if the performance table is empty and refetches all three
// tables. On failure the previous data is kept and the error is recorded.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.wg.Add(1)
	s.inflight++
	s.state.Loading = true
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	next, err := s.load(ctx)
	if err != nil {
		s.log.Error("dashboard refresh failed", "err", err)
	}

	s.mu.Lock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	if err != nil {
		s.state.Err = err
	} else {
		s.state.Performance = next.Performance
		s.state.Subjects = next.Subjects
		s.state.Distribution = next.Distribution
		s.state.Err = nil
	}
	snap := s.state.clone()
	s.broadcastLocked(snap)
	s.mu.Unlock()

	if s.onRefresh != nil {
		s.onRefresh(snap)
	}
	return err
}

func (s *Syncer) load(ctx context.Context) (State, error) {
	if s.seed != nil {
		n, err := s.src.Count(ctx, models.TablePerformance)
		if err != nil {
			return State{}, &FetchError{Table: models.TablePerformance, Err: err}
		}
		if n == 0 {
			res, err := s.seed(ctx, s.src)
			if err != nil {
				return State{}, err
			}
			s.log.Info(res.Message)
		}
	}

	var next State
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.src.ListPerformance(gctx)
		if err != nil {
			return &FetchError{Table: models.TablePerformance, Err: err}
		}
		next.Performance = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.src.ListSubjects(gctx)
		if err != nil {
			return &FetchError{Table: models.TableSubjects, Err: err}
		}
		next.Subjects = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.src.ListDistribution(gctx)
		if err != nil {
			return &FetchError{Table: models.TableDistribution, Err: err}
		}
		next.Distribution = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return State{}, err
	}
	return next, nil
}

// State returns a copy of the current snapshot.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// ChartData returns the current snapshot as chart series.
func (s *Syncer) ChartData() models.ChartData {
	return s.State().ChartData()
}

// Watch returns a channel that receives the snapshot after every refresh.
// Slow readers only see the latest snapshot. The channel closes on cancel
// or Close.
func (s *Syncer) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch

	var once gosync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
		})
	}
}

func (s *Syncer) broadcastLocked(snap State) {
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Close unsubscribes every channel, cancels pending refreshes, and waits
// for in-flight refreshes. No backend reads happen after Close returns.
func (s *Syncer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()
	return nil
}

// Load runs a single refresh without subscribing and returns the result.
func Load(ctx context.Context, src Source, opts ...Option) (State, error) {
	s := New(src, opts...)
	defer s.Close()
	err := s.Refresh(ctx)
	return s.State(), err
}
