// ABOUTME: In-process pub/sub hub with one channel per subscription.
// ABOUTME: Each subscription delivers events on its own goroutine.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/classdash/internal/models"
)

// ErrClosed is returned when subscribing to a closed hub.
var ErrClosed = errors.New("realtime: hub closed")

const subscriptionBuffer = 64

// Hub fans change events out to table subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[models.Table]map[uuid.UUID]*Subscription
	closed bool
	log    *log.Logger
}

// Subscription is an open notification channel for one table.
type Subscription struct {
	ID    uuid.UUID
	Name  string
	Table models.Table

	hub     *Hub
	handler Handler
	events  chan Event
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewHub creates an empty hub. A nil logger falls back to log.Default().
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subs: make(map[models.Table]map[uuid.UUID]*Subscription),
		log:  logger,
	}
}

// Subscribe opens a channel that invokes handler for every event on table.
// The handler must not call Unsubscribe on its own subscription.
func (h *Hub) Subscribe(name string, table models.Table, handler Handler) (*Subscription, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("subscribe %s: unknown table %q", name, table)
	}
	if handler == nil {
		return nil, fmt.Errorf("subscribe %s: nil handler", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	sub := &Subscription{
		ID:      uuid.New(),
		Name:    name,
		Table:   table,
		hub:     h,
		handler: handler,
		events:  make(chan Event, subscriptionBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[uuid.UUID]*Subscription)
	}
	h.subs[table][sub.ID] = sub
	go sub.run()

	h.log.Debug("channel subscribed", "channel", name, "table", table, "id", sub.ID)
	return sub, nil
}

// Publish delivers ev to every subscriber of ev.Table. It blocks while a
// subscriber's buffer is full unless ctx is done or the subscriber leaves.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	if !ev.HasID() {
		fresh := NewEvent(ev.Table, ev.Op, ev.RecordID)
		ev.ID, ev.At = fresh.ID, fresh.At
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrClosed
	}
	targets := make([]*Subscription, 0, len(h.subs[ev.Table]))
	for _, sub := range h.subs[ev.Table] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.events <- ev:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribers returns the number of open channels on table.
func (h *Hub) Subscribers(table models.Table) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Close unsubscribes every channel. Later Subscribe and Publish calls fail.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	var all []*Subscription
	for _, subs := range h.subs {
		for _, sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Unsubscribe()
	}
	return nil
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[sub.Table], sub.ID)
}

// Unsubscribe closes the channel and waits for an in-progress handler
// call to return. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.done)
		<-s.stopped
		s.hub.log.Debug("channel unsubscribed", "channel", s.Name, "table", s.Table, "id", s.ID)
	})
}

func (s *Subscription) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			select {
			case <-s.done:
				return
			default:
			}
			s.handler(ev)
		}
	}
}
