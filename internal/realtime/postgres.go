// ABOUTME: Postgres LISTEN/NOTIFY bridge into the realtime hub.
// ABOUTME: Decodes trigger payloads and republishes them as events.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/classdash/internal/models"
	"github.com/lib/pq"
)

// NotifyChannel is the Postgres channel the table triggers notify on.
const NotifyChannel = "classdash_changes"

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PGListener forwards Postgres notifications to a Publisher.
type PGListener struct {
	listener *pq.Listener
	pub      Publisher
	log      *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

type notifyPayload struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    int64  `json:"id"`
}

// ListenPostgres opens a dedicated listener connection on NotifyChannel.
func ListenPostgres(dsn string, pub Publisher, logger *log.Logger) (*PGListener, error) {
	if logger == nil {
		logger = log.Default()
	}

	l := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Error("postgres listener", "event", ev, "err", err)
		}
	})
	if err := l.Listen(NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &PGListener{
		listener: l,
		pub:      pub,
		log:      logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.run(ctx)
	return p, nil
}

func (p *PGListener) run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-p.listener.Notify:
			if !ok {
				return
			}
			// nil after the connection was re-established; notifications may have been lost.
			if n == nil {
				p.log.Warn("postgres listener reconnected")
				continue
			}
			ev, err := DecodeNotification(n.Extra)
			if err != nil {
				p.log.Error("decode notification", "payload", n.Extra, "err", err)
				continue
			}
			if err := p.pub.Publish(ctx, ev); err != nil {
				p.log.Error("publish notification", "table", ev.Table, "err", err)
			}
		case <-time.After(pingInterval):
			go func() { _ = p.listener.Ping() }()
		}
	}
}

// Close stops forwarding and closes the listener connection.
func (p *PGListener) Close() error {
	p.cancel()
	err := p.listener.Close()
	<-p.done
	return err
}

// DecodeNotification parses a trigger payload such as
// {"table":"subject_data","op":"INSERT","id":7}.
func DecodeNotification(payload string) (Event, error) {
	var np notifyPayload
	if err := json.Unmarshal([]byte(payload), &np); err != nil {
		return Event{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	table := models.Table(np.Table)
	if !table.Valid() {
		return Event{}, fmt.Errorf("unknown table %q", np.Table)
	}

	op := Op(strings.ToUpper(np.Op))
	switch op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return Event{}, fmt.Errorf("unknown op %q", np.Op)
	}

	return NewEvent(table, op, np.ID), nil
}
