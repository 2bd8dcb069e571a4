// ABOUTME: Change events pushed to dashboard subscribers.
// ABOUTME: One event per row-level insert, update, or delete.
package realtime

import (
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/oklog/ulid/v2"
)

// Op is the kind of change an event describes.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
	// OpSync marks a bulk pull from a remote store where individual rows are unknown.
	OpSync Op = "SYNC"
)

// Event is a change notification for one table.
type Event struct {
	ID       ulid.ULID    `json:"id"`
	Table    models.Table `json:"table"`
	Op       Op           `json:"op"`
	RecordID int64        `json:"record_id,omitempty"`
	At       time.Time    `json:"at"`
}

// NewEvent creates an event stamped with a fresh ULID and the current time.
func NewEvent(table models.Table, op Op, recordID int64) Event {
	return Event{
		ID:       ulid.Make(),
		Table:    table,
		Op:       op,
		RecordID: recordID,
		At:       time.Now().UTC(),
	}
}

// HasID reports whether the event carries an assigned ULID.
func (e Event) HasID() bool {
	return e.ID != (ulid.ULID{})
}

// Handler receives events for a subscription.
type Handler func(Event)

// Broker opens per-table notification channels.
type Broker interface {
	Subscribe(name string, table models.Table, handler Handler) (*Subscription, error)
}
