// ABOUTME: Tests for the realtime hub and notification decoding.
// ABOUTME: Covers fan-out per table, unsubscribe, and close semantics.
package realtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harperreed/classdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToTableSubscribers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	perfEvents := make(chan Event, 4)
	var subjectCalls atomic.Int32

	_, err := hub.Subscribe("performance-changes", models.TablePerformance, func(ev Event) { perfEvents <- ev })
	require.NoError(t, err)
	_, err = hub.Subscribe("subject-changes", models.TableSubjects, func(Event) { subjectCalls.Add(1) })
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, NewEvent(models.TablePerformance, OpInsert, 7)))

	select {
	case ev := <-perfEvents:
		assert.Equal(t, models.TablePerformance, ev.Table)
		assert.Equal(t, OpInsert, ev.Op)
		assert.Equal(t, int64(7), ev.RecordID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	assert.Equal(t, int32(0), subjectCalls.Load())
}

func TestHubPublishFillsEventID(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	got := make(chan Event, 1)
	_, err := hub.Subscribe("distribution-changes", models.TableDistribution, func(ev Event) { got <- ev })
	require.NoError(t, err)

	require.NoError(t, hub.Publish(context.Background(), Event{Table: models.TableDistribution, Op: OpDelete}))

	select {
	case ev := <-got:
		assert.True(t, ev.HasID())
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	var calls atomic.Int32
	sub, err := hub.Subscribe("performance-changes", models.TablePerformance, func(Event) { calls.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers(models.TablePerformance))

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, hub.Subscribers(models.TablePerformance))

	require.NoError(t, hub.Publish(context.Background(), NewEvent(models.TablePerformance, OpInsert, 1)))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubscribeValidation(t *testing.T) {
	hub := NewHub(nil)

	_, err := hub.Subscribe("bad", models.Table("users"), func(Event) {})
	assert.Error(t, err)

	_, err = hub.Subscribe("nil-handler", models.TableSubjects, nil)
	assert.Error(t, err)

	require.NoError(t, hub.Close())
	_, err = hub.Subscribe("late", models.TableSubjects, func(Event) {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, hub.Publish(context.Background(), NewEvent(models.TableSubjects, OpInsert, 1)), ErrClosed)
}

func TestDecodeNotification(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Event
		wantErr bool
	}{
		{
			name:    "insert",
			payload: `{"table":"performance_data","op":"INSERT","id":3}`,
			want:    Event{Table: models.TablePerformance, Op: OpInsert, RecordID: 3},
		},
		{
			name:    "lowercase op",
			payload: `{"table":"class_distribution","op":"delete","id":9}`,
			want:    Event{Table: models.TableDistribution, Op: OpDelete, RecordID: 9},
		},
		{
			name:    "unknown table",
			payload: `{"table":"users","op":"INSERT","id":1}`,
			wantErr: true,
		},
		{
			name:    "unknown op",
			payload: `{"table":"subject_data","op":"TRUNCATE"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `performance_data`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeNotification(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Table, got.Table)
			assert.Equal(t, tt.want.Op, got.Op)
			assert.Equal(t, tt.want.RecordID, got.RecordID)
			assert.True(t, got.HasID())
		})
	}
}

func TestEventHasID(t *testing.T) {
	assert.False(t, Event{Table: models.TablePerformance, Op: OpInsert}.HasID())
	assert.True(t, NewEvent(models.TablePerformance, OpInsert, 1).HasID())
}
