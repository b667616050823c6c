package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-reserve/backend/internal/models"
)

func newTestClient(resourceID uuid.UUID) *Client {
	return &Client{ID: uuid.New().String(), ResourceID: resourceID, send: make(chan WSMessage, 4)}
}

type fakeRedis struct {
	published []string
	err       error
	handlers  map[uuid.UUID]func(string, []byte)
	cancelled int
}

func (f *fakeRedis) PublishResourceEvent(resourceID uuid.UUID, event string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	if h, ok := f.handlers[resourceID]; ok {
		h(event, payload)
	}
	return nil
}

func (f *fakeRedis) SubscribeResource(resourceID uuid.UUID, handler func(string, []byte)) (func(), error) {
	if f.handlers == nil {
		f.handlers = map[uuid.UUID]func(string, []byte){}
	}
	f.handlers[resourceID] = handler
	return func() { f.cancelled++ }, nil
}

func TestHub_PublishReachesOnlyThatResource(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	watched, other := uuid.New(), uuid.New()
	a := newTestClient(watched)
	b := newTestClient(other)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 1, hub.WatcherCount(watched))

	r := models.Reservation{ID: uuid.New(), ResourceID: watched, Status: models.StatusConfirmed}
	hub.Publish(context.Background(), models.NewReservationEvent(models.EventReservationCreated, r))

	require.Len(t, a.send, 1)
	msg := <-a.send
	assert.Equal(t, string(models.EventReservationCreated), msg.Event)
	var ev models.ReservationEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, r.ID, ev.ReservationID)
	assert.Empty(t, b.send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	c := newTestClient(uuid.New())
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	_, open := <-c.send
	assert.False(t, open)
	assert.Zero(t, hub.WatcherCount(c.ResourceID))
}

func TestHub_BroadcastSkipsFullBuffers(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	c := newTestClient(uuid.New())
	hub.Register(c)
	for i := 0; i < cap(c.send)+2; i++ {
		hub.Broadcast(c.ResourceID, "tick", map[string]int{"n": i})
	}
	assert.Len(t, c.send, cap(c.send))
}

func TestHub_RedisRoundTrip(t *testing.T) {
	rds := &fakeRedis{}
	hub := NewHub(nil, rds, rds)
	c := newTestClient(uuid.New())
	hub.Register(c)

	r := models.Reservation{ID: uuid.New(), ResourceID: c.ResourceID}
	hub.Publish(context.Background(), models.NewReservationEvent(models.EventReservationCancelled, r))

	assert.Equal(t, []string{string(models.EventReservationCancelled)}, rds.published)
	require.Len(t, c.send, 1)

	hub.Unregister(c)
	assert.Equal(t, 1, rds.cancelled)
}

func TestHub_RedisFailureFallsBackToLocal(t *testing.T) {
	rds := &fakeRedis{err: errors.New("connection refused")}
	hub := NewHub(nil, rds, nil)
	c := newTestClient(uuid.New())
	hub.Register(c)

	hub.Publish(context.Background(), models.NewReservationEvent(models.EventReservationUpdated, models.Reservation{ResourceID: c.ResourceID}))
	assert.Len(t, c.send, 1)
}
