package feed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivelo/pkg/event"
	"festivelo/pkg/models"
)

type captureHub struct {
	events []event.Event
}

func (c *captureHub) Broadcast(evt event.Event) {
	c.events = append(c.events, evt)
}

type stubLookup struct {
	trip models.Trip
	err  error

	calls []string
}

func (s *stubLookup) GetByID(id string) (models.Trip, error) {
	s.calls = append(s.calls, id)
	return s.trip, s.err
}

func TestHandleChangeMapsStoreOpsToClientTypes(t *testing.T) {
	cases := []struct {
		op   string
		want string
	}{
		{event.OpInsert, event.TypeCreate},
		{event.OpUpdate, event.TypeUpdate},
		{event.OpDelete, event.TypeDelete},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			h := &captureHub{}
			a := New(nil, h, &stubLookup{})

			a.handleChange(event.Event{
				Type:       tc.op,
				DocumentID: "trip-1",
				Data:       []byte(`{"name":"Porto"}`),
			})

			require.Len(t, h.events, 1)
			assert.Equal(t, tc.want, h.events[0].Type)
			assert.Equal(t, "trip-1", h.events[0].DocumentID)
		})
	}
}

func TestHandleChangeLooksUpMissingSnapshot(t *testing.T) {
	h := &captureHub{}
	lookup := &stubLookup{trip: models.Trip{ID: "trip-1", Name: "Porto"}}
	a := New(nil, h, lookup)

	a.handleChange(event.Event{Type: event.OpUpdate, DocumentID: "trip-1"})

	require.Equal(t, []string{"trip-1"}, lookup.calls)
	require.Len(t, h.events, 1)

	trip, err := event.ParseData[models.Trip](h.events[0])
	require.NoError(t, err)
	assert.Equal(t, "Porto", trip.Name)
}

func TestHandleChangeDeleteNeedsNoSnapshot(t *testing.T) {
	h := &captureHub{}
	lookup := &stubLookup{err: errors.New("should not be called")}
	a := New(nil, h, lookup)

	a.handleChange(event.Event{Type: event.OpDelete, DocumentID: "trip-2"})

	assert.Empty(t, lookup.calls)
	require.Len(t, h.events, 1)
	assert.Equal(t, event.TypeDelete, h.events[0].Type)
	assert.Empty(t, h.events[0].Data)
}

func TestHandleChangeDropsEventWhenLookupFails(t *testing.T) {
	h := &captureHub{}
	a := New(nil, h, &stubLookup{err: errors.New("gone")})

	a.handleChange(event.Event{Type: event.OpInsert, DocumentID: "trip-3"})

	assert.Empty(t, h.events)
}

func TestHandleChangeIgnoresUnknownOps(t *testing.T) {
	h := &captureHub{}
	a := New(nil, h, &stubLookup{})

	a.handleChange(event.Event{Type: "replace", DocumentID: "trip-4"})

	assert.Empty(t, h.events)
}
