package event

import "encoding/json"

// TripChanges is the redis channel carrying the trip store's committed
// mutation feed, in commit order.
const TripChanges = "trips:changes"

// Store-side operation types, as published by the trip repository.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Client-facing change types.
const (
	TypeCreate      = "create"
	TypeUpdate      = "update"
	TypeDelete      = "delete"
	TypeAddPlace    = "addPlace"
	TypeRemovePlace = "removePlace"
	TypeTripsUpdate = "tripsUpdate"
)

// Event is the change notification exchanged on the realtime channel and on
// the store's mutation feed. Data holds the full post-mutation document
// snapshot, never a diff; delete events carry no data.
type Event struct {
	Type       string          `json:"type"`
	DocumentID string          `json:"documentId,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func New(eventType, documentID string, data interface{}) (Event, error) {
	e := Event{Type: eventType, DocumentID: documentID}
	if data == nil {
		return e, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return e, err
	}
	e.Data = raw
	return e, nil
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// ParseData decodes the event payload into T.
func ParseData[T any](e Event) (T, error) {
	var v T
	err := json.Unmarshal(e.Data, &v)
	return v, err
}

// Mutation reports whether t is one of the client-originated mutation types
// the hub re-broadcasts to peers.
func Mutation(t string) bool {
	switch t {
	case TypeCreate, TypeUpdate, TypeDelete, TypeAddPlace, TypeRemovePlace, TypeTripsUpdate:
		return true
	}
	return false
}
