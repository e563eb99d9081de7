// Package feed bridges the trip store's mutation feed to the realtime hub.
package feed

import (
	"encoding/json"
	"log"

	"festivelo/pkg/broker"
	"festivelo/pkg/event"
	"festivelo/pkg/models"
)

// Broadcaster receives the normalized change events. Satisfied by hub.Hub.
type Broadcaster interface {
	Broadcast(evt event.Event)
}

// TripLookup fetches the current document state when a raw feed event does
// not carry a snapshot. Satisfied by repository.TripRepository.
type TripLookup interface {
	GetByID(id string) (models.Trip, error)
}

// Adapter holds the process-lifetime subscription to the trip change feed and
// normalizes each raw store event into a client-facing change event. Events
// are forwarded to every hub client without ownership filtering.
type Adapter struct {
	broker *broker.Broker
	hub    Broadcaster
	trips  TripLookup
}

func New(b *broker.Broker, hub Broadcaster, trips TripLookup) *Adapter {
	return &Adapter{broker: b, hub: hub, trips: trips}
}

// Start subscribes to the trip change channel. The subscription is expected
// to outlive every request; if redis drops it, that is a process-level fault.
func (a *Adapter) Start() {
	a.broker.On("", a.handleChange)
	a.broker.Subscribe(event.TripChanges)
	log.Printf("[FEED] subscribed to %s", event.TripChanges)
}

// handleChange normalizes one raw store event and forwards it. The adapter
// always forwards the full post-mutation document state, never a diff:
// if the raw event lacks a snapshot it looks the document up first.
func (a *Adapter) handleChange(evt event.Event) {
	var eventType string
	switch evt.Type {
	case event.OpInsert:
		eventType = event.TypeCreate
	case event.OpUpdate:
		eventType = event.TypeUpdate
	case event.OpDelete:
		eventType = event.TypeDelete
	default:
		return
	}

	out := event.Event{Type: eventType, DocumentID: evt.DocumentID, Data: evt.Data}

	if len(out.Data) == 0 && eventType != event.TypeDelete {
		t, err := a.trips.GetByID(evt.DocumentID)
		if err != nil {
			log.Printf("[FEED] lookup %s failed: %v", evt.DocumentID, err)
			return
		}
		raw, err := json.Marshal(t)
		if err != nil {
			log.Printf("[FEED] marshal %s failed: %v", evt.DocumentID, err)
			return
		}
		out.Data = raw
	}

	a.hub.Broadcast(out)
}
