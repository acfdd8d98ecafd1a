// pkg/event/event.go
package event

import (
	"sync"

	"github.com/excaliburjs/excalibur-dist-sub002/pkg/physics"
)

// Type represents the type of event
type Type string

// Collision lifecycle event types
const (
	PreCollision   Type = "precollision"
	PostCollision  Type = "postcollision"
	CollisionStart Type = "collisionstart"
	CollisionEnd   Type = "collisionend"
	OutOfBounds    Type = "outofbounds"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it; calling Cancel
// more than once is harmless.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Every collider owns one; the
// world owns another for pipeline-wide notifications.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			if len(b.handlers[eventType]) == 0 {
				delete(b.handlers, eventType)
			}
			return
		}
	}
}

// HasSubscribers reports whether anything listens for eventType
func (b *Bus) HasSubscribers(eventType Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// Publish sends an event to all subscribed handlers, synchronously and in
// subscription order. Handlers may subscribe or cancel while being called.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	snapshot := make([]subscriber, len(subs))
	copy(snapshot, subs)
	b.mu.RUnlock()

	for _, s := range snapshot {
		s.handler(event)
	}
}

// CollisionEvent is the payload of every collision lifecycle event. Source is the
// collider receiving the event and Other the collider it touched.
type CollisionEvent struct {
	BaseEvent
	Other        interface{}
	Side         physics.Side
	Intersection physics.Vector2D
	PairID       string
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(eventType Type, source, other interface{}, side physics.Side, intersection physics.Vector2D, pairID string) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Other:        other,
		Side:         side,
		Intersection: intersection,
		PairID:       pairID,
	}
}

// BoundsEvent reports a body dropped from tracking because it left the world
type BoundsEvent struct {
	BaseEvent
	Bounds physics.BoundingBox
}

// NewBoundsEvent creates a new out-of-bounds event
func NewBoundsEvent(source interface{}, bounds physics.BoundingBox) *BoundsEvent {
	return &BoundsEvent{
		BaseEvent: BaseEvent{
			EventType: OutOfBounds,
			Source:    source,
		},
		Bounds: bounds,
	}
}
