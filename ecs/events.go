package ecs

// EventKind identifies an event type.
type EventKind string

const (
	EventJumped         EventKind = "jumped"
	EventLanded         EventKind = "landed"
	EventFalling        EventKind = "falling"
	EventTriggerEnter   EventKind = "trigger_enter"
	EventTriggerExit    EventKind = "trigger_exit"
	EventConfigReloaded EventKind = "config_reloaded"
)

// Event is an ECS event payload.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
