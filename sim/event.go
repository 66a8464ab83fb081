package sim

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the time that the event should happen
	Time() VTimeInSec

	// Handler returns the handler that should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are handled after all same-time primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// CallbackEvent runs a function when it is handled.
type CallbackEvent struct {
	EventBase
	fn func(now VTimeInSec)
}

// NewCallbackEvent creates an event that calls fn at time t.
func NewCallbackEvent(t VTimeInSec, fn func(now VTimeInSec)) *CallbackEvent {
	e := &CallbackEvent{fn: fn}
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = e

	return e
}

// Handle calls the function.
func (e *CallbackEvent) Handle(evt Event) error {
	e.fn(evt.Time())
	return nil
}
