package sim

// VTimeInSec is virtual time, in seconds since the start of the simulation.
type VTimeInSec float64

// Nanoseconds converts the virtual time to whole nanoseconds, rounding to
// the nearest value. Negative times convert to 0.
func (t VTimeInSec) Nanoseconds() uint64 {
	if t <= 0 {
		return 0
	}

	return uint64(float64(t)*1e9 + 0.5)
}

// VTimeFromNanoseconds converts a number of nanoseconds to virtual time.
func VTimeFromNanoseconds(ns uint64) VTimeInSec {
	return VTimeInSec(float64(ns) / 1e9)
}

// An Event is something that happens to a Handler at a virtual time.
type Event interface {
	Time() VTimeInSec
	Handler() Handler

	// IsSecondary tells if the event runs after all the primary events of
	// the same time.
	IsSecondary() bool
}

// A Handler reacts to the events scheduled for it. An event may only change
// the state of its own handler.
type Handler interface {
	Handle(e Event) error
}

// EventBase implements Event. Concrete events embed it and add what their
// handler needs.
type EventBase struct {
	ID string

	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a primary event.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// NewSecondaryEventBase creates a secondary event.
func NewSecondaryEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true

	return e
}

func (e EventBase) Time() VTimeInSec {
	return e.time
}

func (e EventBase) Handler() Handler {
	return e.handler
}

func (e EventBase) IsSecondary() bool {
	return e.secondary
}
