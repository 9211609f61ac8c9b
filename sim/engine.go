package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events. The returned handle
// can be passed to an EventCanceller to remove the event before it fires.
type EventScheduler interface {
	Schedule(e Event) EventHandle
}

// EventCanceller can remove scheduled events from the queue.
type EventCanceller interface {
	// Cancel removes the event from the queue. It returns false if the
	// event has already been handled or cancelled.
	Cancel(h EventHandle) bool
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler
	EventCanceller

	// Run will process all the events until the simulation finishes
	Run() error

	// RunUntil processes all the events that happen no later than the given
	// time and then advances the clock to that time. Later events stay in
	// the queue.
	RunUntil(t VTimeInSec) error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}

// EventHandle refers to an event that has been scheduled on an engine. The
// zero value refers to no event.
type EventHandle struct {
	entry *queueEntry
}

// IsArmed returns true if the event is still waiting in the queue.
func (h EventHandle) IsArmed() bool {
	return h.entry != nil && h.entry.index >= 0
}

// Time returns the time that the referred event is scheduled at. It returns
// -1 for the zero handle.
func (h EventHandle) Time() VTimeInSec {
	if h.entry == nil {
		return -1
	}

	return h.entry.evt.Time()
}

// Event returns the referred event, or nil for the zero handle.
func (h EventHandle) Event() Event {
	if h.entry == nil {
		return nil
	}

	return h.entry.evt
}
