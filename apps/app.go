// Package apps provides what packet sources and packet sinks share: the
// start and stop lifecycle driven by the engine, and the hooks that observe
// the packets they send and receive.
package apps

import (
	"github.com/sarchlab/trafficsim/sim"
)

// Lifecycle is what an application does when it starts and stops. Both
// methods must be idempotent.
type Lifecycle interface {
	sim.Handler
	Start()
	Stop()
}

// An Application is a traffic endpoint installed on a simulated node.
type Application interface {
	sim.Named
	sim.Hookable
	Lifecycle

	// InvokeHook reports an item to the hooks attached to the application.
	InvokeHook(ctx sim.HookCtx)

	// StartAt schedules Start at the given time, replacing any earlier
	// request.
	StartAt(t sim.VTimeInSec)

	// StopAt schedules Stop at the given time, replacing any earlier
	// request.
	StopAt(t sim.VTimeInSec)

	// Dispose cancels the scheduled start and stop and stops the
	// application.
	Dispose()
}

// StartEvent triggers the start of an application.
type StartEvent struct {
	*sim.EventBase
}

// StopEvent triggers the stop of an application.
type StopEvent struct {
	*sim.EventBase
}

// Base implements the parts of an Application that do not depend on the
// traffic it generates or consumes.
type Base struct {
	sim.HookableBase

	name   string
	engine sim.Engine
	app    Lifecycle

	startHandle sim.EventHandle
	stopHandle  sim.EventHandle
}

// NewBase creates a Base. The start and stop events are delivered to app,
// which is expected to call Start and Stop when handling them.
func NewBase(name string, engine sim.Engine, app Lifecycle) *Base {
	sim.NameMustBeValid(name)

	return &Base{
		name:   name,
		engine: engine,
		app:    app,
	}
}

// Name returns the name of the application.
func (b *Base) Name() string {
	return b.name
}

// Engine returns the engine that the application runs on.
func (b *Base) Engine() sim.Engine {
	return b.engine
}

// Now returns the current virtual time.
func (b *Base) Now() sim.VTimeInSec {
	return b.engine.CurrentTime()
}

// StartAt schedules the start of the application.
func (b *Base) StartAt(t sim.VTimeInSec) {
	b.cancel(&b.startHandle)
	b.startHandle = b.engine.Schedule(
		&StartEvent{EventBase: sim.NewEventBase(t, b.app)})
}

// StopAt schedules the stop of the application.
func (b *Base) StopAt(t sim.VTimeInSec) {
	b.cancel(&b.stopHandle)
	b.stopHandle = b.engine.Schedule(
		&StopEvent{EventBase: sim.NewEventBase(t, b.app)})
}

// StartTime returns the time of the pending start, or -1 if none is pending.
func (b *Base) StartTime() sim.VTimeInSec {
	if !b.startHandle.IsArmed() {
		return -1
	}

	return b.startHandle.Time()
}

// StopTime returns the time of the pending stop, or -1 if none is pending.
func (b *Base) StopTime() sim.VTimeInSec {
	if !b.stopHandle.IsArmed() {
		return -1
	}

	return b.stopHandle.Time()
}

// Dispose cancels the pending start and stop and stops the application.
func (b *Base) Dispose() {
	b.cancel(&b.startHandle)
	b.cancel(&b.stopHandle)
	b.app.Stop()
}

func (b *Base) cancel(h *sim.EventHandle) {
	if h.IsArmed() {
		b.engine.Cancel(*h)
	}

	*h = sim.EventHandle{}
}
