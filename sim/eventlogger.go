package sim

import (
	"log"
	"reflect"
)

// LogHookBase is embedded by hooks that print what they observe.
type LogHookBase struct {
	*log.Logger
}

// EventLogger prints every event before it is handled, as
// "<time> <event type> -> <handler name>".
type EventLogger struct {
	LogHookBase
}

// NewEventLogger creates an EventLogger that prints into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{LogHookBase{Logger: logger}}
}

// Func prints the event when the engine is about to handle it.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	target := "-"
	if named, ok := evt.Handler().(Named); ok {
		target = named.Name()
	}

	h.Printf("%.9f %s -> %s", evt.Time(), eventTypeName(evt), target)
}

func eventTypeName(evt Event) string {
	t := reflect.TypeOf(evt)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.String()
}
