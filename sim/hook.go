package sim

import (
	"log"
	"reflect"
)

// A HookPos names a place where hooks are invoked.
type HookPos struct {
	Name string
}

// Hook positions of the engine. The item is the event.
var (
	HookPosBeforeEvent = &HookPos{Name: "Before Event"}
	HookPosAfterEvent  = &HookPos{Name: "After Event"}
)

// HookCtx describes the site where a hook is invoked. Domain is the object
// that invokes the hook, Item is what the position is about, and Detail
// carries extra information some positions define, such as a drop reason.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// A Hook observes a Hookable without changing it.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// Hookable is an object that hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// HookableBase keeps the hooks of a Hookable. Its zero value is ready to
// use.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook attaches a hook. Attaching the same hook twice panics. Hook
// functions are not compared.
func (h *HookableBase) AcceptHook(hook Hook) {
	if reflect.TypeOf(hook).Comparable() {
		for _, existing := range h.hooks {
			if existing == hook {
				log.Panicf("hook %T is already attached", hook)
			}
		}
	}

	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of hooks attached.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the attached hooks in the order they were attached.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// InvokeHook calls every hook in the order they were attached.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
