package tracing

import (
	"github.com/sarchlab/trafficsim/sim"
)

// Hook positions at which domains report tasks.
var (
	HookPosTaskStart = &sim.HookPos{Name: "Task Start"}
	HookPosTaskEnd   = &sim.HookPos{Name: "Task End"}
)

// NamedHookable is a domain that reports tasks to the tracers hooked to it.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// StartTask reports that a task started in the domain. The task is placed in
// the domain unless Where is set. ID, Kind and What are required.
func StartTask(domain NamedHookable, task Task) {
	if task.Where == "" {
		task.Where = domain.Name()
	}

	err := task.validate()
	if err != nil {
		panic(err)
	}

	if domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTaskStart,
		Item:   task,
	})
}

// EndTask reports that a task ended in the domain. A packet task starts at
// its source and ends at the sink that receives it.
func EndTask(domain NamedHookable, id string) {
	if id == "" {
		panic("task id must not be empty")
	}

	if domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(sim.HookCtx{
		Domain: domain,
		Pos:    HookPosTaskEnd,
		Item:   Task{ID: id, Where: domain.Name()},
	})
}
