package tracing

import (
	"log"
	"slices"

	"github.com/sarchlab/trafficsim/sim"
)

// A Tracer collects the tasks reported by the domains it is attached to.
type Tracer interface {
	StartTask(task Task)
	EndTask(task Task)
}

// CollectTrace attaches the tracer to the domain. A tracer can be attached
// to a domain only once.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	attached := slices.ContainsFunc(domain.Hooks(), func(h sim.Hook) bool {
		th, ok := h.(*traceHook)
		return ok && th.tracer == tracer
	})
	if attached {
		log.Panicf("%s already reports to this %T", domain.Name(), tracer)
	}

	domain.AcceptHook(&traceHook{tracer: tracer})
}

type traceHook struct {
	tracer Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
