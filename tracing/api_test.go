package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/trafficsim/sim"
)

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		domain.EXPECT().NumHooks().Return(1).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic if ID is not given", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartTask(domain, Task{ParentID: "123", Kind: "kind", What: "what"})
		}).Should(Panic())
	})

	It("should panic if kind is empty", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartTask(domain, Task{ID: "id", ParentID: "123", What: "what"})
		}).Should(Panic())
	})

	It("should panic if the domain has no name", func() {
		domain.EXPECT().Name().Return("").AnyTimes()
		Expect(func() {
			StartTask(domain, Task{ID: "id", ParentID: "123", Kind: "kind", What: "what"})
		}).Should(Panic())
	})

	It("should invoke the hooks with the task", func() {
		domain.EXPECT().Name().Return("Source").AnyTimes()
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskStart))
			task := ctx.Item.(Task)
			Expect(task.ID).To(Equal("id"))
			Expect(task.Where).To(Equal("Source"))
			Expect(task.Detail).To(Equal(42))
		})

		StartTask(domain, Task{ID: "id", Kind: "packet", What: "tx", Detail: 42})
	})

	It("should end tasks where they are observed", func() {
		domain.EXPECT().Name().Return("Sink").AnyTimes()
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosTaskEnd))
			Expect(ctx.Item.(Task)).To(Equal(Task{ID: "id", Where: "Sink"}))
		})

		EndTask(domain, "id")
	})

	It("should not build tasks when nobody listens", func() {
		quiet := NewMockNamedHookable(mockCtrl)
		quiet.EXPECT().Name().Return("Quiet").AnyTimes()
		quiet.EXPECT().NumHooks().Return(0).AnyTimes()

		StartTask(quiet, Task{ID: "id", Kind: "packet", What: "tx"})
		EndTask(quiet, "id")
	})

	It("should keep an explicit location", func() {
		domain.EXPECT().Name().Return("Source").AnyTimes()
		domain.EXPECT().InvokeHook(gomock.Any()).Do(func(ctx sim.HookCtx) {
			Expect(ctx.Item.(Task).Where).To(Equal("Node1"))
		})

		StartTask(domain, Task{ID: "id", Kind: "packet", What: "tx", Where: "Node1"})
	})

	It("should panic on an empty end id", func() {
		Expect(func() { EndTask(domain, "") }).To(Panic())
	})

	It("should ignore items that are not tasks", func() {
		tracer := NewLatencyTracer(nil, nil)
		hook := &traceHook{tracer: tracer}

		hook.Func(sim.HookCtx{Pos: HookPosTaskStart, Item: "not a task"})

		Expect(tracer.InflightCount()).To(Equal(0))
	})

	It("should not collect the same tracer twice", func() {
		tracer := NewLatencyTracer(nil, nil)
		var hooks []sim.Hook

		domain.EXPECT().Name().Return("Source").AnyTimes()
		domain.EXPECT().Hooks().DoAndReturn(func() []sim.Hook {
			return hooks
		}).AnyTimes()
		domain.EXPECT().AcceptHook(gomock.Any()).Do(func(h sim.Hook) {
			hooks = append(hooks, h)
		})

		CollectTrace(domain, tracer)
		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})
})
