package apps

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/tracing"
)

type countingApp struct {
	*Base
	starts []sim.VTimeInSec
	stops  []sim.VTimeInSec
}

func newCountingApp(engine sim.Engine) *countingApp {
	a := &countingApp{}
	a.Base = NewBase("App", engine, a)

	return a
}

func (a *countingApp) Handle(e sim.Event) error {
	switch e.(type) {
	case *StartEvent:
		a.Start()
	case *StopEvent:
		a.Stop()
	}

	return nil
}

func (a *countingApp) Start() {
	a.starts = append(a.starts, a.Now())
}

func (a *countingApp) Stop() {
	a.stops = append(a.stops, a.Now())
}

var _ Application = (*countingApp)(nil)

type taskCollector struct {
	started []tracing.Task
	ended   []tracing.Task
}

func (c *taskCollector) StartTask(task tracing.Task) {
	c.started = append(c.started, task)
}

func (c *taskCollector) EndTask(task tracing.Task) {
	c.ended = append(c.ended, task)
}

var _ = Describe("Base", func() {
	var (
		engine *sim.SerialEngine
		app    *countingApp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		app = newCountingApp(engine)
	})

	It("should reject invalid names", func() {
		Expect(func() { NewBase("bad name", engine, app) }).To(Panic())
	})

	It("should start and stop at the scheduled times", func() {
		app.StartAt(1)
		app.StopAt(10)
		Expect(app.StartTime()).To(Equal(sim.VTimeInSec(1)))
		Expect(app.StopTime()).To(Equal(sim.VTimeInSec(10)))

		Expect(engine.Run()).To(Succeed())

		Expect(app.starts).To(Equal([]sim.VTimeInSec{1}))
		Expect(app.stops).To(Equal([]sim.VTimeInSec{10}))
		Expect(app.StartTime()).To(Equal(sim.VTimeInSec(-1)))
	})

	It("should keep only the latest start and stop", func() {
		app.StartAt(1)
		app.StartAt(2)
		app.StopAt(10)
		app.StopAt(5)

		Expect(engine.PendingEvents()).To(Equal(2))
		Expect(engine.Run()).To(Succeed())

		Expect(app.starts).To(Equal([]sim.VTimeInSec{2}))
		Expect(app.stops).To(Equal([]sim.VTimeInSec{5}))
	})

	It("should cancel everything and stop on dispose", func() {
		app.StartAt(1)
		app.StopAt(10)

		app.Dispose()

		Expect(engine.PendingEvents()).To(BeZero())
		Expect(app.starts).To(BeEmpty())
		Expect(app.stops).To(Equal([]sim.VTimeInSec{0}))
	})

	It("should report tasks to tracers attached through the interface", func() {
		var a Application = app
		collector := &taskCollector{}

		tracing.CollectTrace(a, collector)
		tracing.StartTask(a, tracing.Task{ID: "t@0", Kind: "packet", What: "tx"})
		tracing.EndTask(a, "t@0")

		Expect(collector.started).To(HaveLen(1))
		Expect(collector.started[0].Where).To(Equal("App"))
		Expect(collector.ended).To(HaveLen(1))
		Expect(collector.ended[0].ID).To(Equal("t@0"))
	})
})
