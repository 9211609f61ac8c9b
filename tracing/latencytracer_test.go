package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/trafficsim/sim"
)

var _ = Describe("LatencyTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		tracer     *LatencyTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		tracer = NewLatencyTracer(timeTeller, KindFilter("packet"))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should measure the latency of finished tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		tracer.StartTask(Task{ID: "a", Kind: "packet"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(8))
		tracer.StartTask(Task{ID: "b", Kind: "packet"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3.5))
		tracer.EndTask(Task{ID: "a"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(9.5))
		tracer.EndTask(Task{ID: "b"})

		Expect(tracer.Count()).To(Equal(uint64(2)))
		Expect(tracer.InflightCount()).To(Equal(0))
		Expect(tracer.AverageLatency()).To(Equal(sim.VTimeInSec(1)))

		lo, hi := tracer.MinMaxLatency()
		Expect(lo).To(Equal(sim.VTimeInSec(0.5)))
		Expect(hi).To(Equal(sim.VTimeInSec(1.5)))
	})

	It("should ignore filtered and unknown tasks", func() {
		tracer.StartTask(Task{ID: "a", Kind: "other"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1)).Times(2)
		tracer.EndTask(Task{ID: "a"})
		tracer.EndTask(Task{ID: "never"})

		Expect(tracer.Count()).To(BeZero())
		lo, hi := tracer.MinMaxLatency()
		Expect(lo).To(BeZero())
		Expect(hi).To(BeZero())
	})

	It("should keep lost tasks in flight", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		tracer.StartTask(Task{ID: "lost", Kind: "packet"})

		Expect(tracer.InflightCount()).To(Equal(1))
	})
})
