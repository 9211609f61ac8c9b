package tracing

import (
	"math"
	"sync"

	"github.com/sarchlab/trafficsim/sim"
)

// LatencyTracer measures the time between the start and the end of tasks.
// Tasks that start but never end, such as lost packets, stay in flight.
type LatencyTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock          sync.Mutex
	inflightTasks map[string]Task
	count         uint64
	mean          sim.VTimeInSec
	min, max      sim.VTimeInSec
}

// NewLatencyTracer creates a new LatencyTracer. A nil filter accepts all the
// tasks.
func NewLatencyTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *LatencyTracer {
	if filter == nil {
		filter = func(Task) bool { return true }
	}

	return &LatencyTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]Task),
		min:           sim.VTimeInSec(math.Inf(1)),
	}
}

// StartTask records the task start time
func (t *LatencyTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// EndTask records the end of the task
func (t *LatencyTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)

	latency := now - original.StartTime
	t.mean = sim.VTimeInSec(
		(float64(t.mean)*float64(t.count) + float64(latency)) /
			float64(t.count+1))
	t.count++
	t.min = min(t.min, latency)
	t.max = max(t.max, latency)
}

// Count returns the number of completed tasks.
func (t *LatencyTracer) Count() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// InflightCount returns the number of tasks started but not ended.
func (t *LatencyTracer) InflightCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.inflightTasks)
}

// AverageLatency returns the mean latency of the completed tasks.
func (t *LatencyTracer) AverageLatency() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.mean
}

// MinMaxLatency returns the smallest and the largest latency. Both are 0
// before any task completes.
func (t *LatencyTracer) MinMaxLatency() (sim.VTimeInSec, sim.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 {
		return 0, 0
	}

	return t.min, t.max
}
