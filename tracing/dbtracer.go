package tracing

import (
	"sync"

	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/tebeka/atexit"
)

// TraceTableName is the table that DBTracers write into.
const TraceTableName = "trace"

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	StartAt   string
	EndAt     string
	StartTime float64
	EndTime   float64
}

// DBTracer is a tracer that stores tasks into a data recorder. A task is
// written when it ends. Tasks still in flight when the tracer terminates are
// written with an end time of -1.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
	terminated   bool
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TraceTableName, taskTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits tracing to the tasks that overlap the time range. An
// end time of 0 means no limit.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

// EndTask marks the end of a task.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	endTime := t.timeTeller.CurrentTime()
	if endTime < t.startTime {
		return
	}

	t.write(original, task.Where, endTime)
}

func (t *DBTracer) write(task Task, endAt string, endTime sim.VTimeInSec) {
	t.backend.InsertData(TraceTableName, taskTableEntry{
		ID:        task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		StartAt:   task.Where,
		EndAt:     endAt,
		StartTime: float64(task.StartTime),
		EndTime:   float64(endTime),
	})
}

// Terminate writes the unfinished tasks and flushes the recorder. Calling it
// more than once has no effect.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.terminated {
		return
	}

	t.terminated = true

	for _, task := range t.tracingTasks {
		t.write(task, "", -1)
	}

	t.tracingTasks = nil
	t.backend.Flush()
}
