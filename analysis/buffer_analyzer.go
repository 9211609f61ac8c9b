// Package analysis derives performance figures from hooks while the
// simulation runs.
package analysis

import (
	"math"

	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/sim"
)

// BufferLevelTableName is the table that BufferAnalyzer writes into.
const BufferLevelTableName = "buffer_level"

// BufferLevelEntry is the time-weighted level of a buffer over a period.
type BufferLevelEntry struct {
	Start    float64
	End      float64
	Buffer   string
	AvgLevel float64
	MaxLevel int
}

type bufferState struct {
	buf sim.Buffer

	periodStart sim.VTimeInSec
	lastTime    sim.VTimeInSec
	level       int
	maxLevel    int
	levelTime   float64
}

// BufferAnalyzer is a hook that records how full buffers are over time. It
// can be attached to any number of buffers.
type BufferAnalyzer struct {
	sim.TimeTeller

	recorder datarecording.DataRecorder
	period   sim.VTimeInSec

	buffers map[string]*bufferState
	order   []string
}

// Func records a buffer level change.
func (a *BufferAnalyzer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosBufPush, sim.HookPosBufPop, sim.HookPosBufClear:
	default:
		return
	}

	buf := ctx.Domain.(sim.Buffer)
	s := a.state(buf)

	a.advance(s, a.CurrentTime())

	s.level = buf.Size()
	if s.level > s.maxLevel {
		s.maxLevel = s.level
	}
}

func (a *BufferAnalyzer) state(buf sim.Buffer) *bufferState {
	s, found := a.buffers[buf.Name()]
	if found {
		return s
	}

	s = &bufferState{buf: buf}
	if a.period > 0 {
		s.periodStart = a.periodStartTime(a.CurrentTime())
		s.lastTime = s.periodStart
	}

	a.buffers[buf.Name()] = s
	a.order = append(a.order, buf.Name())

	return s
}

// advance accounts the time until now, closing every period that ended on
// the way.
func (a *BufferAnalyzer) advance(s *bufferState, now sim.VTimeInSec) {
	for a.period > 0 && now >= s.periodStart+a.period {
		end := s.periodStart + a.period

		s.levelTime += float64(s.level) * float64(end-s.lastTime)
		a.record(s, end)

		s.periodStart = end
		s.lastTime = end
		s.levelTime = 0
		s.maxLevel = s.level
	}

	s.levelTime += float64(s.level) * float64(now-s.lastTime)
	s.lastTime = now
}

func (a *BufferAnalyzer) record(s *bufferState, end sim.VTimeInSec) {
	duration := float64(end - s.periodStart)
	if duration <= 0 || s.maxLevel == 0 {
		return
	}

	a.recorder.InsertData(BufferLevelTableName, BufferLevelEntry{
		Start:    float64(s.periodStart),
		End:      float64(end),
		Buffer:   s.buf.Name(),
		AvgLevel: s.levelTime / duration,
		MaxLevel: s.maxLevel,
	})
}

func (a *BufferAnalyzer) periodStartTime(t sim.VTimeInSec) sim.VTimeInSec {
	return sim.VTimeInSec(math.Floor(float64(t/a.period))) * a.period
}

// Summarize records the periods that have not been recorded yet, ending at
// the current time.
func (a *BufferAnalyzer) Summarize() {
	now := a.CurrentTime()

	for _, name := range a.order {
		s := a.buffers[name]

		a.advance(s, now)
		a.record(s, now)

		s.periodStart = now
		s.levelTime = 0
		s.maxLevel = s.level
	}

	a.recorder.Flush()
}

// BufferAnalyzerBuilder can build a BufferAnalyzer.
type BufferAnalyzerBuilder struct {
	recorder   datarecording.DataRecorder
	timeTeller sim.TimeTeller
	period     sim.VTimeInSec
}

// MakeBufferAnalyzerBuilder creates a BufferAnalyzerBuilder.
func MakeBufferAnalyzerBuilder() BufferAnalyzerBuilder {
	return BufferAnalyzerBuilder{}
}

// WithDataRecorder sets the recorder that the levels are written into.
func (b BufferAnalyzerBuilder) WithDataRecorder(
	recorder datarecording.DataRecorder,
) BufferAnalyzerBuilder {
	b.recorder = recorder
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b BufferAnalyzerBuilder) WithTimeTeller(
	timeTeller sim.TimeTeller,
) BufferAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPeriod records one entry per buffer every period. Without a period,
// one entry covers the whole run.
func (b BufferAnalyzerBuilder) WithPeriod(
	period sim.VTimeInSec,
) BufferAnalyzerBuilder {
	b.period = period
	return b
}

// Build creates a BufferAnalyzer and its table.
func (b BufferAnalyzerBuilder) Build() *BufferAnalyzer {
	if b.recorder == nil {
		panic("data recorder is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.period < 0 {
		panic("period must not be negative")
	}

	b.recorder.CreateTable(BufferLevelTableName, BufferLevelEntry{})

	return &BufferAnalyzer{
		TimeTeller: b.timeTeller,
		recorder:   b.recorder,
		period:     b.period,
		buffers:    make(map[string]*bufferState),
	}
}
