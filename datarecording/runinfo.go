package datarecording

import (
	"os"
	"strings"
	"time"
)

// RunInfoTableName is the table that RunInfoRecorder writes into.
const RunInfoTableName = "run_info"

const runInfoTimeFormat = "2006-01-02 15:04:05.000000000"

type runInfo struct {
	Property string
	Value    string
}

// RunInfoRecorder records how a program execution was started and when it
// ended, as property-value rows.
type RunInfoRecorder struct {
	recorder DataRecorder
	entries  []runInfo
	ended    bool
}

// NewRunInfoRecorder creates the run info table and records the start time,
// the command line and the working directory.
func NewRunInfoRecorder(recorder DataRecorder) *RunInfoRecorder {
	recorder.CreateTable(RunInfoTableName, runInfo{})

	r := &RunInfoRecorder{recorder: recorder}

	r.Add("Start Time", time.Now().Format(runInfoTimeFormat))
	r.Add("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		r.Add("Working Directory", cwd)
	}

	return r
}

// Add records a property of the run. Properties are written when the run
// ends.
func (r *RunInfoRecorder) Add(property, value string) {
	r.entries = append(r.entries, runInfo{Property: property, Value: value})
}

// End writes the properties along with the end time. Calling it more than
// once has no effect.
func (r *RunInfoRecorder) End() {
	if r.ended {
		return
	}

	r.ended = true
	r.Add("End Time", time.Now().Format(runInfoTimeFormat))

	for _, entry := range r.entries {
		r.recorder.InsertData(RunInfoTableName, entry)
	}

	r.entries = nil
	r.recorder.Flush()
}
