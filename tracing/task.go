package tracing

import (
	"errors"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/trafficsim/sim"
)

// A Task is a piece of work that starts in one domain and ends in the same or
// another domain, for example a packet leaving a source and reaching a sink.
type Task struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id"`
	Kind      string         `json:"kind"`
	What      string         `json:"what"`
	Where     string         `json:"where"`
	StartTime sim.VTimeInSec `json:"start_time"`
	EndTime   sim.VTimeInSec `json:"end_time"`
	Detail    interface{}    `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// KindFilter keeps the tasks of the given kind.
func KindFilter(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}

func (t Task) validate() error {
	var result *multierror.Error

	if t.ID == "" {
		result = multierror.Append(result, errors.New("task id must not be empty"))
	}

	if t.Kind == "" {
		result = multierror.Append(result, errors.New("task kind must not be empty"))
	}

	if t.What == "" {
		result = multierror.Append(result, errors.New("task what must not be empty"))
	}

	if t.Where == "" {
		result = multierror.Append(result, errors.New("task where must not be empty"))
	}

	return result.ErrorOrNil()
}
