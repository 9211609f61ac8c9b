// Package simulation ties together the engine, the network, the recorders
// and the monitor that a traffic simulation runs with.
package simulation

import (
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/trafficsim/analysis"
	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/monitoring"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/tracing"
	"github.com/sarchlab/trafficsim/transport"
)

// A Simulation provides the services required to run a traffic simulation.
type Simulation struct {
	id         string
	outputPath string

	engine  *sim.SerialEngine
	network *transport.Network

	dataRecorder   datarecording.DataRecorder
	monitor        *monitoring.Monitor
	visTracer      *tracing.DBTracer
	latencyTracer  *tracing.LatencyTracer
	packetRecorder *apps.PacketRecorder
	packetLogger   *apps.PacketLogger
	runInfo        *datarecording.RunInfoRecorder
	bufferAnalyzer *analysis.BufferAnalyzer

	apps         []apps.Application
	appNameIndex map[string]int

	terminated bool
}

// ID returns the unique ID of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// OutputPath returns the path of the database file without the suffix. It
// is empty when recording into a custom data recorder.
func (s *Simulation) OutputPath() string {
	return s.outputPath
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() *sim.SerialEngine {
	return s.engine
}

// GetNetwork returns the simulated network.
func (s *Simulation) GetNetwork() *transport.Network {
	return s.network
}

// AddRunInfo records a property of the run, such as the scenario it runs.
func (s *Simulation) AddRunInfo(property, value string) {
	s.runInfo.Add(property, value)
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the tracer that writes packet tasks into the data
// recorder.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// GetLatencyTracer returns the tracer that measures packet delays.
func (s *Simulation) GetLatencyTracer() *tracing.LatencyTracer {
	return s.latencyTracer
}

// RegisterApp registers an application with the simulation and attaches the
// tracers, recorders and loggers to it.
func (s *Simulation) RegisterApp(a apps.Application) {
	name := a.Name()
	if _, found := s.appNameIndex[name]; found {
		log.Panicf("app %s already registered", name)
	}

	s.apps = append(s.apps, a)
	s.appNameIndex[name] = len(s.apps) - 1

	tracing.CollectTrace(a, s.visTracer)
	tracing.CollectTrace(a, s.latencyTracer)

	if s.packetRecorder != nil {
		a.AcceptHook(s.packetRecorder)
	}

	if s.packetLogger != nil {
		a.AcceptHook(s.packetLogger)
	}

	if s.monitor != nil {
		s.monitor.RegisterApp(a)
	}
}

// GetAppByName returns the application with the given name, or nil if there
// is no such application.
func (s *Simulation) GetAppByName(name string) apps.Application {
	i, found := s.appNameIndex[name]
	if !found {
		return nil
	}

	return s.apps[i]
}

// Apps returns all the registered applications in registration order.
func (s *Simulation) Apps() []apps.Application {
	return s.apps
}

// Run processes events until none is left.
func (s *Simulation) Run() error {
	err := s.engine.Run()
	if err != nil {
		return fmt.Errorf("simulation %s: %w", s.id, err)
	}

	return nil
}

// RunUntil processes the events that happen no later than endTime and
// leaves the clock at endTime, like stopping the simulator at that time.
func (s *Simulation) RunUntil(endTime sim.VTimeInSec) error {
	err := s.engine.RunUntil(endTime)
	if err != nil {
		return fmt.Errorf("simulation %s: %w", s.id, err)
	}

	return nil
}

// Terminate stops all the applications and writes out everything that has
// been recorded. Calling it more than once has no effect.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	for _, a := range s.apps {
		a.Dispose()
	}

	s.engine.Finished()

	if s.bufferAnalyzer != nil {
		s.bufferAnalyzer.Summarize()
	}

	s.visTracer.Terminate()
	s.runInfo.End()

	var result *multierror.Error

	err := s.dataRecorder.Close()
	if err != nil {
		result = multierror.Append(result,
			fmt.Errorf("closing data recorder: %w", err))
	}

	return result.ErrorOrNil()
}
