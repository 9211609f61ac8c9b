package simulation

import (
	"errors"
	"fmt"
	"log"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/xid"
	"github.com/sarchlab/trafficsim/analysis"
	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/monitoring"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/tracing"
	"github.com/sarchlab/trafficsim/transport"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	outputFileName string
	dataRecorder   datarecording.DataRecorder
	network        transport.Builder
	eventLogger    *log.Logger
	packetLogger   *log.Logger
	recordPackets  bool
	analyzeBuffers bool
	bufferPeriod   sim.VTimeInSec
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn:     true,
		network:       transport.MakeBuilder(),
		recordPackets: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// The ".sqlite3" suffix is appended.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithDataRecorder makes the simulation record into the given recorder
// instead of creating a database file.
func (b Builder) WithDataRecorder(recorder datarecording.DataRecorder) Builder {
	b.dataRecorder = recorder
	return b
}

// WithNetwork sets the builder of the simulated network. The engine is set
// by the simulation.
func (b Builder) WithNetwork(network transport.Builder) Builder {
	b.network = network
	return b
}

// WithEventLogger prints every event handled by the engine.
func (b Builder) WithEventLogger(logger *log.Logger) Builder {
	b.eventLogger = logger
	return b
}

// WithPacketLogger prints every packet sent and received by applications.
func (b Builder) WithPacketLogger(logger *log.Logger) Builder {
	b.packetLogger = logger
	return b
}

// WithoutPacketRecording stops writing individual packets into the data
// recorder. Traces and summaries are still written.
func (b Builder) WithoutPacketRecording() Builder {
	b.recordPackets = false
	return b
}

// WithBufferAnalysis records the average and maximum level of every send
// buffer once per period. A period of 0 records one entry for the whole run.
func (b Builder) WithBufferAnalysis(period sim.VTimeInSec) Builder {
	b.analyzeBuffers = true
	b.bufferPeriod = period
	return b
}

func (b Builder) parametersMustBeValid() error {
	var result *multierror.Error

	if !b.monitorOn && b.monitorPort != 0 {
		result = multierror.Append(result, errors.New(
			"monitor port cannot be set when monitoring is disabled"))
	}

	if b.dataRecorder != nil && b.outputFileName != "" {
		result = multierror.Append(result, errors.New(
			"output file name cannot be set with a custom data recorder"))
	}

	if b.bufferPeriod < 0 {
		result = multierror.Append(result, fmt.Errorf(
			"buffer analysis period %v must not be negative", b.bufferPeriod))
	}

	return result.ErrorOrNil()
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	err := b.parametersMustBeValid()
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	s := &Simulation{
		id:           xid.New().String(),
		appNameIndex: make(map[string]int),
	}

	s.engine = sim.NewSerialEngine()
	if b.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.eventLogger))
	}

	s.network, err = b.network.WithEngine(s.engine).Build("Network")
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	s.dataRecorder = b.dataRecorder
	if s.dataRecorder == nil {
		s.outputPath = b.outputFileName
		if s.outputPath == "" {
			s.outputPath = "trafficsim_" + s.id
		}

		s.dataRecorder = datarecording.New(s.outputPath)
	}

	s.runInfo = datarecording.NewRunInfoRecorder(s.dataRecorder)
	s.runInfo.Add("Run ID", s.id)

	s.visTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)
	s.latencyTracer = tracing.NewLatencyTracer(
		s.engine, tracing.KindFilter(apps.TaskKindPacket))

	if b.recordPackets {
		s.packetRecorder = apps.NewPacketRecorder(s.dataRecorder)
	}

	if b.analyzeBuffers {
		s.bufferAnalyzer = analysis.MakeBufferAnalyzerBuilder().
			WithDataRecorder(s.dataRecorder).
			WithTimeTeller(s.engine).
			WithPeriod(b.bufferPeriod).
			Build()
		s.network.AcceptBufferHook(s.bufferAnalyzer)
	}

	if b.packetLogger != nil {
		s.packetLogger = apps.NewPacketLogger(b.packetLogger)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterBufferLister(s.network)
		s.monitor.StartServer()
	}

	return s, nil
}
