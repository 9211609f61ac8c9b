package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/trafficsim/report"
	"github.com/sarchlab/trafficsim/scenario"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/simulation"
	"github.com/spf13/cobra"
)

type runOptions struct {
	output          string
	monitor         bool
	monitorPort     int
	openMonitor     bool
	logEvents       bool
	logPackets      bool
	noPacketRecords bool
	plot            string
	analyzeBuffers  bool
	bufferPeriod    float64
	endTime         float64
	endTimeSet      bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a scenario and print a summary.",
	Long: "Run a scenario until its end time, print a summary of the " +
		"traffic and record the packets, traces and summary into " +
		"<output>.sqlite3.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runOpts.endTimeSet = cmd.Flags().Changed("end-time")
		return runScenario(args[0], runOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringVarP(&runOpts.output, "output", "o", envString(envOutput, ""),
		"database file name without the .sqlite3 suffix "+
			"(default trafficsim_<id>, env "+envOutput+")")
	flags.BoolVar(&runOpts.monitor, "monitor", false,
		"serve the monitoring API while the simulation runs")
	flags.IntVar(&runOpts.monitorPort, "monitor-port",
		envInt(envMonitorPort, 0),
		"port of the monitoring API, random if unset (env "+envMonitorPort+")")
	flags.BoolVar(&runOpts.openMonitor, "open-monitor", false,
		"open the monitoring API in a browser, implies --monitor")
	flags.BoolVar(&runOpts.logEvents, "log-events", false,
		"print every event handled by the engine")
	flags.BoolVar(&runOpts.logPackets, "log-packets", false,
		"print every packet sent and received")
	flags.BoolVar(&runOpts.noPacketRecords, "no-packet-records", false,
		"do not record individual packets in the database")
	flags.StringVar(&runOpts.plot, "plot", "",
		"save a plot of the bytes received by each sink into this file")
	flags.BoolVar(&runOpts.analyzeBuffers, "analyze-buffers", false,
		"record the level of every send buffer into the database")
	flags.Float64Var(&runOpts.bufferPeriod, "buffer-period", 0,
		"period of the buffer analysis in seconds, 0 covers the whole run")
	flags.Float64Var(&runOpts.endTime, "end-time", 0,
		"override the end time of the scenario, 0 runs until no event is left")
}

func buildSimulation(
	sc *scenario.Scenario,
	opts runOptions,
) (*simulation.Simulation, error) {
	builder := simulation.MakeBuilder().
		WithNetwork(sc.NetworkBuilder()).
		WithOutputFileName(opts.output)

	if opts.monitor || opts.openMonitor {
		builder = builder.WithMonitorPort(opts.monitorPort)
	} else {
		builder = builder.WithoutMonitoring()
	}

	if opts.logEvents {
		builder = builder.WithEventLogger(log.New(os.Stderr, "event: ", 0))
	}

	if opts.logPackets {
		builder = builder.WithPacketLogger(log.New(os.Stderr, "packet: ", 0))
	}

	if opts.noPacketRecords {
		builder = builder.WithoutPacketRecording()
	}

	if opts.analyzeBuffers {
		builder = builder.WithBufferAnalysis(sim.VTimeInSec(opts.bufferPeriod))
	}

	return builder.Build()
}

func runScenario(path string, opts runOptions, out io.Writer) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	if opts.endTimeSet {
		sc.EndTime = opts.endTime

		err = sc.Validate()
		if err != nil {
			return err
		}
	}

	s, err := buildSimulation(sc, opts)
	if err != nil {
		return err
	}

	s.AddRunInfo("Scenario", sc.Name)
	s.AddRunInfo("Scenario File", path)

	inst, err := sc.Install(s)
	if err != nil {
		return err
	}

	throughput := report.NewThroughputCollector()
	for _, sink := range inst.Sinks {
		sink.AcceptHook(throughput)
	}

	if opts.openMonitor {
		err = s.GetMonitor().OpenInBrowser()
		if err != nil {
			log.Printf("cannot open the monitor: %v", err)
		}
	}

	err = sc.Run(s)
	if err != nil {
		return err
	}

	summary := report.Summarize(s)
	summary.Record(s.GetDataRecorder())

	err = summary.WriteTable(out)
	if err != nil {
		return err
	}

	if opts.plot != "" {
		err = throughput.SavePlot(sc.Name, opts.plot)
		if err != nil {
			return fmt.Errorf("saving plot: %w", err)
		}
	}

	err = s.Terminate()
	if err != nil {
		return err
	}

	if s.OutputPath() != "" {
		fmt.Fprintf(out, "\nRecorded into %s.sqlite3\n", s.OutputPath())
	}

	return nil
}
