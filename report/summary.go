// Package report summarizes a finished traffic simulation.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/trafficsim/apps/packetsink"
	"github.com/sarchlab/trafficsim/apps/packetsource"
	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/simulation"
)

// Tables written by Summary.Record.
const (
	SourceTableName = "source_summary"
	SinkTableName   = "sink_summary"
)

// SourceSummary is what a source did during the run.
type SourceSummary struct {
	Name         string
	Peer         string
	Protocol     string
	State        string
	PacketsSent  uint64
	BytesSent    uint64
	SendFailures uint64
	Capped       bool
}

// SinkSummary is what a sink received during the run.
type SinkSummary struct {
	Name            string
	Address         string
	Protocol        string
	Senders         int
	Connections     int
	PacketsReceived uint64
	BytesReceived   uint64
	MalformedFrames uint64
}

// Summary describes a finished run.
type Summary struct {
	ID      string
	EndTime float64

	Sources []SourceSummary
	Sinks   []SinkSummary

	SegmentsSent      uint64
	SegmentsDelivered uint64
	SegmentsDropped   uint64

	PacketsDelivered uint64
	PacketsInFlight  int
	AverageDelay     float64
	MinDelay         float64
	MaxDelay         float64
}

// Summarize collects the counters of the simulation's applications, network
// and latency tracer.
func Summarize(s *simulation.Simulation) Summary {
	network := s.GetNetwork()
	latency := s.GetLatencyTracer()
	minDelay, maxDelay := latency.MinMaxLatency()

	summary := Summary{
		ID:                s.ID(),
		EndTime:           float64(s.GetEngine().CurrentTime()),
		SegmentsSent:      network.SegmentsSent(),
		SegmentsDelivered: network.SegmentsDelivered(),
		SegmentsDropped:   network.SegmentsDropped(),
		PacketsDelivered:  latency.Count(),
		PacketsInFlight:   latency.InflightCount(),
		AverageDelay:      float64(latency.AverageLatency()),
		MinDelay:          float64(minDelay),
		MaxDelay:          float64(maxDelay),
	}

	for _, a := range s.Apps() {
		switch a := a.(type) {
		case *packetsource.Source:
			summary.Sources = append(summary.Sources, summarizeSource(a))
		case *packetsink.Sink:
			summary.Sinks = append(summary.Sinks, summarizeSink(a))
		}
	}

	return summary
}

func summarizeSource(s *packetsource.Source) SourceSummary {
	return SourceSummary{
		Name:         s.Name(),
		Peer:         s.Peer().String(),
		Protocol:     s.Protocol().String(),
		State:        s.State().String(),
		PacketsSent:  s.PacketsSent(),
		BytesSent:    s.TotalBytesSent(),
		SendFailures: s.SendFailures(),
		Capped:       s.Capped(),
	}
}

func summarizeSink(s *packetsink.Sink) SinkSummary {
	return SinkSummary{
		Name:            s.Name(),
		Address:         s.LocalAddress().String(),
		Protocol:        s.Protocol().String(),
		Senders:         len(s.Stats()),
		Connections:     s.AcceptedConnections(),
		PacketsReceived: s.TotalPacketsReceived(),
		BytesReceived:   s.TotalBytesReceived(),
		MalformedFrames: s.MalformedFrames(),
	}
}

// WriteTable prints the summary as aligned text tables.
func (s Summary) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s ended at %.6f s\n\n", s.ID, s.EndTime)

	fmt.Fprintln(tw, "SOURCE\tPEER\tPROTO\tSTATE\tPACKETS\tBYTES\tFAILURES\tCAPPED")
	for _, src := range s.Sources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			src.Name, src.Peer, src.Protocol, src.State,
			src.PacketsSent, src.BytesSent, src.SendFailures, src.Capped)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SINK\tADDRESS\tPROTO\tSENDERS\tCONNS\tPACKETS\tBYTES\tMALFORMED")
	for _, sink := range s.Sinks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			sink.Name, sink.Address, sink.Protocol, sink.Senders,
			sink.Connections, sink.PacketsReceived, sink.BytesReceived,
			sink.MalformedFrames)
	}

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Segments\tsent %d\tdelivered %d\tdropped %d\n",
		s.SegmentsSent, s.SegmentsDelivered, s.SegmentsDropped)
	fmt.Fprintf(tw, "Packets\tdelivered %d\tin flight %d\t\n",
		s.PacketsDelivered, s.PacketsInFlight)
	fmt.Fprintf(tw, "Delay (s)\tavg %.6f\tmin %.6f\tmax %.6f\n",
		s.AverageDelay, s.MinDelay, s.MaxDelay)

	return tw.Flush()
}

// Record writes the per-application summaries into the data recorder.
func (s Summary) Record(recorder datarecording.DataRecorder) {
	recorder.CreateTable(SourceTableName, SourceSummary{})
	recorder.CreateTable(SinkTableName, SinkSummary{})

	for _, src := range s.Sources {
		recorder.InsertData(SourceTableName, src)
	}

	for _, sink := range s.Sinks {
		recorder.InsertData(SinkTableName, sink)
	}

	recorder.Flush()
}
