package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/sim"
)

// Metrics exports the packets observed by applications as Prometheus
// metrics. It is a hook to be attached to sources and sinks.
type Metrics struct {
	registry *prometheus.Registry

	packetsSent     *prometheus.CounterVec
	bytesSent       *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	bytesReceived   *prometheus.CounterVec
	delay           *prometheus.HistogramVec
}

// NewMetrics creates the metrics in a registry of their own. The virtual
// time is read from timeTeller whenever the metrics are scraped.
func NewMetrics(timeTeller sim.TimeTeller) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		packetsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficsim_packets_sent_total",
				Help: "Packets accepted by the transport, per application",
			},
			[]string{"app"},
		),
		bytesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficsim_bytes_sent_total",
				Help: "Bytes accepted by the transport, per application",
			},
			[]string{"app"},
		),
		packetsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficsim_packets_received_total",
				Help: "Packets received and parsed, per application",
			},
			[]string{"app"},
		),
		bytesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficsim_bytes_received_total",
				Help: "Bytes received in valid packets, per application",
			},
			[]string{"app"},
		),
		delay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trafficsim_packet_delay_seconds",
				Help:    "Virtual one-way packet delay, per receiving application",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"app"},
		),
	}

	virtualTime := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "trafficsim_virtual_time_seconds",
			Help: "Current virtual time of the simulation",
		},
		func() float64 {
			return float64(timeTeller.CurrentTime())
		},
	)

	m.registry.MustRegister(
		m.packetsSent,
		m.bytesSent,
		m.packetsReceived,
		m.bytesReceived,
		m.delay,
		virtualTime,
	)

	return m
}

// Registry returns the registry that holds the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler that serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Func updates the metrics with a packet record.
func (m *Metrics) Func(ctx sim.HookCtx) {
	switch r := ctx.Item.(type) {
	case apps.TxRecord:
		m.packetsSent.WithLabelValues(r.App).Inc()
		m.bytesSent.WithLabelValues(r.App).Add(float64(r.Size))
	case apps.RxRecord:
		m.packetsReceived.WithLabelValues(r.App).Inc()
		m.bytesReceived.WithLabelValues(r.App).Add(float64(r.Size))
		m.delay.WithLabelValues(r.App).Observe(float64(r.Delay))
	}
}
