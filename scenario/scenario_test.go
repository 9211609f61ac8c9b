package scenario

import (
	"database/sql"
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/simulation"
	"github.com/sarchlab/trafficsim/transport"
)

var _ = Describe("Scenario", func() {
	It("should fill in the defaults", func() {
		sc, err := Load("testdata/basic.yaml")
		Expect(err).NotTo(HaveOccurred())

		Expect(sc.Name).To(Equal("lte-basic"))
		Expect(sc.Seed).To(Equal(int64(3)))
		Expect(sc.Network.Latency).To(Equal(0.002))
		Expect(sc.Network.MSS).To(Equal(1460))
		Expect(sc.Network.SendBufferSize).To(Equal(128))

		Expect(sc.Sinks).To(HaveLen(1))
		sink := sc.Sinks[0]
		Expect(sink.Address).To(Equal(transport.MustParseAddress("1.0.0.2:9")))
		Expect(sink.Protocol).To(Equal(transport.Stream))
		Expect(sink.RxBufferSize).To(Equal(1024))
		Expect(sink.Start).To(Equal(1.0))
		Expect(*sink.Stop).To(Equal(10.0))

		Expect(sc.Sources).To(HaveLen(1))
		source := sc.Sources[0]
		Expect(source.Node).To(Equal(netip.MustParseAddr("7.0.0.2")))
		Expect(source.PacketSize).To(Equal(1024))
		Expect(source.FirstSendingTime).To(Equal(2.0))
		Expect(source.Interval).To(Equal(5.0))
		Expect(source.Start).To(Equal(2.0))
		Expect(source.Stop).To(BeNil())
		Expect(source.Metadata.Pseudonym).To(Equal(uint32(42)))
		Expect(source.Metadata.QosID).To(Equal(uint8(9)))
	})

	It("should report missing files", func() {
		_, err := Load("testdata/missing.yaml")
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown fields", func() {
		_, err := Parse([]byte("name: x\nend: 3\n"))
		Expect(err).To(HaveOccurred())

		_, err = Parse([]byte(`
sources:
  - name: S
    node: 7.0.0.2
    peer: "1.0.0.2:9"
    packetsize: 100
`))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("packetsize"))
	})

	It("should reject malformed addresses and protocols", func() {
		_, err := Parse([]byte(`
sinks:
  - name: S
    address: "1.0.0.2"
`))
		Expect(err).To(HaveOccurred())

		_, err = Parse([]byte(`
sinks:
  - name: S
    address: "1.0.0.2:9"
    protocol: sctp
`))
		Expect(err).To(HaveOccurred())
	})

	It("should accept ns-3 socket factory names", func() {
		sc, err := Parse([]byte(`
sinks:
  - name: S
    address: "1.0.0.2:9"
    protocol: ns3::UdpSocketFactory
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Sinks[0].Protocol).To(Equal(transport.Datagram))
	})

	It("should report all problems at once", func() {
		sc, err := Parse([]byte(`
end_time: 0
network:
  mss: 0
sinks:
  - name: Sink
    address: "1.0.0.2:9"
    protocol: udp
  - name: Sink
    address: "1.0.0.3:9"
    start: 3
    stop: 2
sources:
  - name: Bad/Name
    peer: "1.0.0.2:9"
    packet_size: 10
    interval: 0
`))
		Expect(err).NotTo(HaveOccurred())

		err = sc.Validate()
		Expect(err).To(HaveOccurred())

		msg := err.Error()
		Expect(msg).To(ContainSubstring("mss 0"))
		Expect(msg).To(ContainSubstring("name Sink is used more than once"))
		Expect(msg).To(ContainSubstring("stop time 2"))
		Expect(msg).To(ContainSubstring("must not contain"))
		Expect(msg).To(ContainSubstring("node is not set"))
		Expect(msg).To(ContainSubstring("packet size 10"))
		Expect(msg).To(ContainSubstring("interval 0"))
		Expect(msg).To(ContainSubstring("never stops"))
		Expect(msg).To(ContainSubstring("does not match sink Sink"))
	})

	It("should list the nodes once each", func() {
		sc := DefaultScenario()
		sc.Sinks = []SinkConfig{
			{Address: transport.MustParseAddress("1.0.0.2:9")},
			{Address: transport.MustParseAddress("1.0.0.2:10")},
		}
		sc.Sources = []SourceConfig{
			{Node: netip.MustParseAddr("7.0.0.2")},
			{Node: netip.MustParseAddr("1.0.0.2")},
		}

		Expect(sc.Nodes()).To(Equal([]netip.Addr{
			netip.MustParseAddr("1.0.0.2"),
			netip.MustParseAddr("7.0.0.2"),
		}))
	})

	It("should survive a round trip through YAML", func() {
		sc, err := Load("testdata/basic.yaml")
		Expect(err).NotTo(HaveOccurred())

		data, err := sc.Marshal()
		Expect(err).NotTo(HaveOccurred())

		again, err := Parse(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(sc))
	})

	Context("when installed", func() {
		var (
			sc   *Scenario
			simu *simulation.Simulation
		)

		BeforeEach(func() {
			var err error

			sc, err = Load("testdata/basic.yaml")
			Expect(err).NotTo(HaveOccurred())

			db, err := sql.Open("sqlite3", ":memory:")
			Expect(err).NotTo(HaveOccurred())
			db.SetMaxOpenConns(1)

			simu, err = simulation.MakeBuilder().
				WithoutMonitoring().
				WithDataRecorder(datarecording.NewWithDB(db)).
				WithNetwork(sc.NetworkBuilder()).
				Build()
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(simu.Terminate()).To(Succeed())
		})

		It("should run the traffic until the end time", func() {
			inst, err := sc.Install(simu)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Sinks).To(HaveLen(1))
			Expect(inst.Sources).To(HaveLen(1))

			Expect(sc.Run(simu)).To(Succeed())

			source := inst.Sources[0]
			sink := inst.Sinks[0]

			Expect(simu.GetEngine().CurrentTime()).To(BeNumerically("==", 10))
			Expect(source.PacketsSent()).To(Equal(uint64(2)))
			Expect(source.TotalBytesSent()).To(Equal(uint64(2048)))
			Expect(sink.TotalPacketsReceived()).To(Equal(uint64(2)))

			stats := sink.Stats()[source.Socket().LocalAddress()]
			Expect(stats.Pseudonym).To(Equal(uint32(42)))
			Expect(stats.FirstRecvTime).To(BeNumerically("~", 4.002, 1e-9))
			Expect(stats.LastRecvTime).To(BeNumerically("~", 9.002, 1e-9))
		})

		It("should give sources streams that differ from the loss stream", func() {
			second := sc.Sources[0]
			second.Name = "Source2"
			sc.Sources = append(sc.Sources, second)

			inst, err := sc.Install(simu)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Sources).To(HaveLen(2))

			Expect(inst.Sources[0].Stream()).To(Equal(sc.Seed + 1))
			Expect(inst.Sources[1].Stream()).To(Equal(sc.Seed + 2))
		})

		It("should refuse to install invalid scenarios", func() {
			sc.Sources[0].Interval = 0

			_, err := sc.Install(simu)
			Expect(err).To(HaveOccurred())
			Expect(simu.Apps()).To(BeEmpty())
		})
	})
})
