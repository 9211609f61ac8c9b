package apps

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/transport"
)

var _ = Describe("PacketLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *PacketLogger
		src    transport.Address
		dst    transport.Address
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewPacketLogger(log.New(buf, "", 0))
		src = transport.MustParseAddress("10.1.1.1:49152")
		dst = transport.MustParseAddress("10.1.1.2:9")
	})

	It("should log sent packets", func() {
		logger.Func(sim.HookCtx{
			Pos: HookPosPacketTx,
			Item: TxRecord{
				App:    "Source",
				Time:   3,
				From:   src,
				To:     dst,
				Header: packet.Header{Seq: 7},
				Size:   1024,
			},
		})

		Expect(buf.String()).To(Equal(
			"3.0000000000,Source,tx,10.1.1.1:49152,10.1.1.2:9,seq=7,size=1024\n"))
	})

	It("should log received packets", func() {
		logger.Func(sim.HookCtx{
			Pos: HookPosPacketRx,
			Item: RxRecord{
				App:    "Sink",
				Time:   3.5,
				From:   src,
				Header: packet.Header{Seq: 7},
				Size:   1024,
				Delay:  0.5,
			},
		})

		Expect(buf.String()).To(Equal(
			"3.5000000000,Sink,rx,10.1.1.1:49152,seq=7,size=1024,delay=0.5000000000\n"))
	})

	It("should ignore other items", func() {
		logger.Func(sim.HookCtx{Item: "something else"})
		Expect(buf.Len()).To(BeZero())
	})
})
