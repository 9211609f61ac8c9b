package apps

import (
	"log"

	"github.com/sarchlab/trafficsim/sim"
)

// PacketLogger is a hook that prints the packets sent and received by
// applications.
type PacketLogger struct {
	sim.LogHookBase
}

// NewPacketLogger returns a new PacketLogger which will write into the
// logger.
func NewPacketLogger(logger *log.Logger) *PacketLogger {
	h := new(PacketLogger)
	h.Logger = logger

	return h
}

// Func writes the packet information into the logger
func (h *PacketLogger) Func(ctx sim.HookCtx) {
	switch r := ctx.Item.(type) {
	case TxRecord:
		h.Logger.Printf("%.10f,%s,tx,%s,%s,seq=%d,size=%d",
			r.Time, r.App, r.From, r.To, r.Header.Seq, r.Size)
	case RxRecord:
		h.Logger.Printf("%.10f,%s,rx,%s,seq=%d,size=%d,delay=%.10f",
			r.Time, r.App, r.From, r.Header.Seq, r.Size, r.Delay)
	}
}
