package apps

import (
	"github.com/sarchlab/trafficsim/datarecording"
	"github.com/sarchlab/trafficsim/sim"
)

// Tables written by PacketRecorder.
const (
	TxTableName = "packet_tx"
	RxTableName = "packet_rx"
)

type txEntry struct {
	App         string
	Time        float64
	Src         string
	Dst         string
	Seq         uint32
	Size        int
	Pseudonym   uint32
	OperationID uint32
	QosID       uint8
}

type rxEntry struct {
	App       string
	Time      float64
	Src       string
	Seq       uint32
	Size      int
	Delay     float64
	Pseudonym uint32
	QosID     uint8
}

// PacketRecorder is a hook that writes every sent and received packet into
// a data recorder.
type PacketRecorder struct {
	recorder datarecording.DataRecorder
}

// NewPacketRecorder creates the packet tables and returns the hook.
func NewPacketRecorder(recorder datarecording.DataRecorder) *PacketRecorder {
	recorder.CreateTable(TxTableName, txEntry{})
	recorder.CreateTable(RxTableName, rxEntry{})

	return &PacketRecorder{recorder: recorder}
}

// Func records the packet carried by the hook context.
func (h *PacketRecorder) Func(ctx sim.HookCtx) {
	switch r := ctx.Item.(type) {
	case TxRecord:
		h.recorder.InsertData(TxTableName, txEntry{
			App:         r.App,
			Time:        float64(r.Time),
			Src:         r.From.String(),
			Dst:         r.To.String(),
			Seq:         r.Header.Seq,
			Size:        r.Size,
			Pseudonym:   r.Header.Pseudonym,
			OperationID: r.Header.OperationID,
			QosID:       r.Header.QosID,
		})
	case RxRecord:
		h.recorder.InsertData(RxTableName, rxEntry{
			App:       r.App,
			Time:      float64(r.Time),
			Src:       r.From.String(),
			Seq:       r.Header.Seq,
			Size:      r.Size,
			Delay:     float64(r.Delay),
			Pseudonym: r.Header.Pseudonym,
			QosID:     r.Header.QosID,
		})
	}
}
