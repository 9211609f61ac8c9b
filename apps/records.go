package apps

import (
	"fmt"

	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/transport"
)

// HookPosPacketTx marks a packet accepted by the transport. The hook item
// is a TxRecord.
var HookPosPacketTx = &sim.HookPos{Name: "Packet Tx"}

// HookPosPacketRx marks a packet received and parsed by a sink. The hook
// item is an RxRecord.
var HookPosPacketRx = &sim.HookPos{Name: "Packet Rx"}

// TaskKindPacket is the tracing task kind of a packet travelling from a
// source to a sink.
const TaskKindPacket = "packet"

// A TxRecord describes a sent packet.
type TxRecord struct {
	App    string
	Time   sim.VTimeInSec
	From   transport.Address
	To     transport.Address
	Header packet.Header
	Size   int
}

// An RxRecord describes a received packet.
type RxRecord struct {
	App    string
	Time   sim.VTimeInSec
	From   transport.Address
	Header packet.Header
	Size   int
	Delay  sim.VTimeInSec
}

// PacketTaskID names the tracing task of the packet with the given sequence
// number sent from the given address. Sources and sinks derive the same ID
// independently.
func PacketTaskID(sender transport.Address, seq uint32) string {
	return fmt.Sprintf("%s@%d", sender, seq)
}
