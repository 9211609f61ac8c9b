package transport

import "github.com/sarchlab/trafficsim/sim"

// connectRequestEvent is the connection request reaching the peer node.
type connectRequestEvent struct {
	*sim.EventBase
	client   *simSocket
	src, dst Address
}

// connectReplyEvent is the answer to a connection request reaching the
// client.
type connectReplyEvent struct {
	*sim.EventBase
	client   *simSocket
	accepted bool
}

// txDoneEvent marks the head of a socket's send buffer leaving its node.
type txDoneEvent struct {
	*sim.EventBase
	sock *simSocket
}

type deliverEvent struct {
	*sim.EventBase
	seg *Segment
}

// finEvent tells the remote end of a stream connection that the sender has
// closed it.
type finEvent struct {
	*sim.EventBase
	src, dst Address
}
