package server

import (
	"github.com/indigo-web/reqengine/request"
	"github.com/indigo-web/reqengine/transport"
)

// connState is one established connection's private state (spec §3's
// ConnectionState): the transport Connection, the accumulated byte
// buffer, the Request currently under construction, and the two
// timestamps the timeout monitor reads. It is reachable only through
// Server's established map, keyed by id — delegates installed on conn
// close over id rather than a *connState pointer, so a delegate firing
// after the entry has been removed (peer closed mid-teardown, shutdown
// raced a send) finds nothing and no-ops, the Go equivalent of spec
// §9's weak back-reference.
type connState struct {
	id   uint64
	conn transport.Connection

	buffer  []byte
	machine *request.Machine

	timeLastDataReceived   float64
	timeLastRequestStarted float64

	acceptingRequests bool
}

func newConnState(id uint64, conn transport.Connection, now float64) *connState {
	return &connState{
		id:                     id,
		conn:                   conn,
		machine:                request.NewMachine(request.New()),
		timeLastDataReceived:   now,
		timeLastRequestStarted: now,
		acceptingRequests:      true,
	}
}
