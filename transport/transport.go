// Package transport declares the two interfaces the server core is built
// against — Connection and Transport, part of the external interfaces
// [J] in spec §2/§4.5. They are a direct translation of original_source's
// Http::ServerTransportLayer and Http::Connection into the delegate style
// Go expresses with plain function values instead of virtual methods:
// BindNetwork/ReleaseNetwork/GetBoundPort here, SetDataReceivedDelegate/
// SetConnectionBrokenDelegate/SendData/Break there. This split is what
// lets the server core in package server stay transport-agnostic — it is
// driven equally by transport/dummy in tests and transport/tcpnet in
// production.
package transport

// DataReceivedDelegate is called with each chunk of bytes the remote
// peer sends.
type DataReceivedDelegate func(data []byte)

// BrokenDelegate is called once, the first time the connection is
// discovered to be broken (remote close, write failure, or Break).
type BrokenDelegate func()

// Connection is one accepted peer connection. Implementations must be
// safe to drive the delegates from a different goroutine than the one
// that called SendData/Break.
type Connection interface {
	// GetPeerId returns a string identifying the remote peer, used only
	// for diagnostics (spec §6).
	GetPeerId() string

	// SetDataReceivedDelegate registers the callback invoked whenever
	// new bytes arrive. Must be called before data can be delivered.
	SetDataReceivedDelegate(delegate DataReceivedDelegate)

	// SetConnectionBrokenDelegate registers the callback invoked when
	// the connection becomes unusable.
	SetConnectionBrokenDelegate(delegate BrokenDelegate)

	// SendData queues data for delivery to the remote peer.
	SendData(data []byte)

	// Break tears the connection down. clean indicates whether the
	// peer should be given a chance to drain pending writes first, or
	// whether the connection is being discarded outright (spec §4.6).
	Break(clean bool)
}

// NewConnectionDelegate is called once per accepted connection.
type NewConnectionDelegate func(conn Connection)

// Transport is the network-binding side the server core drives — part
// of spec §2's external interfaces [J].
type Transport interface {
	// BindNetwork acquires the given port and begins delivering new
	// connections to newConnectionDelegate. Returns false if the port
	// could not be bound.
	BindNetwork(port uint16, newConnectionDelegate NewConnectionDelegate) bool

	// GetBoundPort returns the port actually bound — useful when
	// BindNetwork was called with port 0 to request an ephemeral one.
	GetBoundPort() uint16

	// ReleaseNetwork gives up everything BindNetwork acquired.
	ReleaseNetwork()
}

// TimeSource is the server core's only notion of time — part of spec
// §2's external interfaces [J], translated from Http::TimeKeeper. Kept as
// a float64 of seconds to mirror the original's GetCurrentTime exactly;
// the server core never calls time.Now() directly, so tests can drive
// the clock deterministically.
type TimeSource interface {
	GetCurrentTime() float64
}
