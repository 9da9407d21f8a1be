// Package dummy provides in-memory Transport, Connection and TimeSource
// test doubles, grounded on the teacher's transport/dummy.Conn (a
// no-op net.Conn stand-in) and on original_source's MockConnection/
// MockTransport/MockTimeKeeper (test/src/ServerTests.cpp), translated
// from gtest fixtures into plain Go values the server package's tests
// drive directly — no goroutines, no real sockets.
package dummy

import (
	"sync"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/reqengine/transport"
)

// Connection is an in-memory transport.Connection. Feed simulates bytes
// arriving from the peer; SentData and IsBroken let a test assert on
// what the server core did with it.
type Connection struct {
	mu sync.Mutex

	peerID  string
	onData  transport.DataReceivedDelegate
	onBreak transport.BrokenDelegate

	sent   []byte
	broken bool
}

// NewConnection returns a Connection with a random peer id, grounded on
// the teacher's use of uniuri to generate throwaway identifiers in
// tests (internal/protocol/http1/parser_test.go).
func NewConnection() *Connection {
	return &Connection{peerID: uniuri.NewLen(8)}
}

func (c *Connection) GetPeerId() string {
	return c.peerID
}

func (c *Connection) SetDataReceivedDelegate(delegate transport.DataReceivedDelegate) {
	c.mu.Lock()
	c.onData = delegate
	c.mu.Unlock()
}

func (c *Connection) SetConnectionBrokenDelegate(delegate transport.BrokenDelegate) {
	c.mu.Lock()
	c.onBreak = delegate
	c.mu.Unlock()
}

func (c *Connection) SendData(data []byte) {
	c.mu.Lock()
	c.sent = append(c.sent, data...)
	c.mu.Unlock()
}

func (c *Connection) Break(clean bool) {
	c.mu.Lock()
	already := c.broken
	c.broken = true
	onBreak := c.onBreak
	c.mu.Unlock()

	if !already && onBreak != nil {
		onBreak()
	}
}

// Feed delivers data to whatever DataReceivedDelegate is currently
// registered, as the real transport would when bytes arrive on the
// wire. It is a no-op if nothing has subscribed yet, or the connection
// is already broken.
func (c *Connection) Feed(data []byte) {
	c.mu.Lock()
	onData := c.onData
	broken := c.broken
	c.mu.Unlock()

	if !broken && onData != nil {
		onData(data)
	}
}

// SentData returns everything written back to the peer so far.
func (c *Connection) SentData() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.sent...)
}

// IsBroken reports whether Break has been called.
func (c *Connection) IsBroken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}

// BreakFromPeer simulates the remote end closing the connection, firing
// the broken delegate exactly as Break would.
func (c *Connection) BreakFromPeer() {
	c.Break(false)
}

// Transport is an in-memory transport.Transport: BindNetwork just
// records the delegate so a test can hand it synthetic connections via
// Accept, rather than listening on a real socket.
type Transport struct {
	mu sync.Mutex

	bound     bool
	port      uint16
	onNewConn transport.NewConnectionDelegate
}

// NewTransport returns an unbound Transport.
func NewTransport() *Transport {
	return &Transport{}
}

func (t *Transport) BindNetwork(port uint16, newConnectionDelegate transport.NewConnectionDelegate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.port = port
	t.onNewConn = newConnectionDelegate
	t.bound = true
	return true
}

func (t *Transport) GetBoundPort() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port
}

func (t *Transport) ReleaseNetwork() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bound = false
}

// IsBound reports whether BindNetwork has been called without a
// matching ReleaseNetwork.
func (t *Transport) IsBound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound
}

// Accept hands a freshly-created Connection to whatever
// NewConnectionDelegate BindNetwork was given, as if a peer had just
// connected, and returns it so the test can Feed/inspect it.
func (t *Transport) Accept() *Connection {
	t.mu.Lock()
	onNewConn := t.onNewConn
	t.mu.Unlock()

	conn := NewConnection()
	if onNewConn != nil {
		onNewConn(conn)
	}

	return conn
}

// TimeSource is a transport.TimeSource a test advances by hand, instead
// of depending on wall-clock time — grounded on original_source's
// MockTimeKeeper.
type TimeSource struct {
	mu  sync.Mutex
	now float64
}

// NewTimeSource returns a TimeSource reading zero.
func NewTimeSource() *TimeSource {
	return &TimeSource{}
}

func (t *TimeSource) GetCurrentTime() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Advance moves the clock forward by seconds.
func (t *TimeSource) Advance(seconds float64) {
	t.mu.Lock()
	t.now += seconds
	t.mu.Unlock()
}

// Set pins the clock to an absolute time, in seconds.
func (t *TimeSource) Set(seconds float64) {
	t.mu.Lock()
	t.now = seconds
	t.mu.Unlock()
}
