// Package tcpnet implements transport.Transport and transport.Connection
// over real TCP sockets, grounded on the teacher's transport.TCP
// (transport/tcp.go): an Accept loop running in its own goroutine per
// listener, and one reader goroutine per accepted connection feeding
// its delegate. Where the teacher's TCP.Listen blocks the caller for
// the life of the listener and invokes a handler callback per conn,
// this Transport returns immediately from BindNetwork and drives
// NewConnectionDelegate from a background goroutine instead — the
// delegate model spec §2/§4.5 requires.
package tcpnet

import (
	"net"
	"strconv"
	"sync"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/reqengine/transport"
)

const readBufferSize = 4096

// Transport binds a single TCP listener and reports every accepted
// connection to the delegate given to BindNetwork.
type Transport struct {
	mu sync.Mutex
	ln net.Listener
}

// New returns an unbound Transport.
func New() *Transport {
	return new(Transport)
}

func (t *Transport) BindNetwork(port uint16, newConnectionDelegate transport.NewConnectionDelegate) bool {
	ln, err := net.Listen("tcp", portAddr(port))
	if err != nil {
		return false
	}

	t.mu.Lock()
	t.ln = ln
	t.mu.Unlock()

	go t.acceptLoop(ln, newConnectionDelegate)

	return true
}

func (t *Transport) acceptLoop(ln net.Listener, newConnectionDelegate transport.NewConnectionDelegate) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}

		c := newConnection(conn)
		if newConnectionDelegate != nil {
			newConnectionDelegate(c)
		}

		go c.readLoop()
	}
}

func (t *Transport) GetBoundPort() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ln == nil {
		return 0
	}

	return uint16(t.ln.Addr().(*net.TCPAddr).Port)
}

func (t *Transport) ReleaseNetwork() {
	t.mu.Lock()
	ln := t.ln
	t.ln = nil
	t.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
}

func portAddr(port uint16) string {
	return net.JoinHostPort("", strconv.Itoa(int(port)))
}

// Connection wraps one accepted net.Conn, translating its blocking
// Read calls into DataReceivedDelegate invocations on a dedicated
// goroutine, per spec §4.5's "the engine never blocks the caller on
// I/O" framing.
type Connection struct {
	mu sync.Mutex

	conn    net.Conn
	peerID  string
	onData  transport.DataReceivedDelegate
	onBreak transport.BrokenDelegate
	broken  bool
}

func newConnection(conn net.Conn) *Connection {
	return &Connection{
		conn:   conn,
		peerID: peerID(conn),
	}
}

// peerID identifies the connection by its remote address, disambiguated
// with a short random suffix — grounded on the teacher's test-only use
// of uniuri for generating unique identifiers, extended here to name
// live connections for diagnostics (spec §6).
func peerID(conn net.Conn) string {
	addr := ""
	if conn.RemoteAddr() != nil {
		addr = conn.RemoteAddr().String()
	}

	return addr + "-" + uniuri.NewLen(6)
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
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_, _ = conn.Write(data)
	}
}

func (c *Connection) Break(clean bool) {
	c.mu.Lock()
	already := c.broken
	c.broken = true
	c.mu.Unlock()

	if already {
		return
	}

	_ = c.conn.Close()
	c.fireBroken()
}

func (c *Connection) fireBroken() {
	c.mu.Lock()
	onBreak := c.onBreak
	c.mu.Unlock()

	if onBreak != nil {
		onBreak()
	}
}

func (c *Connection) readLoop() {
	buf := make([]byte, readBufferSize)

	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.mu.Lock()
			onData := c.onData
			c.mu.Unlock()

			if onData != nil {
				onData(append([]byte(nil), buf[:n]...))
			}
		}

		if err != nil {
			c.mu.Lock()
			already := c.broken
			c.broken = true
			c.mu.Unlock()

			if !already {
				c.fireBroken()
			}

			return
		}
	}
}
