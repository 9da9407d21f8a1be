// Package server implements the engine's core orchestration, spec
// §4.5/§5: the single-mutex Server that owns the connection set, the
// resource tree, and the configuration, and drives the reaper and
// timeout monitor background tasks. Grounded stylistically on the
// teacher's transport.Supervisor (channel-signaled stop, one goroutine
// per background task) and semantically on original_source's Http::
// Server (Mobilize/Demobilize, SubscribeToDiagnostics) — the
// delegate-driven, mutex-coordinated concurrency model original_source
// describes has no equivalent in the teacher, whose transport instead
// blocks one goroutine per connection in net.Conn.Read.
package server

import (
	"sync"

	"github.com/indigo-web/reqengine/config"
	"github.com/indigo-web/reqengine/diagnostics"
	"github.com/indigo-web/reqengine/errs"
	"github.com/indigo-web/reqengine/request"
	"github.com/indigo-web/reqengine/resource"
	"github.com/indigo-web/reqengine/status"
	"github.com/indigo-web/reqengine/transport"
)

// Server is the engine's top-level object — one per embedder, per spec
// §3. The zero value is not usable; construct with New.
type Server struct {
	mu         sync.Mutex
	reaperCond *sync.Cond

	cfg  config.Configuration
	tree *resource.Tree
	diag *diagnostics.Sender

	transport  transport.Transport
	timeSource transport.TimeSource

	nextID      uint64
	established map[uint64]*connState
	broken      map[uint64]*connState

	mobilized bool

	stopReaper  chan struct{}
	reaperDone  chan struct{}
	stopMonitor chan struct{}
	monitorDone chan struct{}
}

// New returns a dormant Server configured by cfg.
func New(cfg config.Configuration) *Server {
	s := &Server{
		cfg:         cfg,
		tree:        resource.New(),
		diag:        diagnostics.NewSender("Http::Server"),
		established: make(map[uint64]*connState),
		broken:      make(map[uint64]*connState),
		stopReaper:  make(chan struct{}),
		reaperDone:  make(chan struct{}),
	}
	s.reaperCond = sync.NewCond(&s.mu)

	go s.reaperLoop()

	return s
}

// Diagnostics exposes the server's diagnostic publisher, per spec §6.
func (s *Server) Diagnostics() *diagnostics.Sender {
	return s.diag
}

// Mobilize binds tr on cfg's configured port and starts the timeout
// monitor. It returns errs.ErrNoTransport for a nil tr,
// errs.ErrAlreadyMobilized when already active, and an errs.HTTPError
// if the port could not be bound.
func (s *Server) Mobilize(tr transport.Transport, timeSource transport.TimeSource) error {
	if tr == nil {
		return errs.ErrNoTransport
	}

	s.mu.Lock()
	if s.mobilized {
		s.mu.Unlock()
		return errs.ErrAlreadyMobilized
	}

	s.transport = tr
	s.timeSource = timeSource
	s.mu.Unlock()

	if !tr.BindNetwork(s.cfg.ListenPort(), s.onNewConnection) {
		return errs.NewHTTPError(status.InternalServerError, "could not bind the configured port")
	}

	s.mu.Lock()
	s.mobilized = true
	s.stopMonitor = make(chan struct{})
	s.monitorDone = make(chan struct{})
	s.mu.Unlock()

	go s.timeoutMonitorLoop()

	s.diag.Publish(diagnostics.Lifecycle, "mobilized")

	return nil
}

// Demobilize stops the timeout monitor and releases the transport,
// returning the server to the dormant state. It may be called more
// than once. The reaper keeps running — per spec §4.5, it is only
// joined when the Server itself is discarded.
func (s *Server) Demobilize() {
	s.mu.Lock()
	if !s.mobilized {
		s.mu.Unlock()
		return
	}
	s.mobilized = false
	stopMonitor := s.stopMonitor
	monitorDone := s.monitorDone
	tr := s.transport
	s.transport = nil
	s.timeSource = nil
	s.mu.Unlock()

	close(stopMonitor)
	<-monitorDone

	if tr != nil {
		tr.ReleaseNetwork()
	}

	s.diag.Publish(diagnostics.Lifecycle, "demobilized")
}

// Close joins the reaper, for callers that will never reuse this
// Server again.
func (s *Server) Close() {
	s.Demobilize()

	close(s.stopReaper)

	s.mu.Lock()
	s.reaperCond.Broadcast()
	s.mu.Unlock()

	<-s.reaperDone
}

// GetBoundPort returns the transport's actual bound port, or 0 when
// dormant.
func (s *Server) GetBoundPort() uint16 {
	s.mu.Lock()
	tr := s.transport
	s.mu.Unlock()

	if tr == nil {
		return 0
	}

	return tr.GetBoundPort()
}

// ParseRequest is the stateless convenience spec §5 describes: it
// parses rawRequest against the server's configured HeaderLineLimit and
// Host without touching any connection state, taking the mutex only to
// read those two settings. Safe to call from any thread, mobilized or
// not.
func (s *Server) ParseRequest(rawRequest []byte) *request.Request {
	s.mu.Lock()
	limit := s.cfg.HeaderLineLimitValue()
	host := s.cfg.RequiredHost()
	s.mu.Unlock()

	req := request.New()
	machine := request.NewMachine(req)
	machine.Fold(rawRequest, limit, host)

	return req
}
