package server

import (
	"github.com/indigo-web/reqengine/diagnostics"
	"github.com/indigo-web/reqengine/transport"
)

// onNewConnection is installed as the Transport's NewConnectionDelegate
// (spec §4.5 "New-connection handling"): record a fresh connState,
// initialize both timestamps to now, and install data-received/broken
// delegates that close over the connection's id rather than the
// connState itself.
func (s *Server) onNewConnection(conn transport.Connection) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++

	now := s.currentTimeLocked()
	cs := newConnState(id, conn, now)
	s.established[id] = cs
	s.mu.Unlock()

	conn.SetDataReceivedDelegate(s.makeDataDelegate(id))
	conn.SetConnectionBrokenDelegate(s.makeBrokenDelegate(id))

	s.diag.Publish(diagnostics.PerConnection, "connection accepted: "+conn.GetPeerId())
}

// makeDataDelegate returns the DataReceivedDelegate for connection id.
// It re-resolves id against the established map on every call, so a
// delegate that fires after the connection has already moved to broken
// (spec §9's weak back-reference race) simply drops the bytes.
func (s *Server) makeDataDelegate(id uint64) transport.DataReceivedDelegate {
	return func(data []byte) {
		s.mu.Lock()

		cs, ok := s.established[id]
		if !ok || !cs.acceptingRequests {
			s.mu.Unlock()
			return
		}

		cs.timeLastDataReceived = s.currentTimeLocked()
		cs.buffer = append(cs.buffer, data...)

		pendingBreak := s.parseAndRespondLoop(cs)

		s.mu.Unlock()

		if pendingBreak {
			cs.conn.Break(true)
		}
	}
}

// makeBrokenDelegate returns the BrokenDelegate for connection id —
// spec §4.5 "Broken-delegate handling": move the connState from
// established to broken and wake the reaper. A second firing (the
// engine itself initiated Break, and the transport also reports the
// peer closing) finds the id already gone and no-ops.
func (s *Server) makeBrokenDelegate(id uint64) transport.BrokenDelegate {
	return func() {
		s.mu.Lock()

		cs, ok := s.established[id]
		if ok {
			delete(s.established, id)
			s.broken[id] = cs
			s.reaperCond.Signal()
		}

		s.mu.Unlock()

		if ok {
			s.diag.Publish(diagnostics.PerConnection, "connection broken: "+cs.conn.GetPeerId())
		}
	}
}

// currentTimeLocked reads the time source. Called only while s.mu is
// held; falls back to 0 when dormant (no time source is set then, even
// though connections accepted before Demobilize may still deliver data).
func (s *Server) currentTimeLocked() float64 {
	if s.timeSource == nil {
		return 0
	}

	return s.timeSource.GetCurrentTime()
}
