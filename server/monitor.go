package server

import (
	"time"

	"github.com/indigo-web/reqengine/diagnostics"
	"github.com/indigo-web/reqengine/response"
)

// monitorPeriod is the timeout monitor's polling interval (spec §4.7).
const monitorPeriod = 50 * time.Millisecond

// timeoutMonitorLoop implements spec §4.7. It runs only while the
// server is mobilized — started by Mobilize, joined by Demobilize —
// waking every monitorPeriod to scan every established connection for
// inactivity or whole-request-duration overruns.
func (s *Server) timeoutMonitorLoop() {
	ticker := time.NewTicker(monitorPeriod)
	defer ticker.Stop()
	defer close(s.monitorDone)

	for {
		select {
		case <-s.stopMonitor:
			return
		case <-ticker.C:
			s.checkTimeouts()
		}
	}
}

// checkTimeouts scans every established connection once, sending a 408
// and initiating a close for each one that has overrun its inactivity
// or request bound. Connections to break are collected and Break is
// called on each only after s.mu is released, for the same reason
// parseAndRespondLoop defers its own Break calls (spec §9).
func (s *Server) checkTimeouts() {
	s.mu.Lock()

	inactivity := s.cfg.InactivityTimeoutValue().Seconds()
	whole := s.cfg.RequestTimeoutValue().Seconds()
	now := s.currentTimeLocked()

	var toBreak []*connState

	for _, cs := range s.established {
		if !cs.acceptingRequests {
			continue
		}

		timedOut := now-cs.timeLastDataReceived > inactivity ||
			now-cs.timeLastRequestStarted > whole

		if !timedOut {
			continue
		}

		resp := response.RequestTimeout()
		cs.conn.SendData(response.Serialize(resp))
		cs.acceptingRequests = false
		toBreak = append(toBreak, cs)
	}

	s.mu.Unlock()

	for _, cs := range toBreak {
		s.diag.Publish(diagnostics.PerRequest, "request timed out: "+cs.conn.GetPeerId())
		cs.conn.Break(true)
	}
}
