package server

import (
	"github.com/indigo-web/reqengine/request"
	"github.com/indigo-web/reqengine/resource"
	"github.com/indigo-web/reqengine/response"
	"github.com/indigo-web/reqengine/status"
)

// parseAndRespondLoop implements spec §4.5's "Parse-and-respond loop".
// Called with s.mu held. It folds cs.buffer through the state machine
// until either the machine reports an unprocessed Request (more bytes
// needed) or a response closes the connection or upgrades it. The bool
// it returns tells the caller whether to call cs.conn.Break once s.mu
// has been released — Break must never be invoked while this lock is
// held, since a transport may synchronously fire the broken delegate
// from the same call stack (spec §9's reaper rationale applies equally
// here).
func (s *Server) parseAndRespondLoop(cs *connState) (pendingBreak bool) {
	limit := s.cfg.HeaderLineLimitValue()
	host := s.cfg.RequiredHost()

	for {
		n := cs.machine.Fold(cs.buffer, limit, host)
		cs.buffer = cs.buffer[n:]

		req := cs.machine.Request()
		if !req.Processed() {
			return false
		}

		trailer := cs.buffer

		resp, isUpgrade := s.buildResponse(cs, req, trailer)
		cs.conn.SendData(response.Serialize(resp))

		if isUpgrade {
			delete(s.established, cs.id)
			return false
		}

		if resp.HasConnectionClose() {
			cs.acceptingRequests = false
			return true
		}

		cs.machine = request.NewMachine(request.New())
		cs.timeLastRequestStarted = s.currentTimeLocked()
	}
}

// buildResponse implements spec §4.3's response-writer dispatch: canned
// 413/400/404 for the error/invalid/no-match paths, or the registered
// handler's own Response, finished off by response.Prepare. The second
// return is true exactly when the handler signaled a protocol upgrade
// (status 101, spec §4.4), in which case the caller must stop folding
// this connection's buffer for good.
func (s *Server) buildResponse(cs *connState, req *request.Request, trailer []byte) (*response.Response, bool) {
	connTokens := req.Headers.Tokens("Connection")

	if req.State == request.Error {
		var resp *response.Response
		if req.ResponseStatusCode == status.RequestEntityTooLarge {
			resp = response.PayloadTooLarge()
		} else {
			resp = response.BadRequest()
			resp.ForceConnectionClose()
		}

		response.Prepare(connTokens, resp)
		return resp, false
	}

	if !req.Valid {
		resp := response.BadRequest()
		response.Prepare(connTokens, resp)
		return resp, false
	}

	handlerVal, tail, found := s.tree.Lookup(req.Target.Path)
	if !found {
		resp := response.NotFound()
		response.Prepare(connTokens, resp)
		return resp, false
	}

	resource.RewriteTarget(req, tail)
	handler := handlerVal.(Handler)
	resp := handler(req, cs.conn, trailer)

	if resp.StatusCode() == status.SwitchingProtocols {
		return resp, true
	}

	response.Prepare(connTokens, resp)
	return resp, false
}
