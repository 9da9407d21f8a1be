package server

import (
	"strings"

	"github.com/indigo-web/reqengine/diagnostics"
	"github.com/indigo-web/reqengine/request"
	"github.com/indigo-web/reqengine/resource"
	"github.com/indigo-web/reqengine/response"
	"github.com/indigo-web/reqengine/transport"
)

// Handler is the resource delegate contract spec §6 describes: req has
// its target already rewritten to the unmatched path tail; conn is the
// same Connection bound to the delivering connection, captured by
// handlers that intend to upgrade; trailer carries whatever bytes are
// still buffered after this request (after its body, if it had one).
// Those may be the start of a pipelined request, which the engine goes
// on to parse itself, or the first post-upgrade bytes, which it leaves
// to the handler when the response is a protocol upgrade (status 101).
type Handler func(req *request.Request, conn transport.Connection, trailer []byte) *response.Response

// Register installs handler at path in the server's resource tree.
// Registration fails — returning a nil resource.Unregister — under the
// overlap rules spec §4.2 enforces. A successful registration publishes
// a ConfigChange diagnostic (spec §6); the returned Unregister publishes
// one too, on the call that actually revokes it.
func (s *Server) Register(path []string, handler Handler) resource.Unregister {
	unregister := s.tree.Register(path, handler)
	if unregister == nil {
		return nil
	}

	joined := "/" + strings.Join(path, "/")
	s.diag.Publish(diagnostics.ConfigChange, "resource registered: "+joined)

	revoked := false
	return func() {
		if revoked {
			return
		}
		revoked = true

		unregister()
		s.diag.Publish(diagnostics.ConfigChange, "resource unregistered: "+joined)
	}
}
