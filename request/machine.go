package request

import (
	"bytes"
	"strings"

	"github.com/indigo-web/reqengine/headers"
	"github.com/indigo-web/reqengine/status"
	"github.com/indigo-web/reqengine/uri"
)

// maxContentLength is the compile-time ceiling spec §4.1 imposes on
// Content-Length; a value equal to it is still allowed.
const maxContentLength = 10_000_000

const protocolToken = "HTTP/1.1"

var crlf = []byte("\r\n")

// Machine drives one Request through RequestLine -> Headers -> Body ->
// Complete/Error. It is created once per in-flight request and discarded
// once that request is Processed — a fresh Machine (and Request) is
// created for whatever the connection parses next, per spec §4.5's
// "pop it (replace the in-flight Request with a fresh one)".
type Machine struct {
	req           *Request
	hp            *headers.Parser
	hasCL         bool
	contentLength uint64
	bodyCollected uint64
}

// NewMachine returns a Machine that will drive req.
func NewMachine(req *Request) *Machine {
	return &Machine{req: req}
}

// Request returns the Request this Machine is driving.
func (m *Machine) Request() *Request {
	return m.req
}

// Fold consumes a prefix of data and advances req's state as far as the
// available bytes allow, returning how many bytes were accepted — the
// caller erases that many bytes from its own buffer (spec §4.1: "A
// single call consumes a prefix of the buffer and returns the number of
// bytes accepted").
func (m *Machine) Fold(data []byte, headerLineLimit int, requiredHost string) (accepted int) {
	req := m.req

	if req.State == RequestLine {
		n, ok := m.foldRequestLine(data, headerLineLimit)
		accepted += n
		if !ok {
			return accepted
		}
	}

	if req.State == Headers {
		n := m.foldHeaders(data[accepted:], headerLineLimit, requiredHost)
		accepted += n
		if req.State == Headers {
			return accepted
		}
	}

	if req.State == Body {
		n := m.foldBody(data[accepted:])
		accepted += n
	}

	return accepted
}

// foldRequestLine handles the RequestLine phase. ok is false when the
// caller must wait for more bytes (state is still RequestLine) or when
// a fatal error left nothing further to fold this call.
func (m *Machine) foldRequestLine(data []byte, limit int) (accepted int, ok bool) {
	req := m.req

	idx := bytes.Index(data, crlf)
	if idx < 0 {
		if len(data) > limit {
			req.State = Error
			return 0, false
		}

		return 0, false
	}

	if idx > limit {
		req.State = Error
		return 0, false
	}

	line := data[:idx]
	accepted = idx + len(crlf)

	m.parseRequestLine(line)
	req.State = Headers
	m.hp = headers.NewParser(req.Headers)

	return accepted, true
}

func (m *Machine) parseRequestLine(line []byte) {
	req := m.req
	s := string(line)

	sp1 := strings.IndexByte(s, ' ')
	if sp1 <= 0 {
		req.Valid = false
		return
	}

	rest := s[sp1+1:]
	sp2 := strings.IndexByte(rest, ' ')
	if sp2 <= 0 {
		req.Valid = false
		return
	}

	method, target, proto := s[:sp1], rest[:sp2], rest[sp2+1:]
	if len(method) == 0 || len(target) == 0 {
		req.Valid = false
		return
	}

	req.Method = method

	parsed, ok := uri.Parse(target)
	if !ok {
		req.Valid = false
		return
	}
	req.Target = parsed

	if proto != protocolToken {
		req.Valid = false
	}
}

// foldHeaders delegates to the header parser collaborator [A] and, once
// it reports Complete, runs the Headers->Body semantic checks and
// immediately starts the Body phase against whatever's left in data.
func (m *Machine) foldHeaders(data []byte, limit int, requiredHost string) (accepted int) {
	req := m.req

	n, result := m.hp.Feed(data, limit)
	accepted = n

	switch result {
	case headers.Pending:
		return accepted
	case headers.Error:
		req.State = Error
		return accepted
	case headers.Complete:
		if !m.hp.Valid() {
			req.Valid = false
		}

		m.runSemanticChecks(requiredHost)
		m.enterBody()
		return accepted
	default:
		return accepted
	}
}

func (m *Machine) runSemanticChecks(requiredHost string) {
	req := m.req

	hostHeader, hasHost := req.Headers.Get("Host")
	if !hasHost {
		req.Valid = false
	}

	if len(req.Target.Host) > 0 && req.Target.Host != hostHeader {
		req.Valid = false
	}

	if len(requiredHost) > 0 && hostHeader != requiredHost {
		req.Valid = false
	}
}

// enterBody reads Content-Length (if present) and transitions to Body,
// or straight to Error for a malformed/oversized value (spec §4.1).
func (m *Machine) enterBody() {
	req := m.req
	req.State = Body

	raw, has := req.Headers.Get("Content-Length")
	if !has {
		return
	}

	value, overflowed, wellFormed := parseUint(raw)
	if !wellFormed {
		req.State = Error
		return
	}

	if overflowed || value > maxContentLength {
		req.State = Error
		req.ResponseStatusCode = status.RequestEntityTooLarge
		req.ResponseStatusPhrase = string(status.Text(status.RequestEntityTooLarge))
		return
	}

	m.hasCL = true
	m.contentLength = value
	req.Body = make([]byte, 0, value)
}

func (m *Machine) foldBody(data []byte) (accepted int) {
	req := m.req

	if !m.hasCL {
		req.State = Complete
		return 0
	}

	need := m.contentLength - m.bodyCollected
	avail := uint64(len(data))

	if avail < need {
		req.Body = append(req.Body, data...)
		m.bodyCollected += avail
		return len(data)
	}

	req.Body = append(req.Body, data[:need]...)
	req.State = Complete
	return int(need)
}

// parseUint parses an unsigned decimal integer, reporting a format
// failure separately from a magnitude overflow so callers can respond
// 400 to the former and 413 to the latter (spec §4.1/§9).
func parseUint(s string) (value uint64, overflowed, wellFormed bool) {
	if len(s) == 0 {
		return 0, false, false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false, false
		}

		d := uint64(c - '0')
		if overflowed {
			continue
		}

		if value > (^uint64(0)-d)/10 {
			overflowed = true
			continue
		}

		value = value*10 + d
	}

	return value, overflowed, true
}
