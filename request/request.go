// Package request implements the Request value (spec §3) and the
// incremental state machine that folds connection bytes into it (spec
// §4.1), external collaborator [C]. The state machine shares one Request
// across however many Fold calls it takes to complete it — exactly the
// coupling spec §1 calls out between the parser and the byte-to-response
// pipeline.
package request

import (
	"github.com/indigo-web/reqengine/headers"
	"github.com/indigo-web/reqengine/status"
	"github.com/indigo-web/reqengine/uri"
)

// State is one of the five phases a Request passes through.
type State uint8

const (
	RequestLine State = iota
	Headers
	Body
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case RequestLine:
		return "RequestLine"
	case Headers:
		return "Headers"
	case Body:
		return "Body"
	case Complete:
		return "Complete"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Request is one in-flight client request. The zero value is not ready
// for use; construct with New.
type Request struct {
	Method  string
	Target  uri.URI
	Headers *headers.Headers
	Body    []byte

	// Valid is false when a recoverable semantic check failed but
	// parsing still progressed to Complete (spec §7: bad request line,
	// bad protocol, damaged header, missing/mismatched Host).
	Valid bool

	State State

	// ResponseStatusCode/ResponseStatusPhrase are seeded with 400/"Bad
	// Request" and only overwritten together, in the Content-Length
	// overflow/ceiling path (spec §9; original_source's IServer.hpp
	// documents the pair as set together exactly once).
	ResponseStatusCode   status.Code
	ResponseStatusPhrase string
}

// New returns an empty Request ready to be fed to a Machine.
func New() *Request {
	return &Request{
		Headers:              headers.New(16),
		Valid:                true,
		State:                RequestLine,
		ResponseStatusCode:   status.BadRequest,
		ResponseStatusPhrase: string(status.Text(status.BadRequest)),
	}
}

// Processed reports whether parsing has reached a terminal state,
// matching original_source's IServer::Request::IsProcessed().
func (r *Request) Processed() bool {
	return r.State == Complete || r.State == Error
}
