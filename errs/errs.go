// Package errs collects the sentinel errors the server's public surface
// returns, plus HTTPError for the one case where an error needs to
// carry a status code across the Mobilize boundary. The engine's
// internal parsing/routing collaborators deliberately don't use Go
// errors at all — parse outcomes flow through Request.state/valid and
// resource.Tree's nil-Unregister sentinel instead, per spec §3/§4 — so
// this package stays small.
package errs

import (
	"errors"

	"github.com/indigo-web/reqengine/status"
)

var (
	// ErrNoTransport is returned by Mobilize when called with a nil
	// transport.
	ErrNoTransport = errors.New("no transport configured")
	// ErrAlreadyMobilized is returned by Mobilize when the Server is
	// already active.
	ErrAlreadyMobilized = errors.New("server is already mobilized")
)

// HTTPError pairs a message with the status code it should produce.
type HTTPError struct {
	Code    status.Code
	Message string
}

func NewHTTPError(code status.Code, message string) HTTPError {
	return HTTPError{Code: code, Message: message}
}

func (e HTTPError) Error() string {
	return e.Message
}
