// Package response implements the Response value and the stateless
// writer described in spec §4.3 — external collaborator [F]. Grounded on
// the teacher's fluent builder (http/response.go, used e.g. as
// `resp.Code(status.SwitchingProtocols).Header("Connection", "upgrade")`
// in internal/server/http/http.go) and its serializer
// (internal/protocol/http1/serializer.go).
package response

import (
	"strconv"

	"github.com/indigo-web/reqengine/headers"
	"github.com/indigo-web/reqengine/status"
)

// Response is what a resource handler returns. The zero value is not
// ready for use; construct with New.
type Response struct {
	code    status.Code
	phrase  string
	headers *headers.Headers
	body    []byte
}

// New returns an empty 200 OK Response with no headers and no body.
func New() *Response {
	return &Response{
		code:    status.OK,
		headers: headers.New(4),
	}
}

// Code sets the status code. The reason phrase is derived from the
// status table unless overridden with Phrase.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

// Phrase overrides the reason phrase status.Text(Code) would otherwise
// supply.
func (r *Response) Phrase(phrase string) *Response {
	r.phrase = phrase
	return r
}

// Header appends a response header. Like request headers, a name may
// repeat; both values are sent.
func (r *Response) Header(name, value string) *Response {
	r.headers.Add(name, value)
	return r
}

// Bytes sets the response body.
func (r *Response) Bytes(body []byte) *Response {
	r.body = body
	return r
}

// String sets the response body from a string.
func (r *Response) String(body string) *Response {
	r.body = []byte(body)
	return r
}

// StatusCode returns the response's status code.
func (r *Response) StatusCode() status.Code {
	return r.code
}

// StatusPhrase returns the effective reason phrase.
func (r *Response) StatusPhrase() string {
	if len(r.phrase) > 0 {
		return r.phrase
	}

	return string(status.Text(r.code))
}

// Headers exposes the response's header map for inspection or
// in-place mutation (used by the writer to fill in Content-Length and
// echo Connection: close).
func (r *Response) Headers() *headers.Headers {
	return r.headers
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// ensureContentLength adds a Content-Length header sized to the body
// when the body is non-empty and the handler set neither Content-Length
// nor Transfer-Encoding itself (spec §4.3).
func (r *Response) ensureContentLength() {
	if len(r.body) == 0 {
		return
	}

	if r.headers.Has("Content-Length") || r.headers.Has("Transfer-Encoding") {
		return
	}

	r.headers.Add("Content-Length", strconv.Itoa(len(r.body)))
}

// HasConnectionClose reports whether the response's Connection header
// already carries the close token.
func (r *Response) HasConnectionClose() bool {
	return r.headers.HasToken("Connection", "close")
}

// ForceConnectionClose appends the close token to Connection unless it's
// already present.
func (r *Response) ForceConnectionClose() {
	if !r.HasConnectionClose() {
		r.headers.Add("Connection", "close")
	}
}
