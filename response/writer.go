package response

import (
	"strconv"

	"github.com/indigo-web/reqengine/status"
)

// Canned bodies, verbatim per spec §4.3/§8.
const notFoundBody = "BadRequest.\r\n"

// NotFound builds the engine's synthesized 404 — emitted when the
// resource tree finds no handler for a target.
func NotFound() *Response {
	return New().Code(status.NotFound).
		Header("Content-Type", "text/plain").
		String(notFoundBody)
}

// BadRequest builds the engine's synthesized 400 — emitted for every
// recoverable-invalid or unrecoverable Request outcome except the 413
// path (spec §4.3/§7).
func BadRequest() *Response {
	return New().Code(status.BadRequest).
		Header("Content-Type", "text/plain").
		String("Bad Request")
}

// PayloadTooLarge builds the engine's synthesized 413, with
// Connection: close already set (spec §4.3).
func PayloadTooLarge() *Response {
	r := New().Code(status.RequestEntityTooLarge).
		Header("Content-Type", "text/plain").
		String("Payload Too Large")
	r.ForceConnectionClose()
	return r
}

// RequestTimeout builds the synthetic 408 the timeout monitor injects
// (spec §4.7), with Connection: close set.
func RequestTimeout() *Response {
	r := New().Code(status.RequestTimeout).
		Header("Content-Type", "text/plain").
		String("Request Timeout")
	r.ForceConnectionClose()
	return r
}

// Prepare applies the response-writer fix-ups spec §4.3 describes for a
// handler-produced Response: Content-Length synthesis and the
// Connection: close echo. It is the only stateful step of an otherwise
// pure serialization pipeline (spec §9).
func Prepare(requestConnectionTokens []string, resp *Response) {
	resp.ensureContentLength()

	for _, tok := range requestConnectionTokens {
		if tok == "close" {
			resp.ForceConnectionClose()
			break
		}
	}
}

// Serialize renders resp to its wire form: status line, header block,
// blank line, body — per spec §4.3.
func Serialize(resp *Response) []byte {
	out := make([]byte, 0, 128+len(resp.body))

	out = append(out, "HTTP/1.1 "...)
	out = append(out, strconv.Itoa(int(resp.StatusCode()))...)
	out = append(out, ' ')
	out = append(out, resp.StatusPhrase()...)
	out = append(out, '\r', '\n')

	for _, p := range resp.headers.Unwrap() {
		out = append(out, p.Name...)
		out = append(out, ':', ' ')
		out = append(out, p.Value...)
		out = append(out, '\r', '\n')
	}

	out = append(out, '\r', '\n')
	out = append(out, resp.body...)

	return out
}
