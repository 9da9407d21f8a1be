// Package uri implements the request-target parser, external
// collaborator [B] in spec §2/§4.1. It decomposes a request-line target
// into path segments and an optional embedded host, and rewrites targets
// as the resource tree descends (§4.2).
package uri

import (
	"strings"

	"github.com/indigo-web/utils/uf"
)

// URI is a parsed request target: a sequence of path segments plus the
// host carried in an absolute-form target, if any.
type URI struct {
	Path []string
	Host string
}

// Parse decomposes a raw request-target into a URI. It accepts both
// origin-form ("/foo/bar") and absolute-form ("http://host/foo/bar")
// targets; query strings are dropped, as query parsing is out of this
// engine's scope (spec §1 Non-goals).
func Parse(raw string) (URI, bool) {
	if len(raw) == 0 {
		return URI{}, false
	}

	target := raw
	var host string

	if idx := strings.Index(target, "://"); idx >= 0 {
		rest := target[idx+3:]
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			host, target = rest, "/"
		} else {
			host, target = rest[:slash], rest[slash:]
		}
	}

	if target[0] != '/' {
		return URI{}, false
	}

	if q := strings.IndexByte(target, '?'); q >= 0 {
		target = target[:q]
	}

	return URI{Path: splitPath(target), Host: host}, true
}

// splitPath breaks a "/"-delimited path into its non-empty segments;
// the leading (and any trailing) empty segment produced by the leading
// "/" is stripped, per spec §4.2 ("strip a leading empty segment").
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))

	for _, p := range parts {
		if len(p) > 0 {
			segments = append(segments, p)
		}
	}

	return segments
}

// String reassembles the URI's path segments into a "/"-rooted path.
// Host is not included — it's carried separately, the same way the
// Host header is.
func (u URI) String() string {
	if len(u.Path) == 0 {
		return "/"
	}

	return "/" + strings.Join(u.Path, "/")
}

// Bytes is a zero-copy convenience for serializers that want []byte
// instead of string.
func (u URI) Bytes() []byte {
	return uf.S2B(u.String())
}

// WithPath returns a copy of u with its path segments replaced by tail
// — used by the resource tree to rewrite the target to the unmatched
// remainder before invoking a handler (spec §4.2).
func (u URI) WithPath(tail []string) URI {
	u.Path = tail
	return u
}
