// Package headers implements the case-insensitive, multi-valued,
// order-preserving header map spec §3 requires of Request.headers.
// It is grounded on the teacher's generic KeyValue pair store
// (internal/datastruct/keyvalues.go), narrowed to the header use case and
// adding the per-line length limit the header parser enforces.
package headers

import (
	"strings"

	"github.com/indigo-web/iter"
	"github.com/indigo-web/utils/strcomp"
)

// Pair is a single header line's name and value.
type Pair struct {
	Name, Value string
}

// Headers stores header lines in the order they were parsed. Lookups are
// case-insensitive per RFC 9110 §5.1; a name may repeat, and all of its
// values are preserved.
type Headers struct {
	pairs    []Pair
	valsBuff []string
}

// New returns an empty Headers with room for n pairs pre-allocated.
func New(n int) *Headers {
	return &Headers{pairs: make([]Pair, 0, n)}
}

// Add appends a new name/value pair. It never overwrites an existing
// entry with the same name — that's what multi-valued means.
func (h *Headers) Add(name, value string) {
	h.pairs = append(h.pairs, Pair{Name: name, Value: value})
}

// Get returns the first value stored under name.
func (h *Headers) Get(name string) (string, bool) {
	for _, p := range h.pairs {
		if strcomp.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}

	return "", false
}

// Value returns the first value stored under name, or "" if absent.
func (h *Headers) Value(name string) string {
	v, _ := h.Get(name)
	return v
}

// Has reports whether name was seen at least once.
func (h *Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Values returns every value stored under name, in arrival order.
//
// The returned slice is reused by the next call; copy it if it must
// outlive that call.
func (h *Headers) Values(name string) []string {
	h.valsBuff = h.valsBuff[:0]

	for _, p := range h.pairs {
		if strcomp.EqualFold(p.Name, name) {
			h.valsBuff = append(h.valsBuff, p.Value)
		}
	}

	return h.valsBuff
}

// Tokens splits every value stored under name on commas, trims
// surrounding whitespace off each token, and returns the flattened list.
// Used for comma-separated header fields such as Connection.
func (h *Headers) Tokens(name string) []string {
	var tokens []string

	for _, v := range h.Values(name) {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if len(tok) > 0 {
				tokens = append(tokens, tok)
			}
		}
	}

	return tokens
}

// HasToken reports whether name's comma-split values contain token,
// compared case-insensitively (e.g. Connection: close).
func (h *Headers) HasToken(name, token string) bool {
	for _, tok := range h.Tokens(name) {
		if strcomp.EqualFold(tok, token) {
			return true
		}
	}

	return false
}

// Len returns the number of pairs stored.
func (h *Headers) Len() int {
	return len(h.pairs)
}

// Iter returns an iterator over the pairs in insertion order.
func (h *Headers) Iter() iter.Iterator[Pair] {
	return iter.Slice(h.pairs)
}

// Unwrap reveals the underlying pair slice, in insertion order. Used by
// the response writer to serialize headers without forcing every caller
// through the Iterator interface. Try to avoid it where Get/Values/Has
// will do.
func (h *Headers) Unwrap() []Pair {
	return h.pairs
}

// Clear empties the map without releasing the backing array, so the same
// Headers can be reused for the next request on a connection.
func (h *Headers) Clear() {
	h.pairs = h.pairs[:0]
}
