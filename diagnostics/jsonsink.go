package diagnostics

import (
	"io"
	"sync"

	json "github.com/json-iterator/go"
)

// JSONSink renders each diagnostic Message it receives as one JSON
// object per line, written to w. Grounded on the teacher's use of
// json-iterator as a drop-in encoding/json replacement (http/body.go,
// http/response.go) — same API, faster reflection-free codec.
type JSONSink struct {
	mu  sync.Mutex
	w   io.Writer
	api json.API
}

// NewJSONSink returns a sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, api: json.ConfigCompatibleWithStandardLibrary}
}

// Write is a Subscriber: pass it directly to Sender.Subscribe.
func (s *JSONSink) Write(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := s.api.NewEncoder(s.w)
	if err := enc.Encode(msg); err != nil {
		return
	}
}
