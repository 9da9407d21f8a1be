package headers

import "bytes"

// Result is the outcome of a single Parser.Feed call, mirroring the
// Complete/Incomplete/Error contract spec §4.1 requires of the header
// parser collaborator [A].
type Result int

const (
	Pending Result = iota
	Complete
	Error
)

// Parser incrementally folds bytes into a Headers map, one line at a
// time, tolerating arbitrary fragmentation: a line split across two
// Feed calls simply leaves the tail in the caller's buffer until the
// next call supplies the rest (the caller arranges this exactly as the
// request state machine does for the rest of the request).
type Parser struct {
	into  *Headers
	valid bool
	done  bool
}

// NewParser returns a Parser that will fill into as lines are parsed.
func NewParser(into *Headers) *Parser {
	return &Parser{into: into, valid: true}
}

// Valid reports whether every line parsed so far was well-formed. It is
// meaningful once Feed has returned Complete or Error.
func (p *Parser) Valid() bool {
	return p.valid
}

// Feed consumes as many complete header lines as data contains, stopping
// at the first incomplete line, at the blank line terminating the
// header block, or at a line exceeding limit. It returns the number of
// bytes accepted (to be erased from the caller's buffer) and the
// resulting state.
func (p *Parser) Feed(data []byte, limit int) (accepted int, result Result) {
	if p.done {
		return 0, Complete
	}

	for {
		rest := data[accepted:]

		idx := bytes.Index(rest, crlf)
		if idx < 0 {
			if len(rest) > limit {
				return accepted, Error
			}

			return accepted, Pending
		}

		if idx > limit {
			return accepted, Error
		}

		line := rest[:idx]
		accepted += idx + len(crlf)

		if len(line) == 0 {
			p.done = true
			return accepted, Complete
		}

		if !p.parseLine(line) {
			p.valid = false
		}
	}
}

func (p *Parser) parseLine(line []byte) (ok bool) {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return false
	}

	name := string(bytes.TrimSpace(line[:colon]))
	value := string(bytes.TrimSpace(line[colon+1:]))

	if len(name) == 0 {
		return false
	}

	p.into.Add(name, value)
	return true
}

var crlf = []byte("\r\n")
