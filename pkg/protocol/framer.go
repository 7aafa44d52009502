package protocol

import (
	"bytes"
	"strings"
)

// Framer reassembles an arbitrarily chunked stream into newline-terminated
// lines. It holds only the tail after the last newline, so no line is
// emitted before its terminator arrives.
//
// A Framer belongs to a single connection and is not safe for concurrent use.
type Framer struct {
	buf []byte
}

// NewFramer creates an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push appends a chunk and returns every line it completed, in arrival
// order, without their terminating newline.
func (f *Framer) Push(chunk []byte) []string {
	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(f.buf[:i]))
		f.buf = f.buf[i+1:]
	}

	// Compact so the backing array does not grow with total stream size.
	if len(f.buf) == 0 {
		f.buf = f.buf[:0:0]
	} else if len(lines) > 0 {
		f.buf = append([]byte(nil), f.buf...)
	}
	return lines
}

// Pending returns the number of buffered bytes awaiting a newline.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// LineClass is the classification of a complete line.
type LineClass int

const (
	LineEmpty LineClass = iota
	LineCandidate
	LineDiagnostic
)

func (c LineClass) String() string {
	switch c {
	case LineCandidate:
		return "candidate"
	case LineDiagnostic:
		return "diagnostic"
	default:
		return "empty"
	}
}

// Classify trims a line and reports whether it is a candidate message
// (braced), diagnostic device output, or blank.
func Classify(line string) (string, LineClass) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return trimmed, LineEmpty
	case strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}"):
		return trimmed, LineCandidate
	default:
		return trimmed, LineDiagnostic
	}
}
