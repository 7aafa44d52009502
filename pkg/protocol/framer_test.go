package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramerSplitsCompleteLines(t *testing.T) {
	f := NewFramer()

	lines := f.Push([]byte("L1\nL2\nL3\npart"))

	assert.Equal(t, []string{"L1", "L2", "L3"}, lines)
	assert.Equal(t, len("part"), f.Pending())
}

func TestFramerHoldsPartialLine(t *testing.T) {
	f := NewFramer()

	assert.Empty(t, f.Push([]byte(`{"type":"sing`)))
	assert.Empty(t, f.Push([]byte(`le_point","open":1,`)))
	lines := f.Push([]byte(`"close":2}` + "\n"))

	assert.Equal(t, []string{`{"type":"single_point","open":1,"close":2}`}, lines)
	assert.Zero(t, f.Pending())
}

// Every way of cutting the stream into chunks must yield the same lines.
func TestFramerChunkBoundaryIndependence(t *testing.T) {
	const stream = "L1\nL2\nL3\npartial"
	want := []string{"L1", "L2", "L3"}

	for size := 1; size <= len(stream); size++ {
		f := NewFramer()
		var got []string
		for i := 0; i < len(stream); i += size {
			end := min(i+size, len(stream))
			got = append(got, f.Push([]byte(stream[i:end]))...)
		}
		assert.Equal(t, want, got, "chunk size %d", size)
		assert.Equal(t, len("partial"), f.Pending(), "chunk size %d", size)
	}

	// Two-cut splits cover uneven boundaries.
	for i := 0; i <= len(stream); i++ {
		for j := i; j <= len(stream); j++ {
			f := NewFramer()
			var got []string
			got = append(got, f.Push([]byte(stream[:i]))...)
			got = append(got, f.Push([]byte(stream[i:j]))...)
			got = append(got, f.Push([]byte(stream[j:]))...)
			assert.Equal(t, want, got, "cuts at %d,%d", i, j)
		}
	}
}

func TestFramerPartialEmittedOnceTerminated(t *testing.T) {
	f := NewFramer()

	assert.Equal(t, []string{"L1"}, f.Push([]byte("L1\npar")))
	assert.Empty(t, f.Push([]byte("tial")))
	assert.Equal(t, []string{"partial"}, f.Push([]byte("\n")))
}

func TestFramerMultibyteSplit(t *testing.T) {
	f := NewFramer()
	text := []byte("Température ok\n")

	// Cut inside the two-byte é.
	cut := strings.Index(string(text), "é") + 1
	assert.Empty(t, f.Push(text[:cut]))
	assert.Equal(t, []string{"Température ok"}, f.Push(text[cut:]))
}

func TestFramerEmptyLines(t *testing.T) {
	f := NewFramer()

	assert.Equal(t, []string{"", "x", ""}, f.Push([]byte("\nx\n\n")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line    string
		trimmed string
		class   LineClass
	}{
		{`{"type":"metadata"}`, `{"type":"metadata"}`, LineCandidate},
		{"  {\"a\":1}\r", `{"a":1}`, LineCandidate},
		{"{not json}", "{not json}", LineCandidate},
		{"not-json", "not-json", LineDiagnostic},
		{"Sensor calibrated {ok}x", "Sensor calibrated {ok}x", LineDiagnostic},
		{"{unterminated", "{unterminated", LineDiagnostic},
		{"", "", LineEmpty},
		{" \t\r", "", LineEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			trimmed, class := Classify(tt.line)
			assert.Equal(t, tt.trimmed, trimmed)
			assert.Equal(t, tt.class, class)
		})
	}
}
