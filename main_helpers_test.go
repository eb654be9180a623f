package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// useBufferWriters swaps stdOut/stdErr with in-memory buffers for the duration
// of a test, allowing assertions on CLI output without polluting test logs.
func useBufferWriters(t *testing.T) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	prevOut := stdOut
	prevErr := stdErr

	stdOut = outBuf
	stdErr = errBuf

	t.Cleanup(func() {
		stdOut = prevOut
		stdErr = prevErr
	})
}

// useStdin feeds input to prompts read from stdIn.
func useStdin(t *testing.T, input string) {
	t.Helper()
	prev := stdIn
	stdIn = io.Reader(strings.NewReader(input))
	t.Cleanup(func() { stdIn = prev })
}

// stdOutBuffer returns the in-use stdout buffer when useBufferWriters is active.
func stdOutBuffer() *bytes.Buffer {
	buf, _ := stdOut.(*bytes.Buffer)
	return buf
}

// stdErrBuffer returns the in-use stderr buffer when useBufferWriters is active.
func stdErrBuffer() *bytes.Buffer {
	buf, _ := stdErr.(*bytes.Buffer)
	return buf
}

// resetBuffers clears captured output between consecutive run calls.
func resetBuffers() {
	stdOutBuffer().Reset()
	stdErrBuffer().Reset()
}
