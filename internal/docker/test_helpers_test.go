package docker_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	buf bytes.Buffer
}

func newMockWriter() *mockWriter {
	return &mockWriter{}
}

func (m *mockWriter) Print(v ...any) { fmt.Fprint(&m.buf, v...) }
func (m *mockWriter) Info(msg string, args ...any) {
	fmt.Fprintln(&m.buf, append([]any{"INFO", msg}, args...)...)
}
func (m *mockWriter) Warn(msg string, args ...any) {
	fmt.Fprintln(&m.buf, append([]any{"WARN", msg}, args...)...)
}
func (m *mockWriter) String() string { return m.buf.String() }

// buildStream encodes messages the way the daemon streams build output.
func buildStream(t *testing.T, messages ...map[string]any) []byte {
	t.Helper()

	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	for _, message := range messages {
		require.NoError(t, encoder.Encode(message))
	}
	return out.Bytes()
}

// staticContext is a build context with fixed content.
type staticContext []byte

func (s staticContext) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s)
	return int64(n), err
}

// failingContext is a build context that cannot be written.
type failingContext struct {
	err error
}

func (f failingContext) WriteTo(io.Writer) (int64, error) {
	return 0, f.err
}
