package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogBufferWriter_SplitsLines(t *testing.T) {
	lb := NewLogBuffer(10)
	w := NewLogBufferWriter(lb)

	_, err := w.Write([]byte("2024-01-02T15:04:05.000 INFO  [monitor] sweeping every 2s\n2024-01-02T15:04:05.001 WARN  [sen"))
	require.NoError(t, err)
	require.Equal(t, 1, lb.Len(), "partial line is held back")

	_, err = w.Write([]byte("der] retrying\nplain text\n\n"))
	require.NoError(t, err)

	entries := lb.GetAll()
	require.Len(t, entries, 3)

	require.Equal(t, "monitor", entries[0].Source)
	require.Equal(t, "sweeping every 2s", entries[0].Message)

	require.Equal(t, "sender", entries[1].Source)
	require.Equal(t, "WARN retrying", entries[1].Message)

	require.Equal(t, "system", entries[2].Source)
	require.Equal(t, "plain text", entries[2].Message)
}
