package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "LEVEL(9)", Level(9).String())
}

// The global logger is initialised once per process, so all behaviour that
// depends on it is exercised in one test.
func TestGlobalLogger(t *testing.T) {
	Init("", false)
	lb := NewLogBuffer(10)
	w := NewLogBufferWriter(lb)
	require.NoError(t, AddOutput(w))
	defer func() { require.NoError(t, RemoveOutput(w)) }()

	require.NoError(t, SetLevel(LevelInfo))
	For("monitor").Debugf("hidden")
	For("monitor").Infof("armed at count %d", 3)
	For("sender").Errorf("sink down")
	require.Equal(t, 2, lb.Len())

	entries := lb.GetAll()
	require.Equal(t, "monitor", entries[0].Source)
	require.Equal(t, "armed at count 3", entries[0].Message)
	require.Equal(t, "sender", entries[1].Source)
	require.Equal(t, "ERROR sink down", entries[1].Message)

	require.NoError(t, SetEnabled(false))
	Infof("dropped")
	require.NoError(t, SetEnabled(true))
	require.Equal(t, 2, lb.Len())
}
