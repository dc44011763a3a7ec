package failover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sig, err := ParseSignal([]byte("success:42"))
		require.NoError(t, err)
		require.Equal(t, Success(42), sig)
	})

	t.Run("fail", func(t *testing.T) {
		sig, err := ParseSignal([]byte("fail:5"))
		require.NoError(t, err)
		require.Equal(t, Fail(5), sig)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		sig, err := ParseSignal([]byte(" success:3\n"))
		require.NoError(t, err)
		require.Equal(t, Success(3), sig)
	})

	t.Run("max uint64", func(t *testing.T) {
		sig, err := ParseSignal([]byte("success:18446744073709551615"))
		require.NoError(t, err)
		require.Equal(t, uint64(18446744073709551615), sig.Count)
	})
}

func TestParseSignal_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrMalformedSignal},
		{"no colon", "success", ErrMalformedSignal},
		{"two colons", "success:1:2", ErrMalformedSignal},
		{"only colons", "::", ErrMalformedSignal},
		{"non numeric count", "success:abc", ErrInvalidCount},
		{"negative count", "fail:-1", ErrInvalidCount},
		{"empty count", "success:", ErrInvalidCount},
		{"overflow", "success:18446744073709551616", ErrInvalidCount},
		{"unknown status", "alive:1", ErrUnknownStatus},
		{"status case", "SUCCESS:1", ErrUnknownStatus},
		{"invalid utf8", "\xff\xfe:1", ErrMalformedSignal},
		{"oversized", "success:1" + strings.Repeat(" ", 60) + ":2", ErrMalformedSignal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSignal([]byte(tt.raw))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignal_String(t *testing.T) {
	require.Equal(t, "success:0", Success(0).String())
	require.Equal(t, "fail:17", Fail(17).String())

	sig, err := ParseSignal(Fail(17).Bytes())
	require.NoError(t, err)
	require.Equal(t, Fail(17), sig)
}
