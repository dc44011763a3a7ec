package failover

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Status is the outcome reported by a liveness signal.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

// MaxSignalSize is the largest accepted liveness datagram, in bytes.
const MaxSignalSize = 64

// Signal is a liveness message from the active Producer to the Monitor.
// Wire format: "<status>:<count>" as UTF-8 text in a single datagram.
// It carries no producer identity.
type Signal struct {
	Status Status
	Count  uint64
}

// Success builds a "success:<count>" signal.
func Success(count uint64) Signal {
	return Signal{Status: StatusSuccess, Count: count}
}

// Fail builds a "fail:<count>" signal.
func Fail(count uint64) Signal {
	return Signal{Status: StatusFail, Count: count}
}

// String renders the wire form.
func (s Signal) String() string {
	return string(s.Status) + ":" + strconv.FormatUint(s.Count, 10)
}

// Bytes renders the wire form as a datagram payload.
func (s Signal) Bytes() []byte {
	return []byte(s.String())
}

// ParseSignal decodes the wire form. Surrounding whitespace is ignored so that
// hand-sent datagrams (e.g. from netcat) with a trailing newline are accepted.
// Input longer than MaxSignalSize is rejected whole, never read as a prefix.
func ParseSignal(raw []byte) (Signal, error) {
	if len(raw) > MaxSignalSize {
		return Signal{}, fmt.Errorf("%w: %d bytes, limit %d", ErrMalformedSignal, len(raw), MaxSignalSize)
	}
	if !utf8.Valid(raw) {
		return Signal{}, fmt.Errorf("%w: not valid UTF-8", ErrMalformedSignal)
	}

	fields := strings.Split(strings.TrimSpace(string(raw)), ":")
	if len(fields) != 2 {
		return Signal{}, fmt.Errorf("%w: %q has %d fields, want 2", ErrMalformedSignal, raw, len(fields))
	}

	status := Status(fields[0])
	if status != StatusSuccess && status != StatusFail {
		return Signal{}, fmt.Errorf("%w: %q", ErrUnknownStatus, fields[0])
	}

	count, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %q: %v", ErrInvalidCount, fields[1], err)
	}

	return Signal{Status: status, Count: count}, nil
}
