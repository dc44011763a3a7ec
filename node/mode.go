package node

import "fmt"

// Mode selects what a process runs.
type Mode string

const (
	ModeSender   Mode = "Sender"
	ModeFailover Mode = "Failover"
	ModeReceiver Mode = "Receiver"
)

// Modes lists the valid modes in start order for a local cluster.
var Modes = []Mode{ModeReceiver, ModeFailover, ModeSender}

// ParseMode matches s exactly against the known modes.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSender, ModeFailover, ModeReceiver:
		return m, nil
	default:
		return "", fmt.Errorf("%w %s", ErrInvalidMode, s)
	}
}
