package node

import "errors"

var (
	ErrIPRequired         = errors.New("ip is required")
	ErrPortRequired       = errors.New("port is required")
	ErrInvalidPort        = errors.New("port must be a number between 0 and 65535")
	ErrInvalidInterval    = errors.New("interval must be positive")
	ErrInvalidMultiplier  = errors.New("retry multiplier must be at least 1")
	ErrInvalidMode        = errors.New("invalid mode")
	ErrNodeAlreadyRunning = errors.New("node already running")
	ErrNodeNotRunning     = errors.New("node not running")
)
