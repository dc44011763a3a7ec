package failover

import "errors"

var (
	// ErrMalformedSignal is returned when a liveness message is not "<status>:<count>".
	ErrMalformedSignal = errors.New("malformed liveness signal")

	// ErrUnknownStatus is returned when the status field is neither "success" nor "fail".
	ErrUnknownStatus = errors.New("unknown liveness status")

	// ErrInvalidCount is returned when the count field is not a base-10 uint64.
	ErrInvalidCount = errors.New("invalid liveness count")

	// ErrInvalidRecord is returned when a record payload cannot be decoded.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrCounterRequired is returned when a component is built without a shared counter.
	ErrCounterRequired = errors.New("sequence counter is required")

	// ErrSinkRequired is returned when a producer is built without a record sender.
	ErrSinkRequired = errors.New("record sender is required")

	// ErrNotifierRequired is returned when a producer is built without a signal sender.
	ErrNotifierRequired = errors.New("signal sender is required")

	// ErrStandbyRequired is returned when a monitor is built without a standby.
	ErrStandbyRequired = errors.New("standby producer is required")

	// ErrInvalidInterval is returned for non-positive send or sweep intervals.
	ErrInvalidInterval = errors.New("interval must be greater than 0")
)
