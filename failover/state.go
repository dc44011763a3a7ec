package failover

// State is the Monitor's suspicion state.
type State int

const (
	// StateHealthy means a success signal has arrived since the last sweep armed the switch.
	StateHealthy State = iota
	// StateArmed means the last sweep armed the switch and nothing has cleared it yet.
	// The next sweep that still finds StateArmed promotes the standby.
	StateArmed
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "HEALTHY"
	case StateArmed:
		return "ARMED"
	default:
		return "UNKNOWN"
	}
}

// PromotionReason records what triggered a promotion.
type PromotionReason string

const (
	// ReasonFailSignal is an explicit "fail:<count>" from the producer.
	ReasonFailSignal PromotionReason = "fail_signal"
	// ReasonSweepTimeout is a sweep that found the switch still armed.
	ReasonSweepTimeout PromotionReason = "sweep_timeout"
)
