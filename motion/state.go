package motion

// Phase is the vertical phase of a character. It is derived from
// State.Grounded every tick and never stored.
type Phase int

const (
	PhaseGrounded Phase = iota
	PhaseAirborne
)

func (p Phase) String() string {
	switch p {
	case PhaseGrounded:
		return "grounded"
	case PhaseAirborne:
		return "airborne"
	default:
		return "unknown"
	}
}

// State is the per-character motion record. It is owned by a single
// controller and mutated once per tick.
type State struct {
	HorizontalSpeed float64
	// FacingYaw is the smoothed body yaw in degrees, kept in [0, 360).
	FacingYaw   float64
	TargetYaw   float64
	YawVelocity float64

	VerticalVelocity float64
	Grounded         bool
	JumpCount        int

	JumpTimeout float64
	FallTimeout float64
}

// NewState returns a resting state with both timers armed.
func NewState(cfg Config) State {
	return State{
		JumpTimeout: cfg.JumpTimeout,
		FallTimeout: cfg.FallTimeout,
	}
}

func (s State) Phase() Phase {
	if s.Grounded {
		return PhaseGrounded
	}
	return PhaseAirborne
}

// Falling reports whether the character has been airborne past the fall
// timeout.
func (s State) Falling() bool {
	return !s.Grounded && s.FallTimeout <= 0
}

// JumpsLeft is the remaining jump budget under cfg.
func (s State) JumpsLeft(cfg Config) int {
	left := cfg.MaxJumps() - s.JumpCount
	if left < 0 {
		return 0
	}
	return left
}
