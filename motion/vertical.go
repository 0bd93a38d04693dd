package motion

// verticalResult reports what the vertical step did this tick.
type verticalResult struct {
	jumped bool
	// stage is the zero-based jump stage launched when jumped is set.
	stage   int
	falling bool
}

// stepVertical runs jump resolution and gravity against the grounded flag
// from the previous tick. dt must already be clamped to >= 0.
//
// While grounded the velocity is clamped to -2 and gravity is then applied
// on the same tick, so repeated grounded ticks settle at -2 + Gravity*dt,
// not at -2.
func stepVertical(s *State, cfg *Config, jumpRequested bool, dt float64) verticalResult {
	var res verticalResult

	if s.Grounded {
		// Reset late so a jump queued on the tick contact is lost still counts.
		if s.JumpCount > 0 && s.JumpTimeout <= 0 {
			s.JumpCount = 0
		}
		s.FallTimeout = cfg.FallTimeout

		if s.VerticalVelocity < 0 {
			s.VerticalVelocity = groundedVelocity
		}
		if s.JumpTimeout > 0 {
			s.JumpTimeout = decrement(s.JumpTimeout, dt)
		}
	} else {
		if s.FallTimeout > 0 {
			s.FallTimeout = decrement(s.FallTimeout, dt)
		} else {
			res.falling = true
		}
		s.JumpTimeout = cfg.JumpTimeout
	}

	if jumpRequested && s.JumpCount < cfg.MaxJumps() {
		res.jumped = true
		res.stage = s.JumpCount
		s.VerticalVelocity = cfg.LaunchVelocity(s.JumpCount)
		s.JumpCount++
		s.JumpTimeout = cfg.JumpTimeout
	}

	// Linear integration, once per tick. Suppressed past terminal velocity,
	// so the bound can be overshot by at most one tick of gravity.
	if s.VerticalVelocity > -cfg.TerminalVelocity {
		s.VerticalVelocity += cfg.Gravity * dt
	}

	return res
}

func decrement(v, dt float64) float64 {
	v -= dt
	if v < 0 {
		return 0
	}
	return v
}
