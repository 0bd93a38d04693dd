package motion

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidConfig = errors.New("motion: invalid config")
	ErrNoCamera      = errors.New("motion: camera yaw provider is required")
	ErrNoInput       = errors.New("motion: input source is required")
	ErrNoBody        = errors.New("motion: body is required")
	ErrNoGroundQuery = errors.New("motion: spatial query is required")
)

const (
	// groundedVelocity is the downward bias held while grounded so the probe
	// stays in contact.
	groundedVelocity = -2.0
	// speedOffset is the tolerance under which horizontal speed snaps to target.
	speedOffset = 0.1
	// speedPrecision is the number of decimals horizontal speed is rounded to.
	speedPrecision = 3
)

// LayerMask selects ground layers. Bit i set means layer i counts as ground.
type LayerMask uint32

const AllLayers LayerMask = math.MaxUint32

// LayerBit returns the mask for a single layer index in [0, 31].
func LayerBit(layer int) LayerMask {
	if layer < 0 || layer > 31 {
		return 0
	}
	return 1 << uint(layer)
}

// Has reports whether every bit of other is in m.
func (m LayerMask) Has(other LayerMask) bool {
	return m&other == other
}

// Config is the per-character tuning. Treat it as immutable once a
// Controller has been built from it.
type Config struct {
	MoveSpeed       float64
	SprintSpeed     float64
	YawSmoothTime   float64
	SpeedChangeRate float64

	// JumpHeights[i] is the apex height of the i-th consecutive jump.
	JumpHeights []float64
	Gravity     float64

	JumpTimeout float64
	FallTimeout float64
	// TerminalVelocity is a positive fall speed. Gravity stops applying once
	// the vertical velocity reaches -TerminalVelocity.
	TerminalVelocity float64

	GroundProbeOffset float64
	GroundProbeRadius float64
	GroundLayers      LayerMask
}

func DefaultConfig() Config {
	return Config{
		MoveSpeed:         2.0,
		SprintSpeed:       5.335,
		YawSmoothTime:     0.12,
		SpeedChangeRate:   10,
		JumpHeights:       []float64{1.2},
		Gravity:           -15,
		JumpTimeout:       0.5,
		FallTimeout:       0.15,
		TerminalVelocity:  53,
		GroundProbeOffset: -0.14,
		GroundProbeRadius: 0.28,
		GroundLayers:      LayerBit(0),
	}
}

// Clone returns a copy that does not share JumpHeights with c.
func (c Config) Clone() Config {
	out := c
	out.JumpHeights = append([]float64(nil), c.JumpHeights...)
	return out
}

// MaxJumps is the jump budget between grounded resets.
func (c Config) MaxJumps() int {
	return len(c.JumpHeights)
}

// LaunchVelocity returns the upward speed for jump stage i, or 0 when the
// stage is out of range.
func (c Config) LaunchVelocity(stage int) float64 {
	if stage < 0 || stage >= len(c.JumpHeights) {
		return 0
	}
	return math.Sqrt(c.JumpHeights[stage] * -2 * c.Gravity)
}

// Validate rejects values the tick math cannot work with. An empty jump
// sequence and zero speeds are valid.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"move_speed", c.MoveSpeed},
		{"sprint_speed", c.SprintSpeed},
		{"yaw_smooth_time", c.YawSmoothTime},
		{"speed_change_rate", c.SpeedChangeRate},
		{"gravity", c.Gravity},
		{"jump_timeout", c.JumpTimeout},
		{"fall_timeout", c.FallTimeout},
		{"terminal_velocity", c.TerminalVelocity},
		{"ground_probe_offset", c.GroundProbeOffset},
		{"ground_probe_radius", c.GroundProbeRadius},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, f.name)
		}
	}
	for _, f := range fields {
		switch f.name {
		case "gravity", "ground_probe_offset", "terminal_velocity":
			continue
		}
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %v)", ErrInvalidConfig, f.name, f.v)
		}
	}
	if c.Gravity > 0 {
		return fmt.Errorf("%w: gravity must not be positive (got %v)", ErrInvalidConfig, c.Gravity)
	}
	if c.TerminalVelocity <= 0 {
		return fmt.Errorf("%w: terminal_velocity must be positive (got %v)", ErrInvalidConfig, c.TerminalVelocity)
	}
	for i, h := range c.JumpHeights {
		if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
			return fmt.Errorf("%w: jump_heights[%d] = %v", ErrInvalidConfig, i, h)
		}
	}
	return nil
}
