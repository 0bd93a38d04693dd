package motion

import "github.com/go-gl/mathgl/mgl64"

// Frame is everything a tick reads from outside the state record.
type Frame struct {
	// Move is the intent on each axis in [-1, 1]. Y is forward.
	Move   mgl64.Vec2
	Sprint bool
	Jump   bool

	// Grounded is the ground probe result taken this tick.
	Grounded  bool
	CameraYaw float64
	// MeasuredSpeed is the horizontal speed the body actually reached on the
	// previous tick.
	MeasuredSpeed float64
}

// Result describes the outcome of one tick.
type Result struct {
	Displacement mgl64.Vec3
	Direction    mgl64.Vec3

	JumpConsumed bool
	JumpStage    int

	Phase   Phase
	Landed  bool
	Falling bool
}

// Step advances s by dt and returns the new state and the displacement to
// apply. Jump and gravity run against the grounded flag of the previous
// tick, then the probe result in f is latched, then horizontal planning and
// composition run. A non-positive dt returns s unchanged with no
// displacement.
func Step(s State, cfg Config, f Frame, dt float64) (State, Result) {
	if dt <= 0 {
		return s, Result{Phase: s.Phase(), Direction: Heading(s.TargetYaw)}
	}

	wasGrounded := s.Grounded
	v := stepVertical(&s, &cfg, f.Jump, dt)

	s.Grounded = f.Grounded

	dir := stepHorizontal(&s, &cfg, f.Move, f.Sprint, f.CameraYaw, f.MeasuredSpeed, dt)

	res := Result{
		Displacement: Compose(dir, s.HorizontalSpeed, s.VerticalVelocity, dt),
		Direction:    dir,
		JumpConsumed: v.jumped,
		JumpStage:    v.stage,
		Phase:        s.Phase(),
		Landed:       !wasGrounded && s.Grounded,
		Falling:      v.falling,
	}
	return s, res
}
