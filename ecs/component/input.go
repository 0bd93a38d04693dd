package component

import "github.com/go-gl/mathgl/mgl64"

// Input holds the intent for one character. Jump is a latch: input systems
// raise it and only the character controller lowers it, when a jump is
// actually consumed.
type Input struct {
	MoveX  float64
	MoveY  float64
	Sprint bool
	Jump   bool

	Interact bool
	// Turn is a pending camera snap: -1 left, +1 right.
	Turn         int
	CursorLocked bool
}

var InputComponent = NewComponent[Input]()

// Move returns the intent vector with each axis clamped to [-1, 1].
func (in *Input) Move() mgl64.Vec2 {
	return mgl64.Vec2{clampAxis(in.MoveX), clampAxis(in.MoveY)}
}

func (in *Input) Sprinting() bool     { return in.Sprint }
func (in *Input) JumpRequested() bool { return in.Jump }
func (in *Input) ClearJump()          { in.Jump = false }

func clampAxis(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
