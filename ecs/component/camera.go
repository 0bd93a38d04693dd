package component

import "github.com/tanema/gween"

// Camera orbits a character and supplies the yaw movement is relative to.
// Turns snap by TurnStep degrees, eased over TurnSeconds.
type Camera struct {
	Target      string
	Heading     float64
	TurnStep    float64
	TurnSeconds float64
	Distance    float64
	Pitch       float64

	Tween *gween.Tween
	// Goal is the heading the active tween ends on.
	Goal float64
}

var CameraComponent = NewComponent[Camera]()

// Yaw is the current camera heading in degrees.
func (c *Camera) Yaw() float64 {
	return c.Heading
}

// Turning reports whether a snap turn is in progress.
func (c *Camera) Turning() bool {
	return c.Tween != nil
}
