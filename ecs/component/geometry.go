package component

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Platform is an axis-aligned walkable box. Min and Max are its footprint
// on the ground plane as (x, z).
type Platform struct {
	Name   string
	Min    mgl64.Vec2
	Max    mgl64.Vec2
	Bottom float64
	Top    float64
	Layer  int
	Color  color.Color
}

var PlatformComponent = NewComponent[Platform]()

// Wall is a vertical segment on the ground plane that blocks movement.
type Wall struct {
	A         mgl64.Vec2
	B         mgl64.Vec2
	Thickness float64
}

var WallComponent = NewComponent[Wall]()

// Scene holds per-scene settings on a single entity.
type Scene struct {
	Name string
	// KillHeight is the height below which characters respawn.
	KillHeight float64
}

var SceneComponent = NewComponent[Scene]()
