package component

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/motion"
)

// Character is a motion-controlled body.
type Character struct {
	Name   string
	Radius float64
	Height float64
	Color  color.Color
	Spawn  mgl64.Vec3
	// Source is the prefab the character was built from.
	Source string
	Script string

	Controller *motion.Controller
	Body       motion.Body
	// Last is the result of the most recent controller tick.
	Last motion.Result
}

var CharacterComponent = NewComponent[Character]()
