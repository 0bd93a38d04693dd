package motion

import "github.com/go-gl/mathgl/mgl64"

// Compose combines the horizontal and vertical parts into one displacement
// for dt seconds. A zero direction contributes no horizontal movement.
func Compose(direction mgl64.Vec3, speed, verticalVelocity, dt float64) mgl64.Vec3 {
	var horizontal mgl64.Vec3
	if direction.LenSqr() > 0 {
		horizontal = direction.Normalize().Mul(speed * dt)
	}
	return horizontal.Add(mgl64.Vec3{0, verticalVelocity * dt, 0})
}

// HorizontalSpeed is the magnitude of v on the ground plane.
func HorizontalSpeed(v mgl64.Vec3) float64 {
	return mgl64.Vec2{v.X(), v.Z()}.Len()
}
