package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/common"
)

// stepHorizontal smooths speed toward the intent and turns the character to
// face the camera-relative move direction. It returns the unit direction of
// travel, which follows TargetYaw rather than the smoothed FacingYaw.
func stepHorizontal(s *State, cfg *Config, move mgl64.Vec2, sprint bool, cameraYaw, measuredSpeed, dt float64) mgl64.Vec3 {
	target := cfg.MoveSpeed
	if sprint {
		target = cfg.SprintSpeed
	}
	moving := move.X() != 0 || move.Y() != 0
	if !moving {
		target = 0
	}

	if math.Abs(measuredSpeed-target) > speedOffset {
		s.HorizontalSpeed = common.RoundTo(common.Lerp(measuredSpeed, target, dt*cfg.SpeedChangeRate), speedPrecision)
	} else {
		s.HorizontalSpeed = target
	}
	if s.HorizontalSpeed < 0 {
		s.HorizontalSpeed = 0
	}

	if moving {
		s.TargetYaw = mgl64.RadToDeg(math.Atan2(move.X(), move.Y())) + cameraYaw
		facing := common.SmoothDampAngle(s.FacingYaw, s.TargetYaw, &s.YawVelocity, cfg.YawSmoothTime, dt)
		s.FacingYaw = common.WrapDegrees(facing)
	}

	return Heading(s.TargetYaw)
}

// Heading is the unit vector on the ground plane for a yaw in degrees.
// Yaw 0 faces +Z, yaw 90 faces +X.
func Heading(yaw float64) mgl64.Vec3 {
	r := mgl64.DegToRad(yaw)
	return mgl64.Vec3{math.Sin(r), 0, math.Cos(r)}
}
