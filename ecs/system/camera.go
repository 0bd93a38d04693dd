package system

import (
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraSystem turns the camera in eased snap steps. The player's Input.Turn
// requests a step and is cleared once taken.
type CameraSystem struct{}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (cs *CameraSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}

	turn := 0
	ecs.ForEach2(w, component.InputComponent.Kind(), component.PlayerTagComponent.Kind(), func(_ ecs.Entity, input *component.Input, _ *component.PlayerTag) {
		if input.Turn != 0 {
			turn = input.Turn
			input.Turn = 0
		}
	})

	ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, cam *component.Camera) {
		if turn != 0 {
			startTurn(cam, turn)
		}
		if cam.Tween == nil || dt <= 0 {
			return
		}
		heading, done := cam.Tween.Update(float32(dt))
		cam.Heading = common.WrapDegrees(float64(heading))
		if done {
			cam.Heading = cam.Goal
			cam.Tween = nil
		}
	})
}

// startTurn queues a snap of dir steps. Turns requested mid-tween extend the
// goal instead of restarting from it.
func startTurn(cam *component.Camera, dir int) {
	if cam.Tween == nil {
		cam.Goal = cam.Heading
	}
	cam.Goal = common.WrapDegrees(cam.Goal + float64(dir)*cam.TurnStep)
	if cam.TurnSeconds <= 0 {
		cam.Heading = cam.Goal
		cam.Tween = nil
		return
	}

	begin := cam.Heading
	end := begin + common.DeltaAngle(begin, cam.Goal)
	easing := ease.InOutQuad
	if cam.Tween != nil {
		easing = ease.OutQuad
	}
	cam.Tween = gween.New(float32(begin), float32(end), float32(cam.TurnSeconds), easing)
}
