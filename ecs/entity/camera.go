package entity

import (
	"fmt"

	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/prefabs"
)

// NewCamera creates the orbit camera following the named character.
func NewCamera(w *ecs.World, target string) (ecs.Entity, error) {
	cameraSpec, err := prefabs.LoadCameraSpec()
	if err != nil {
		return 0, fmt.Errorf("camera: load spec: %w", err)
	}

	turnSeconds := cameraSpec.TurnSeconds
	if turnSeconds <= 0 {
		turnSeconds = 0.25
	}
	heading := common.WrapDegrees(cameraSpec.Heading)

	camera := ecs.CreateEntity(w)
	if err := ecs.Add(w, camera, component.CameraComponent.Kind(), &component.Camera{
		Target:      target,
		Heading:     heading,
		Goal:        heading,
		TurnStep:    cameraSpec.TurnStep,
		TurnSeconds: turnSeconds,
		Distance:    cameraSpec.Distance,
		Pitch:       cameraSpec.Pitch,
	}); err != nil {
		return 0, fmt.Errorf("camera: add camera component: %w", err)
	}
	return camera, nil
}
