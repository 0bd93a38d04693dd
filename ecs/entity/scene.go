package entity

import (
	"fmt"
	"image/color"

	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/prefabs"
)

var defaultPlatformColor = color.NRGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xff}

// Scene lists the entities a scene prefab produced.
type Scene struct {
	Entity     ecs.Entity
	Camera     ecs.Entity
	Player     ecs.Entity
	Characters []ecs.Entity
	Layers     prefabs.LayersSpec
}

// LoadScene builds a scene prefab into w: geometry, triggers, the camera and
// every listed character. The first character is the player; the rest are
// tagged for scripted input.
func LoadScene(w *ecs.World, filename string) (*Scene, error) {
	layers, err := prefabs.LoadLayersSpec()
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	spec, err := prefabs.LoadSceneSpec(filename)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if len(spec.Characters) == 0 {
		return nil, fmt.Errorf("scene %s: no characters", spec.Name)
	}

	if w.PhysicsWorld() == nil {
		w.SetPhysicsWorld(ecs.NewPhysicsWorld())
	}
	scene := &Scene{Layers: layers}
	if scene.Entity, err = BuildScene(w, spec, layers); err != nil {
		return nil, err
	}

	// The camera follows the player, so it needs the player's name first.
	first, err := prefabs.LoadCharacterSpec(spec.Characters[0])
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if scene.Camera, err = NewCamera(w, first.Name); err != nil {
		return nil, err
	}
	cam, _ := ecs.Get(w, scene.Camera, component.CameraComponent.Kind())

	for i, name := range spec.Characters {
		e, err := NewCharacter(w, name, layers, cam)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", spec.Name, err)
		}
		if i == 0 {
			scene.Player = e
			err = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
		} else {
			err = ecs.Add(w, e, component.ScriptedTagComponent.Kind(), &component.ScriptedTag{})
		}
		if err != nil {
			return nil, fmt.Errorf("scene %s: tag character: %w", spec.Name, err)
		}
		scene.Characters = append(scene.Characters, e)
	}
	return scene, nil
}

// BuildScene adds platforms, walls, triggers and reveals to w and its
// physics world. It returns the scene settings entity.
func BuildScene(w *ecs.World, spec *prefabs.SceneSpec, layers prefabs.LayersSpec) (ecs.Entity, error) {
	pw := w.PhysicsWorld()
	if pw == nil {
		return 0, fmt.Errorf("scene %s: world has no physics", spec.Name)
	}

	root := ecs.CreateEntity(w)
	if err := ecs.Add(w, root, component.SceneComponent.Kind(), &component.Scene{Name: spec.Name, KillHeight: spec.KillHeight}); err != nil {
		return 0, fmt.Errorf("scene %s: add scene: %w", spec.Name, err)
	}

	for _, ps := range spec.Platforms {
		layer := 0
		if ps.Layer != "" {
			idx, err := layers.Index(ps.Layer)
			if err != nil {
				return 0, fmt.Errorf("scene %s: platform %s: %w", spec.Name, ps.Name, err)
			}
			layer = idx
		}
		p := component.Platform{
			Name:   ps.Name,
			Min:    ps.Min.Vec(),
			Max:    ps.Max.Vec(),
			Bottom: ps.Bottom,
			Top:    ps.Top,
			Layer:  layer,
			Color:  ps.Color.Or(defaultPlatformColor),
		}
		pw.AddPlatform(p)
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.PlatformComponent.Kind(), &p); err != nil {
			return 0, fmt.Errorf("scene %s: add platform: %w", spec.Name, err)
		}
	}

	for _, ws := range spec.Walls {
		wall := component.Wall{A: ws.A.Vec(), B: ws.B.Vec(), Thickness: ws.Thickness}
		pw.AddWall(wall)
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.WallComponent.Kind(), &wall); err != nil {
			return 0, fmt.Errorf("scene %s: add wall: %w", spec.Name, err)
		}
	}

	for _, name := range spec.Reveals {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.RevealComponent.Kind(), &component.Reveal{Name: name}); err != nil {
			return 0, fmt.Errorf("scene %s: add reveal: %w", spec.Name, err)
		}
	}

	for _, ts := range spec.Triggers {
		pos := ts.Position.Vec()
		pw.AddTrigger(ts.Name, pos, ts.Radius)
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
			return 0, fmt.Errorf("scene %s: add trigger transform: %w", spec.Name, err)
		}
		if err := ecs.Add(w, e, component.TriggerComponent.Kind(), &component.Trigger{
			Name:   ts.Name,
			Target: ts.Target,
			Reveal: ts.Reveal,
			Radius: ts.Radius,
		}); err != nil {
			return 0, fmt.Errorf("scene %s: add trigger: %w", spec.Name, err)
		}
	}
	return root, nil
}
