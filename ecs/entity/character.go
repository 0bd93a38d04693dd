package entity

import (
	"fmt"
	"image/color"
	"log"

	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/motion"
	"github.com/milk9111/thirdperson/prefabs"
)

var defaultCharacterColor = color.NRGBA{R: 0xe0, G: 0xb0, B: 0x40, A: 0xff}

// NewCharacter spawns a character from a prefab. Its movement is relative to
// camera.
func NewCharacter(w *ecs.World, filename string, layers prefabs.LayersSpec, camera motion.YawProvider) (ecs.Entity, error) {
	pw := w.PhysicsWorld()
	if pw == nil {
		return 0, fmt.Errorf("character: world has no physics")
	}

	spec, err := prefabs.LoadCharacterSpec(filename)
	if err != nil {
		return 0, fmt.Errorf("character: load spec: %w", err)
	}
	cfg, err := spec.Motion.Config(layers)
	if err != nil {
		return 0, fmt.Errorf("character %s: %w", spec.Name, err)
	}

	spawn := spec.Spawn.Vec()
	body := pw.AddCharacter(spec.Name, spawn, spec.Radius, spec.Height)
	input := &component.Input{CursorLocked: true}

	controller, err := motion.NewController(cfg, input, body, pw, camera)
	if err != nil {
		pw.RemoveCharacter(body)
		return 0, fmt.Errorf("character %s: %w", spec.Name, err)
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: spawn, Yaw: spec.Yaw}); err != nil {
		return 0, fmt.Errorf("character: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.InputComponent.Kind(), input); err != nil {
		return 0, fmt.Errorf("character: add input: %w", err)
	}
	if err := ecs.Add(w, e, component.CharacterComponent.Kind(), &component.Character{
		Name:       spec.Name,
		Radius:     spec.Radius,
		Height:     spec.Height,
		Color:      spec.Color.Or(defaultCharacterColor),
		Spawn:      spawn,
		Source:     filename,
		Script:     spec.Script,
		Controller: controller,
		Body:       body,
	}); err != nil {
		return 0, fmt.Errorf("character: add character: %w", err)
	}
	return e, nil
}

// ReloadCharacter re-reads a character's prefab and swaps its motion tuning
// in place, keeping the motion state.
func ReloadCharacter(w *ecs.World, e ecs.Entity, layers prefabs.LayersSpec) error {
	ch, ok := ecs.Get(w, e, component.CharacterComponent.Kind())
	if !ok {
		return fmt.Errorf("character: reload %v: not a character", e)
	}
	spec, err := prefabs.LoadCharacterSpec(ch.Source)
	if err != nil {
		return fmt.Errorf("character %s: reload: %w", ch.Name, err)
	}
	cfg, err := spec.Motion.Config(layers)
	if err != nil {
		return fmt.Errorf("character %s: reload: %w", ch.Name, err)
	}
	next, err := ch.Controller.WithConfig(cfg)
	if err != nil {
		return fmt.Errorf("character %s: reload: %w", ch.Name, err)
	}
	ch.Controller = next
	ch.Color = spec.Color.Or(ch.Color)
	log.Printf("character: %s reloaded from %s", ch.Name, ch.Source)
	return nil
}
