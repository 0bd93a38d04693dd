package system

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

type teleporter interface {
	Teleport(position mgl64.Vec3)
}

// CharacterControllerSystem ticks every character's motion controller and
// mirrors the result onto its Transform.
type CharacterControllerSystem struct {
	Debug bool
}

func NewCharacterControllerSystem(debug bool) *CharacterControllerSystem {
	return &CharacterControllerSystem{Debug: debug}
}

func (s *CharacterControllerSystem) Update(w *ecs.World, dt float64) {
	if w == nil || dt <= 0 {
		return
	}

	killHeight := math.Inf(-1)
	if e, ok := ecs.First(w, component.SceneComponent.Kind()); ok {
		if scene, ok := ecs.Get(w, e, component.SceneComponent.Kind()); ok {
			killHeight = scene.KillHeight
		}
	}

	events := w.Events()
	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, ch *component.Character, tr *component.Transform) {
		if ch.Controller == nil || ch.Body == nil {
			return
		}

		prev := ch.Last
		res := ch.Controller.Update(dt)
		ch.Last = res
		state := ch.Controller.State()
		tr.Position = ch.Body.Position()
		tr.Yaw = state.FacingYaw

		if res.JumpConsumed {
			events.Push(ecs.Event{Kind: ecs.EventJumped, Entity: e, Data: res.JumpStage})
			if s.Debug {
				log.Printf("character: %s jump stage %d vy=%.2f", ch.Name, res.JumpStage, state.VerticalVelocity)
			}
		}
		if res.Landed {
			events.Push(ecs.Event{Kind: ecs.EventLanded, Entity: e})
			if s.Debug {
				log.Printf("character: %s landed at %.2f", ch.Name, tr.Position.Y())
			}
		}
		if res.Falling && !prev.Falling {
			events.Push(ecs.Event{Kind: ecs.EventFalling, Entity: e})
		}

		if tr.Position.Y() < killHeight {
			s.respawn(ch, tr, killHeight)
		}
	})
}

func (s *CharacterControllerSystem) respawn(ch *component.Character, tr *component.Transform, killHeight float64) {
	body, ok := ch.Body.(teleporter)
	if !ok {
		return
	}
	log.Printf("character: %s fell below %.1f, respawning", ch.Name, killHeight)
	body.Teleport(ch.Spawn)
	ch.Controller.Reset()
	ch.Last = ch.Controller.Update(0)
	tr.Position = ch.Body.Position()
}
