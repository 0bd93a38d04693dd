package system

import (
	"log"

	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
)

// TriggerSystem steps the physics space once per tick and turns the trigger
// contacts it reports into Reveal toggles. Only the
// character a trigger targets counts; a trigger with no target accepts
// anyone.
type TriggerSystem struct{}

func NewTriggerSystem() *TriggerSystem {
	return &TriggerSystem{}
}

func (ts *TriggerSystem) Update(w *ecs.World, dt float64) {
	if w == nil || w.PhysicsWorld() == nil {
		return
	}

	pw := w.PhysicsWorld()
	pw.Step(dt)
	for _, contact := range pw.DrainContacts() {
		ecs.ForEach(w, component.TriggerComponent.Kind(), func(e ecs.Entity, trig *component.Trigger) {
			if trig.Name != contact.Trigger {
				return
			}
			if trig.Target != "" && trig.Target != contact.Character {
				return
			}
			if trig.Inside == contact.Enter {
				return
			}

			trig.Inside = contact.Enter
			setReveal(w, trig.Reveal, contact.Enter)

			kind := ecs.EventTriggerExit
			if contact.Enter {
				kind = ecs.EventTriggerEnter
			}
			w.Events().Push(ecs.Event{Kind: kind, Entity: e, Data: contact.Character})
			log.Printf("trigger: %s %s by %s", trig.Name, kind, contact.Character)
		})
	}
}

func setReveal(w *ecs.World, name string, active bool) {
	if name == "" {
		return
	}
	ecs.ForEach(w, component.RevealComponent.Kind(), func(_ ecs.Entity, r *component.Reveal) {
		if r.Name == name {
			r.Active = active
		}
	})
}
