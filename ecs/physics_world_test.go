package ecs

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/motion"
)

func floorPlatform(layer int) component.Platform {
	return component.Platform{
		Name:   "floor",
		Min:    mgl64.Vec2{-5, -5},
		Max:    mgl64.Vec2{5, 5},
		Bottom: -1,
		Top:    0,
		Layer:  layer,
	}
}

func TestCheckSphere(t *testing.T) {
	pw := NewPhysicsWorld()
	pw.AddPlatform(floorPlatform(0))
	pw.AddTrigger("chest", mgl64.Vec3{0, 0, 8}, 2)
	pw.AddWall(component.Wall{A: mgl64.Vec2{-5, 10}, B: mgl64.Vec2{5, 10}, Thickness: 0.2})

	cases := []struct {
		name   string
		center mgl64.Vec3
		radius float64
		layers motion.LayerMask
		want   bool
	}{
		{"resting_probe", mgl64.Vec3{0, 0.14, 0}, 0.28, motion.LayerBit(0), true},
		{"above_reach", mgl64.Vec3{0, 1, 0}, 0.28, motion.LayerBit(0), false},
		{"inside_box", mgl64.Vec3{1, -0.5, 1}, 0.1, motion.LayerBit(0), true},
		{"edge_overhang", mgl64.Vec3{5.2, 0.14, 0}, 0.28, motion.LayerBit(0), true},
		{"past_edge", mgl64.Vec3{5.3, 0.14, 0}, 0.28, motion.LayerBit(0), false},
		{"other_layer", mgl64.Vec3{0, 0.14, 0}, 0.28, motion.LayerBit(1), false},
		{"all_layers", mgl64.Vec3{0, 0.14, 0}, 0.28, motion.AllLayers, true},
		{"no_layers", mgl64.Vec3{0, 0.14, 0}, 0.28, 0, false},
		{"trigger_ignored", mgl64.Vec3{0, 0.14, 8}, 0.28, motion.AllLayers, false},
		{"wall_ignored", mgl64.Vec3{0, 0.14, 10}, 0.28, motion.AllLayers, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := pw.CheckSphere(c.center, c.radius, c.layers); got != c.want {
				t.Fatalf("CheckSphere(%v, %v, %b) = %v, want %v", c.center, c.radius, c.layers, got, c.want)
			}
		})
	}
}

func TestCharacterBodyMovesFreely(t *testing.T) {
	pw := NewPhysicsWorld()
	pw.AddPlatform(floorPlatform(0))
	body := pw.AddCharacter("hero", mgl64.Vec3{}, 0.3, 1.8)

	vel := body.Move(mgl64.Vec3{0.1, -0.05, 0.2}, 0.1)
	want := mgl64.Vec3{0.1, 0, 0.2}
	if !vecApprox(body.Position(), want, 1e-9) {
		t.Fatalf("position %v, want %v", body.Position(), want)
	}
	if !vecApprox(vel, mgl64.Vec3{1, 0, 2}, 1e-6) {
		t.Fatalf("velocity %v, want (1, 0, 2)", vel)
	}
}

func TestCharacterBodyBlockedByWall(t *testing.T) {
	pw := NewPhysicsWorld()
	pw.AddPlatform(floorPlatform(0))
	pw.AddWall(component.Wall{A: mgl64.Vec2{1, -5}, B: mgl64.Vec2{1, 5}, Thickness: 0.2})
	body := pw.AddCharacter("hero", mgl64.Vec3{}, 0.3, 1.8)

	var vel mgl64.Vec3
	for i := 0; i < 10; i++ {
		vel = body.Move(mgl64.Vec3{0.5, 0, 0}, 0.1)
	}
	if x := body.Position().X(); math.Abs(x-0.6) > 0.02 {
		t.Fatalf("expected to rest against the wall near x=0.6, got %v", x)
	}
	if speed := motion.HorizontalSpeed(vel); speed > 0.2 {
		t.Fatalf("expected blocked speed near 0, got %v", speed)
	}
}

func TestCharacterBodyLandsAndBumpsHead(t *testing.T) {
	pw := NewPhysicsWorld()
	pw.AddPlatform(floorPlatform(0))
	pw.AddPlatform(component.Platform{Name: "ceiling", Min: mgl64.Vec2{-1, -1}, Max: mgl64.Vec2{1, 1}, Bottom: 2, Top: 2.5})

	t.Run("land", func(t *testing.T) {
		body := pw.AddCharacter("faller", mgl64.Vec3{3, 1, 3}, 0.3, 1.8)
		body.Move(mgl64.Vec3{0, -0.5, 0}, 0.1)
		vel := body.Move(mgl64.Vec3{0, -1, 0}, 0.1)
		if y := body.Position().Y(); y != 0 {
			t.Fatalf("expected to land on top at 0, got %v", y)
		}
		if !approxEq(vel.Y(), -5) {
			t.Fatalf("landing velocity %v, want -5", vel.Y())
		}
		body.Move(mgl64.Vec3{0, -0.01, 0}, 0.1)
		if y := body.Position().Y(); y != 0 {
			t.Fatalf("resting body sank to %v", y)
		}
	})

	t.Run("ceiling", func(t *testing.T) {
		body := pw.AddCharacter("jumper", mgl64.Vec3{}, 0.3, 1.8)
		body.Move(mgl64.Vec3{0, 0.5, 0}, 0.1)
		if y := body.Position().Y(); !approxEq(y, 0.2) {
			t.Fatalf("expected head stop at 0.2, got %v", y)
		}
	})

	t.Run("off_edge", func(t *testing.T) {
		body := pw.AddCharacter("walker", mgl64.Vec3{5.5, 0, 0}, 0.3, 1.8)
		body.Move(mgl64.Vec3{0, -0.1, 0}, 0.1)
		if y := body.Position().Y(); !approxEq(y, -0.1) {
			t.Fatalf("expected to fall past the edge, got %v", y)
		}
	})
}

func TestTriggerContacts(t *testing.T) {
	pw := NewPhysicsWorld()
	pw.AddPlatform(floorPlatform(0))
	pw.AddTrigger("chest", mgl64.Vec3{2, 0, 0}, 0.5)
	body := pw.AddCharacter("hero", mgl64.Vec3{}, 0.3, 1.8)

	var contacts []TriggerContact
	for i := 0; i < 20; i++ {
		body.Move(mgl64.Vec3{0.2, 0, 0}, 0.1)
		if len(pw.DrainContacts()) != 0 {
			t.Fatalf("move %d: contacts reported before the space stepped", i)
		}
		pw.Step(0.1)
		contacts = append(contacts, pw.DrainContacts()...)
	}
	if len(contacts) != 2 {
		t.Fatalf("expected enter and exit, got %+v", contacts)
	}
	if c := contacts[0]; c.Trigger != "chest" || c.Character != "hero" || !c.Enter {
		t.Fatalf("unexpected first contact %+v", c)
	}
	if c := contacts[1]; c.Enter {
		t.Fatalf("expected exit second, got %+v", c)
	}
}

func TestAddCharacterReplacesByName(t *testing.T) {
	pw := NewPhysicsWorld()
	first := pw.AddCharacter("hero", mgl64.Vec3{}, 0.3, 1.8)
	second := pw.AddCharacter("hero", mgl64.Vec3{1, 0, 0}, 0.3, 1.8)

	got, ok := pw.Character("hero")
	if !ok || got != second {
		t.Fatalf("expected lookup to return the replacement")
	}
	before := first.Position()
	if v := first.Move(mgl64.Vec3{1, 0, 0}, 0.1); v != (mgl64.Vec3{}) || first.Position() != before {
		t.Fatalf("removed body should not move")
	}
}

func approxEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func vecApprox(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestStepReportsEveryBodyOnce(t *testing.T) {
	pw := NewPhysicsWorld()
	pw.AddPlatform(floorPlatform(0))
	pw.AddTrigger("chest", mgl64.Vec3{2, 0, 0}, 0.5)
	pw.AddWall(component.Wall{A: mgl64.Vec2{-1, -5}, B: mgl64.Vec2{-1, 5}, Thickness: 0.2})
	a := pw.AddCharacter("a", mgl64.Vec3{}, 0.3, 1.8)
	b := pw.AddCharacter("b", mgl64.Vec3{0, 0, 0.2}, 0.3, 1.8)
	c := pw.AddCharacter("c", mgl64.Vec3{-0.8, 0, 0}, 0.3, 1.8)

	a.Move(mgl64.Vec3{2, 0, 0}, 0.1)
	b.Move(mgl64.Vec3{2, 0, 0}, 0.1)
	before := map[string]mgl64.Vec3{"a": a.Position(), "b": b.Position(), "c": c.Position()}

	pw.Step(0.1)
	contacts := pw.DrainContacts()
	entered := map[string]int{}
	for _, ct := range contacts {
		if !ct.Enter || ct.Trigger != "chest" {
			t.Fatalf("unexpected contact %+v", ct)
		}
		entered[ct.Character]++
	}
	if len(contacts) != 2 || entered["a"] != 1 || entered["b"] != 1 {
		t.Fatalf("expected one enter each for a and b, got %+v", contacts)
	}

	for name, body := range map[string]*CharacterBody{"a": a, "b": b, "c": c} {
		if body.Position() != before[name] {
			t.Fatalf("%s moved during Step: %v to %v", name, before[name], body.Position())
		}
	}

	pw.Step(0)
	pw.Step(0.1)
	if got := pw.DrainContacts(); len(got) != 0 {
		t.Fatalf("resting bodies should not report again, got %+v", got)
	}
}
