package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/ecs/entity"
	"github.com/milk9111/thirdperson/prefabs"
)

const tick = 1.0 / 50

func usePrefabDir(t *testing.T) {
	t.Helper()
	prev := prefabs.Dir
	prefabs.Dir = t.TempDir()
	t.Cleanup(func() { prefabs.Dir = prev })
}

func loadScene(t *testing.T) (*ecs.World, *entity.Scene) {
	t.Helper()
	usePrefabDir(t)
	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, "scene.yaml")
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	return w, scene
}

func countEvents(events []ecs.Event, kind ecs.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestCharacterControllerSystem(t *testing.T) {
	w, scene := loadScene(t)
	sys := NewCharacterControllerSystem(false)
	input, _ := ecs.Get(w, scene.Player, component.InputComponent.Kind())
	tr, _ := ecs.Get(w, scene.Player, component.TransformComponent.Kind())
	ch, _ := ecs.Get(w, scene.Player, component.CharacterComponent.Kind())

	t.Run("walks_forward", func(t *testing.T) {
		input.MoveY = 1
		for i := 0; i < 50; i++ {
			sys.Update(w, tick)
		}
		input.MoveY = 0
		if z := tr.Position.Z(); z < 1 || z > 2.1 {
			t.Fatalf("expected just under 2 units of travel, got z=%v", z)
		}
		if math.Abs(tr.Position.X()) > 1e-6 || tr.Position.Y() != 0 {
			t.Fatalf("drifted off the floor line: %v", tr.Position)
		}
		if math.Abs(tr.Yaw) > 1e-6 {
			t.Fatalf("facing %v, want 0", tr.Yaw)
		}
		if countEvents(w.Events().Drain(), ecs.EventLanded) == 0 {
			t.Fatalf("settling on the floor should report a landing")
		}
	})

	t.Run("jump_event", func(t *testing.T) {
		input.Jump = true
		sys.Update(w, tick)
		if input.Jump {
			t.Fatalf("jump latch should be lowered once used")
		}
		events := w.Events().Drain()
		if countEvents(events, ecs.EventJumped) != 1 {
			t.Fatalf("expected one jump event, got %+v", events)
		}
		if !ch.Last.JumpConsumed || tr.Position.Y() <= 0 {
			t.Fatalf("character did not leave the ground: %+v at %v", ch.Last, tr.Position)
		}
		for i := 0; i < 100; i++ {
			sys.Update(w, tick)
		}
		if tr.Position.Y() != 0 || !ch.Controller.State().Grounded {
			t.Fatalf("expected to land again, at %v", tr.Position)
		}
	})

	t.Run("respawn_below_kill_height", func(t *testing.T) {
		body := ch.Body.(*ecs.CharacterBody)
		body.Teleport(mgl64.Vec3{20, -29.99, 20})
		sys.Update(w, tick)
		if tr.Position != ch.Spawn {
			t.Fatalf("expected respawn at %v, got %v", ch.Spawn, tr.Position)
		}
		if vy := ch.Controller.State().VerticalVelocity; vy != 0 {
			t.Fatalf("fall speed survived respawn: %v", vy)
		}
	})
}

func TestCameraSystemSnapTurns(t *testing.T) {
	w := ecs.NewWorld()
	cam := &component.Camera{TurnStep: 45, TurnSeconds: 0.25}
	if err := ecs.Add(w, ecs.CreateEntity(w), component.CameraComponent.Kind(), cam); err != nil {
		t.Fatal(err)
	}
	player := ecs.CreateEntity(w)
	input := &component.Input{}
	if err := ecs.Add(w, player, component.InputComponent.Kind(), input); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{}); err != nil {
		t.Fatal(err)
	}
	sys := NewCameraSystem()

	cases := []struct {
		name  string
		turns []int
		want  float64
	}{
		{"right", []int{1}, 45},
		{"left_wraps", []int{-1, -1}, 315},
		{"stacked_mid_turn", []int{1, 1}, 45},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, turn := range c.turns {
				input.Turn = turn
				sys.Update(w, 0.1)
				if input.Turn != 0 {
					t.Fatalf("turn request not consumed")
				}
				if !cam.Turning() {
					t.Fatalf("expected a tween in progress")
				}
			}
			for i := 0; i < 10; i++ {
				sys.Update(w, 0.1)
			}
			if cam.Turning() || cam.Heading != c.want {
				t.Fatalf("heading %v turning=%v, want %v", cam.Heading, cam.Turning(), c.want)
			}
		})
	}
}

func TestCameraTweenMidpoint(t *testing.T) {
	w := ecs.NewWorld()
	cam := &component.Camera{TurnStep: 45, TurnSeconds: 0.25}
	if err := ecs.Add(w, ecs.CreateEntity(w), component.CameraComponent.Kind(), cam); err != nil {
		t.Fatal(err)
	}
	player := ecs.CreateEntity(w)
	input := &component.Input{Turn: 1}
	_ = ecs.Add(w, player, component.InputComponent.Kind(), input)
	_ = ecs.Add(w, player, component.PlayerTagComponent.Kind(), &component.PlayerTag{})

	sys := NewCameraSystem()
	sys.Update(w, 0.125)
	if cam.Heading != 22.5 {
		t.Fatalf("eased midpoint %v, want 22.5", cam.Heading)
	}
	if cam.Yaw() != cam.Heading {
		t.Fatalf("yaw provider should report the eased heading")
	}
}

func TestTriggerSystemTargetsOneCharacter(t *testing.T) {
	w := ecs.NewWorld()
	pw := ecs.NewPhysicsWorld()
	w.SetPhysicsWorld(pw)
	pw.AddPlatform(component.Platform{Name: "floor", Min: mgl64.Vec2{-5, -5}, Max: mgl64.Vec2{5, 5}, Bottom: -1})
	pw.AddTrigger("chest", mgl64.Vec3{2, 0, 0}, 0.5)

	trigEntity := ecs.CreateEntity(w)
	trig := &component.Trigger{Name: "chest", Target: "hero", Reveal: "chest_camera", Radius: 0.5}
	_ = ecs.Add(w, trigEntity, component.TriggerComponent.Kind(), trig)
	reveal := &component.Reveal{Name: "chest_camera"}
	_ = ecs.Add(w, ecs.CreateEntity(w), component.RevealComponent.Kind(), reveal)

	hero := pw.AddCharacter("hero", mgl64.Vec3{}, 0.3, 1.8)
	other := pw.AddCharacter("other", mgl64.Vec3{2, 0, 0.7}, 0.3, 1.8)
	sys := NewTriggerSystem()

	other.Move(mgl64.Vec3{0, 0, 0.01}, tick)
	sys.Update(w, tick)
	if trig.Inside || reveal.Active {
		t.Fatalf("a non-target character must not activate the trigger")
	}

	steps := []struct {
		name   string
		moves  int
		active bool
		event  ecs.EventKind
	}{
		{"enter", 10, true, ecs.EventTriggerEnter},
		{"exit", 10, false, ecs.EventTriggerExit},
	}
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			w.Events().Drain()
			for i := 0; i < s.moves; i++ {
				hero.Move(mgl64.Vec3{0.2, 0, 0}, tick)
			}
			sys.Update(w, tick)
			if reveal.Active != s.active || trig.Inside != s.active {
				t.Fatalf("reveal active=%v inside=%v, want %v", reveal.Active, trig.Inside, s.active)
			}
			events := w.Events().Drain()
			if len(events) != 1 || events[0].Kind != s.event || events[0].Entity != trigEntity || events[0].Data != "hero" {
				t.Fatalf("unexpected events %+v", events)
			}
		})
	}
}

func TestScriptedInputSystem(t *testing.T) {
	w, scene := loadScene(t)
	companion := scene.Characters[1]
	input, _ := ecs.Get(w, companion, component.InputComponent.Kind())

	t.Run("own_script", func(t *testing.T) {
		sys := NewScriptedInputSystem("")
		sys.Update(w, tick)
		// patrol walks +Z for its first leg and sprints along it.
		if input.MoveX != 0 || input.MoveY != 1 || !input.Sprint {
			t.Fatalf("unexpected patrol input %+v", input)
		}
	})

	t.Run("override_latches_jump", func(t *testing.T) {
		sys := NewScriptedInputSystem("scripts/jump_test.tengo")
		input.Jump = false
		sys.Update(w, tick)
		if !input.Jump || input.MoveY != 0 {
			t.Fatalf("jump_test should request a jump on frame 0: %+v", input)
		}
		w.Advance(tick)
		sys.Update(w, tick)
		if !input.Jump {
			t.Fatalf("scripts must not lower the jump latch")
		}
	})

	t.Run("player_untouched", func(t *testing.T) {
		player, _ := ecs.Get(w, scene.Player, component.InputComponent.Kind())
		if player.MoveY != 0 || player.Jump {
			t.Fatalf("player input was scripted: %+v", player)
		}
	})

	t.Run("bad_script", func(t *testing.T) {
		sys := NewScriptedInputSystem("missing.tengo")
		input.MoveY = 0.5
		sys.Update(w, tick)
		sys.Update(w, tick)
		if input.MoveY != 0.5 {
			t.Fatalf("a broken script should leave input alone")
		}
		if rt := sys.runtimes[companion]; rt == nil || rt.err == nil {
			t.Fatalf("expected the load error to be cached")
		}
		sys.Invalidate("scripts/missing.tengo")
		if len(sys.runtimes) != 0 {
			t.Fatalf("invalidate should drop the cached runtime")
		}
	})
}

func TestInputScriptGlobals(t *testing.T) {
	usePrefabDir(t)
	clock := "move_x := 0.0\nif elapsed >= 1.0 { move_x = 1.0 }\nmove_y := dt * 50.0\nsprint := grounded\njump := frame == 3\n"
	if err := os.MkdirAll(filepath.Join(prefabs.Dir, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(prefabs.Dir, "scripts", "clock.tengo"), []byte(clock), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"patrol.tengo", "scripts/jump_test.tengo", "clock.tengo"} {
		t.Run(name, func(t *testing.T) {
			if _, err := compileInputScript(name); err != nil {
				t.Fatalf("compile: %v", err)
			}
		})
	}

	cases := []struct {
		name     string
		ticks    int
		grounded bool
		want     component.Input
	}{
		{"start", 0, false, component.Input{MoveY: 1}},
		{"frame_three", 3, true, component.Input{MoveY: 1, Sprint: true, Jump: true}},
		{"after_one_second", 60, true, component.Input{MoveX: 1, MoveY: 1, Sprint: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			compiled, err := compileInputScript("clock.tengo")
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			w := ecs.NewWorld()
			for i := 0; i < c.ticks; i++ {
				w.Advance(tick)
			}
			var input component.Input
			rt := &inputScript{name: "clock.tengo", compiled: compiled}
			if err := rt.run(w, tick, c.grounded, &input); err != nil {
				t.Fatalf("run: %v", err)
			}
			if math.Abs(input.MoveX-c.want.MoveX) > 1e-9 || math.Abs(input.MoveY-c.want.MoveY) > 1e-9 ||
				input.Sprint != c.want.Sprint || input.Jump != c.want.Jump {
				t.Fatalf("got %+v, want %+v", input, c.want)
			}
		})
	}
}
