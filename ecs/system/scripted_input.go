package system

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/prefabs"
)

// ScriptedInputSystem fills the Input of scripted characters by running a
// tengo script every tick. Scripts read elapsed, frame, dt and grounded, and
// may set move_x, move_y, sprint, jump and turn. A true jump raises the
// latch; it is never lowered from a script.
type ScriptedInputSystem struct {
	// Override, when set, runs in place of each character's own script.
	Override string

	runtimes map[ecs.Entity]*inputScript
}

type inputScript struct {
	name     string
	compiled *tengo.Compiled
	err      error
}

func NewScriptedInputSystem(override string) *ScriptedInputSystem {
	return &ScriptedInputSystem{Override: override, runtimes: map[ecs.Entity]*inputScript{}}
}

// Invalidate drops compiled copies of the named script so the next tick
// reloads it.
func (s *ScriptedInputSystem) Invalidate(name string) {
	for e, rt := range s.runtimes {
		if prefabs.ScriptName(rt.name) == prefabs.ScriptName(name) {
			delete(s.runtimes, e)
		}
	}
}

func (s *ScriptedInputSystem) Update(w *ecs.World, dt float64) {
	if w == nil {
		return
	}
	if s.runtimes == nil {
		s.runtimes = map[ecs.Entity]*inputScript{}
	}

	ecs.ForEach3(w, component.ScriptedTagComponent.Kind(), component.CharacterComponent.Kind(), component.InputComponent.Kind(), func(e ecs.Entity, _ *component.ScriptedTag, ch *component.Character, input *component.Input) {
		name := s.Override
		if name == "" {
			name = ch.Script
		}
		if name == "" {
			return
		}

		rt := s.runtime(e, name)
		if rt.err != nil {
			return
		}

		grounded := false
		if ch.Controller != nil {
			grounded = ch.Controller.State().Grounded
		}
		if err := rt.run(w, dt, grounded, input); err != nil {
			log.Printf("script: %s for %s: %v", name, ch.Name, err)
			rt.err = err
		}
	})

	for e := range s.runtimes {
		if !ecs.IsAlive(w, e) {
			delete(s.runtimes, e)
		}
	}
}

func (s *ScriptedInputSystem) runtime(e ecs.Entity, name string) *inputScript {
	if rt, ok := s.runtimes[e]; ok && rt.name == name {
		return rt
	}
	rt := &inputScript{name: name}
	rt.compiled, rt.err = compileInputScript(name)
	if rt.err != nil {
		log.Printf("script: %v", rt.err)
	}
	s.runtimes[e] = rt
	return rt
}

func compileInputScript(name string) (*tengo.Compiled, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	script := tengo.NewScript(src)
	for _, g := range inputGlobals {
		if err := script.Add(g.name, g.zero); err != nil {
			return nil, fmt.Errorf("compile %s: add %s: %w", name, g.name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	// A global that shadows a builtin compiles but cannot be set.
	for _, g := range inputGlobals {
		if err := compiled.Set(g.name, g.zero); err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
	}
	return compiled, nil
}

// inputGlobals are set on the script before every run. The clock is elapsed
// because time is a tengo builtin.
var inputGlobals = []struct {
	name string
	zero any
}{
	{"elapsed", 0.0},
	{"dt", 0.0},
	{"frame", 0},
	{"grounded", false},
}

func (rt *inputScript) run(w *ecs.World, dt float64, grounded bool, input *component.Input) error {
	c := rt.compiled
	if err := c.Set("elapsed", w.Time()); err != nil {
		return err
	}
	if err := c.Set("dt", dt); err != nil {
		return err
	}
	if err := c.Set("frame", int(w.Frame())); err != nil {
		return err
	}
	if err := c.Set("grounded", grounded); err != nil {
		return err
	}
	if err := c.Run(); err != nil {
		return err
	}

	if c.IsDefined("move_x") {
		input.MoveX = c.Get("move_x").Float()
	}
	if c.IsDefined("move_y") {
		input.MoveY = c.Get("move_y").Float()
	}
	if c.IsDefined("sprint") {
		input.Sprint = c.Get("sprint").Bool()
	}
	if c.IsDefined("jump") && c.Get("jump").Bool() {
		input.Jump = true
	}
	if c.IsDefined("turn") {
		if turn := c.Get("turn").Int(); turn != 0 {
			input.Turn = sign(turn)
		}
	}
	return nil
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
