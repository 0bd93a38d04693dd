// Command motionsim runs a scene headless with scripted input and reports
// how the characters moved.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/ecs/entity"
	"github.com/milk9111/thirdperson/ecs/system"
	"gopkg.in/yaml.v3"
)

type options struct {
	scene  string
	script string
	frames int
	dt     float64
	trace  bool
	debug  bool
}

// Summary is the YAML report written at the end of a run.
type Summary struct {
	Scene      string             `yaml:"scene"`
	Frames     int                `yaml:"frames"`
	Seconds    float64            `yaml:"seconds"`
	Characters []CharacterSummary `yaml:"characters"`
	Revealed   []string           `yaml:"revealed"`
}

type CharacterSummary struct {
	Name     string     `yaml:"name"`
	Position [3]float64 `yaml:"position,flow"`
	Phase    string     `yaml:"phase"`
	Distance float64    `yaml:"distance"`
	Jumps    int        `yaml:"jumps"`
	Landings int        `yaml:"landings"`
	Respawns int        `yaml:"respawns"`
}

func main() {
	var opts options
	flag.StringVar(&opts.scene, "scene", "scene.yaml", "scene prefab to load")
	flag.StringVar(&opts.script, "script", "patrol.tengo", "tengo script that drives the player")
	flag.IntVar(&opts.frames, "frames", 600, "number of ticks to simulate")
	flag.Float64Var(&opts.dt, "dt", 1.0/60, "seconds per tick")
	flag.BoolVar(&opts.trace, "trace", false, "print one line per tick for the player")
	flag.BoolVar(&opts.debug, "debug", false, "log controller events")
	flag.Parse()

	if !opts.debug {
		log.SetOutput(io.Discard)
	}
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "motionsim:", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	if opts.frames < 0 || opts.dt <= 0 {
		return fmt.Errorf("frames must be >= 0 and dt > 0")
	}

	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, opts.scene)
	if err != nil {
		return err
	}
	if opts.script != "" {
		player, _ := ecs.Get(w, scene.Player, component.CharacterComponent.Kind())
		player.Script = opts.script
		if err := ecs.Add(w, scene.Player, component.ScriptedTagComponent.Kind(), &component.ScriptedTag{}); err != nil {
			return fmt.Errorf("script player: %w", err)
		}
	}

	scheduler := ecs.NewScheduler(
		system.NewScriptedInputSystem(""),
		system.NewCameraSystem(),
		system.NewCharacterControllerSystem(opts.debug),
		system.NewTriggerSystem(),
	)

	stats := make(map[ecs.Entity]*CharacterSummary, len(scene.Characters))
	last := make(map[ecs.Entity]component.Transform, len(scene.Characters))
	for _, e := range scene.Characters {
		ch, _ := ecs.Get(w, e, component.CharacterComponent.Kind())
		tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		stats[e] = &CharacterSummary{Name: ch.Name}
		last[e] = *tr
	}

	for i := 0; i < opts.frames; i++ {
		scheduler.Update(w, opts.dt)

		for _, ev := range w.Events().Drain() {
			s, ok := stats[ev.Entity]
			if !ok {
				continue
			}
			switch ev.Kind {
			case ecs.EventJumped:
				s.Jumps++
			case ecs.EventLanded:
				s.Landings++
			}
		}

		for _, e := range scene.Characters {
			tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
			ch, _ := ecs.Get(w, e, component.CharacterComponent.Kind())
			step := tr.Position.Sub(last[e].Position).Len()
			// A jump back to spawn is a respawn, not travel.
			if tr.Position == ch.Spawn && step > 1 {
				stats[e].Respawns++
			} else {
				stats[e].Distance += step
			}
			last[e] = *tr
		}

		if opts.trace {
			traceFrame(out, w, scene.Player)
		}
	}

	return writeSummary(out, w, opts, scene, stats)
}

func traceFrame(out io.Writer, w *ecs.World, player ecs.Entity) {
	ch, _ := ecs.Get(w, player, component.CharacterComponent.Kind())
	tr, _ := ecs.Get(w, player, component.TransformComponent.Kind())
	s := ch.Controller.State()
	fmt.Fprintf(out, "%5d %-8s pos=(%7.3f %7.3f %7.3f) speed=%.3f vy=%7.3f yaw=%6.1f jumps=%d\n",
		w.Frame(), s.Phase(), tr.Position.X(), tr.Position.Y(), tr.Position.Z(),
		s.HorizontalSpeed, s.VerticalVelocity, s.FacingYaw, s.JumpCount)
}

func writeSummary(out io.Writer, w *ecs.World, opts options, scene *entity.Scene, stats map[ecs.Entity]*CharacterSummary) error {
	summary := Summary{
		Scene:   opts.scene,
		Frames:  opts.frames,
		Seconds: common.RoundTo(w.Time(), 3),
	}
	for _, e := range scene.Characters {
		s := stats[e]
		ch, _ := ecs.Get(w, e, component.CharacterComponent.Kind())
		p := ch.Body.Position()
		s.Position = [3]float64{common.RoundTo(p.X(), 3), common.RoundTo(p.Y(), 3), common.RoundTo(p.Z(), 3)}
		s.Phase = ch.Controller.State().Phase().String()
		s.Distance = common.RoundTo(s.Distance, 3)
		summary.Characters = append(summary.Characters, *s)
	}
	ecs.ForEach(w, component.RevealComponent.Kind(), func(_ ecs.Entity, r *component.Reveal) {
		if r.Active {
			summary.Revealed = append(summary.Revealed, r.Name)
		}
	})

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return enc.Close()
}
