package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/ecs/entity"
	"github.com/milk9111/thirdperson/ecs/system"
	"github.com/milk9111/thirdperson/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	debug  bool
	paused bool

	world     *ecs.World
	scene     *entity.Scene
	scheduler *ecs.Scheduler
	scripts   *system.ScriptedInputSystem
	render    *RenderSystem

	hud     *HUD
	pauseUI *ebitenui.UI
	watcher *prefabs.Watcher
}

// NewGame loads sceneName and wires the systems. A non-empty script drives
// the player instead of the keyboard.
func NewGame(sceneName, script string, debug bool) (*Game, error) {
	w := ecs.NewWorld()
	scene, err := entity.LoadScene(w, sceneName)
	if err != nil {
		return nil, err
	}

	g := &Game{
		debug:   debug,
		world:   w,
		scene:   scene,
		scripts: system.NewScriptedInputSystem(""),
		render:  NewRenderSystem(debug),
		hud:     NewHUD(),
	}

	input := NewInputSystem()
	if script != "" {
		player, _ := ecs.Get(w, scene.Player, component.CharacterComponent.Kind())
		player.Script = script
		if err := ecs.Add(w, scene.Player, component.ScriptedTagComponent.Kind(), &component.ScriptedTag{}); err != nil {
			return nil, fmt.Errorf("game: script player: %w", err)
		}
		input = nil
	}

	g.scheduler = ecs.NewScheduler()
	if input != nil {
		g.scheduler.Add(input)
	}
	g.scheduler.Add(g.scripts)
	g.scheduler.Add(system.NewCameraSystem())
	g.scheduler.Add(system.NewCharacterControllerSystem(debug))
	g.scheduler.Add(system.NewTriggerSystem())
	g.scheduler.Add(ecs.SystemFunc(g.logEvents))

	g.pauseUI = NewPauseUI(g)

	watcher, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
	if err != nil {
		log.Printf("game: hot reload disabled: %v", err)
	} else {
		g.watcher = watcher
	}
	return g, nil
}

func (g *Game) Update() error {
	g.pollReloads()

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyPlayerSnapshot()
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.scheduler.Update(g.world, 1/float64(ebiten.TPS()))
	g.hud.Refresh(g.world, g.scene.Player, ebiten.ActualFPS())
	g.hud.UI.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)
	g.hud.UI.Draw(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
	if g.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("frame %d  t %.2f", g.world.Frame(), g.world.Time()), 10, baseHeight-20)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		g.watcher.Close()
	}
}

// pollReloads applies prefab edits without blocking the frame.
func (g *Game) pollReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(change)
		case err := <-g.watcher.Errors:
			log.Printf("game: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) applyChange(change prefabs.Change) {
	if change.Kind == prefabs.ChangeScript {
		g.scripts.Invalidate(change.Name)
		log.Printf("game: script %s reloaded", change.Name)
		return
	}

	reloaded := false
	for _, e := range g.scene.Characters {
		ch, ok := ecs.Get(g.world, e, component.CharacterComponent.Kind())
		if !ok || prefabs.PrefabName(ch.Source) != change.Name {
			continue
		}
		reloaded = true
		if err := entity.ReloadCharacter(g.world, e, g.scene.Layers); err != nil {
			log.Printf("game: %v", err)
			continue
		}
		g.world.Events().Push(ecs.Event{Kind: ecs.EventConfigReloaded, Entity: e, Data: change.Name})
	}
	if !reloaded {
		log.Printf("game: %s changed; restart to apply", change.Name)
	}
}

func (g *Game) logEvents(w *ecs.World, _ float64) {
	for _, ev := range w.Events().Drain() {
		if !g.debug {
			continue
		}
		name := ev.Entity.String()
		if ch, ok := ecs.Get(w, ev.Entity, component.CharacterComponent.Kind()); ok {
			name = ch.Name
		}
		log.Printf("game: %s %s %v", ev.Kind, name, ev.Data)
	}
}

func (g *Game) copyPlayerSnapshot() {
	ch, ok := ecs.Get(g.world, g.scene.Player, component.CharacterComponent.Kind())
	if !ok {
		return
	}
	copySnapshot(takeSnapshot(ch, g.world.Frame()))
}

func (g *Game) respawnPlayer() {
	ch, ok := ecs.Get(g.world, g.scene.Player, component.CharacterComponent.Kind())
	if !ok {
		return
	}
	if body, ok := ch.Body.(*ecs.CharacterBody); ok {
		body.Teleport(ch.Spawn)
		ch.Controller.Reset()
	}
}
