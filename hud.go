package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/prefabs"
	"golang.org/x/image/font/basicfont"
)

var hudTextColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// HUD is a corner panel with the player's motion readout.
type HUD struct {
	UI *ebitenui.UI

	motion  *widget.Text
	tuning  *widget.Text
	reveals *widget.Text
	help    *widget.Text
}

func NewHUD() *HUD {
	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	panelImg := imageui.NewNineSliceColor(color.NRGBA{A: 160})

	newLabel := func() *widget.Text {
		return widget.NewText(widget.TextOpts.Text("", &face, hudTextColor))
	}
	h := &HUD{motion: newLabel(), tuning: newLabel(), reveals: newLabel(), help: newLabel()}
	h.help.Label = "WASD move  shift sprint  space jump  Q/E turn  C copy  P pause  esc cursor"

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionStart, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	panel.AddChild(h.motion)
	panel.AddChild(h.tuning)
	panel.AddChild(h.reveals)
	panel.AddChild(h.help)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	h.UI = &ebitenui.UI{Container: root}
	return h
}

// Refresh rewrites the labels from the world.
func (h *HUD) Refresh(w *ecs.World, player ecs.Entity, fps float64) {
	ch, ok := ecs.Get(w, player, component.CharacterComponent.Kind())
	if ok {
		h.motion.Label = hudMotionText(takeSnapshot(ch, w.Frame()), fps)
		h.tuning.Label = tuningText(ch.Source)
	}

	var active []string
	ecs.ForEach(w, component.RevealComponent.Kind(), func(_ ecs.Entity, r *component.Reveal) {
		if r.Active {
			active = append(active, r.Name)
		}
	})
	h.reveals.Label = "revealed: none"
	if len(active) > 0 {
		h.reveals.Label = "revealed: " + strings.Join(active, ", ")
	}
}

func hudMotionText(s Snapshot, fps float64) string {
	return fmt.Sprintf("%s  %s  fps %.0f\nspeed %.3f  vy %.2f  yaw %.1f\njumps left %d  pos (%.2f, %.2f, %.2f)",
		s.Name, s.Phase, fps,
		s.HorizontalSpeed, s.VerticalVelocity, s.FacingYaw,
		s.JumpsLeft, s.Position[0], s.Position[1], s.Position[2])
}

// tuningText names the prefab a character was built from and whether the
// disk copy is in use.
func tuningText(source string) string {
	name := prefabs.PrefabName(source)
	if mod, ok := prefabs.ModTime(name); ok {
		return fmt.Sprintf("tuning: %s (disk, %s)", name, mod.Format(time.TimeOnly))
	}
	return fmt.Sprintf("tuning: %s (embedded)", name)
}
