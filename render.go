package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/motion"
)

var (
	wallColor      = color.NRGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	triggerColor   = color.NRGBA{R: 0xf0, G: 0xd0, B: 0x40, A: 0xff}
	triggerFill    = color.NRGBA{R: 0xf0, G: 0xd0, B: 0x40, A: 0x50}
	cameraColor    = color.NRGBA{R: 0x80, G: 0xc0, B: 0xff, A: 0xff}
	characterColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// RenderSystem draws a north-up top-down map centred on the camera target.
type RenderSystem struct {
	// Scale is screen pixels per world unit.
	Scale float64
	Debug bool
}

func NewRenderSystem(debug bool) *RenderSystem {
	return &RenderSystem{Scale: 24, Debug: debug}
}

type view struct {
	origin mgl64.Vec2
	cx, cy float64
	scale  float64
}

// project maps a world (x, z) to screen pixels. +Z points up the screen.
func (v view) project(x, z float64) (float32, float32) {
	return float32(v.cx + (x-v.origin.X())*v.scale), float32(v.cy - (z-v.origin.Y())*v.scale)
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	bounds := screen.Bounds()
	v := view{cx: float64(bounds.Dx()) / 2, cy: float64(bounds.Dy()) / 2, scale: r.Scale}
	cam := r.camera(w)
	if cam != nil {
		if target, ok := characterByName(w, cam.Target); ok {
			v.origin = mgl64.Vec2{target.X(), target.Z()}
		}
	}

	r.drawPlatforms(w, screen, v)

	ecs.ForEach(w, component.WallComponent.Kind(), func(_ ecs.Entity, wall *component.Wall) {
		x0, y0 := v.project(wall.A.X(), wall.A.Y())
		x1, y1 := v.project(wall.B.X(), wall.B.Y())
		vector.StrokeLine(screen, x0, y0, x1, y1, float32(math.Max(1, wall.Thickness*v.scale)), wallColor, true)
	})

	ecs.ForEach2(w, component.TriggerComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, trig *component.Trigger, tr *component.Transform) {
		x, y := v.project(tr.Position.X(), tr.Position.Z())
		radius := float32(trig.Radius * v.scale)
		if trig.Inside {
			vector.DrawFilledCircle(screen, x, y, radius, triggerFill, true)
		}
		vector.StrokeCircle(screen, x, y, radius, 1.5, triggerColor, true)
	})

	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, ch *component.Character, tr *component.Transform) {
		x, y := v.project(tr.Position.X(), tr.Position.Z())
		fill := ch.Color
		if fill == nil {
			fill = characterColor
		}
		vector.DrawFilledCircle(screen, x, y, float32(ch.Radius*v.scale), fill, true)

		nose := tr.Position.Add(motion.Heading(tr.Yaw).Mul(ch.Radius + 0.3))
		nx, ny := v.project(nose.X(), nose.Z())
		vector.StrokeLine(screen, x, y, nx, ny, 2, characterColor, true)

		if r.Debug {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %.2f", ch.Name, tr.Position.Y()), int(x)+8, int(y)+8)
		}
	})

	if cam != nil {
		r.drawCamera(screen, v, cam)
	}
	if r.Debug {
		if pw := w.PhysicsWorld(); pw != nil {
			drawPhysicsDebug(pw.Space(), v, screen)
		}
		drawMotionDebug(w, screen)
	}
}

func (r *RenderSystem) camera(w *ecs.World) *component.Camera {
	e, ok := ecs.First(w, component.CameraComponent.Kind())
	if !ok {
		return nil
	}
	cam, _ := ecs.Get(w, e, component.CameraComponent.Kind())
	return cam
}

// drawPlatforms draws lower platforms first so ledges sit over the floor.
func (r *RenderSystem) drawPlatforms(w *ecs.World, screen *ebiten.Image, v view) {
	var platforms []*component.Platform
	ecs.ForEach(w, component.PlatformComponent.Kind(), func(_ ecs.Entity, p *component.Platform) {
		platforms = append(platforms, p)
	})
	sort.SliceStable(platforms, func(i, j int) bool {
		return platforms[i].Top < platforms[j].Top
	})

	ground := playerGroundLayers(w)
	for _, p := range platforms {
		x, y := v.project(p.Min.X(), p.Max.Y())
		width := float32((p.Max.X() - p.Min.X()) * v.scale)
		height := float32((p.Max.Y() - p.Min.Y()) * v.scale)
		fill := platformFill(p, ground)
		vector.DrawFilledRect(screen, x, y, width, height, fill, false)
		vector.StrokeRect(screen, x, y, width, height, 1, color.Black, false)
		if r.Debug {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %.1f", p.Name, p.Top), int(x)+2, int(y)+2)
		}
	}
}

// drawCamera marks where the orbit camera sits behind its target.
func (r *RenderSystem) drawCamera(screen *ebiten.Image, v view, cam *component.Camera) {
	back := motion.Heading(cam.Yaw()).Mul(-cam.Distance * math.Cos(mgl64.DegToRad(cam.Pitch)))
	x0, y0 := v.project(v.origin.X(), v.origin.Y())
	x1, y1 := v.project(v.origin.X()+back.X(), v.origin.Y()+back.Z())
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, cameraColor, true)
	vector.DrawFilledCircle(screen, x1, y1, 4, cameraColor, true)
}

// platformFill dims platforms the player cannot stand on.
func platformFill(p *component.Platform, ground motion.LayerMask) color.Color {
	var fill color.Color = color.Gray{Y: 0x50}
	if p.Color != nil {
		fill = p.Color
	}
	if ground.Has(motion.LayerBit(p.Layer)) {
		return fill
	}
	r, g, b, a := fill.RGBA()
	return color.NRGBA64{R: uint16(r / 2), G: uint16(g / 2), B: uint16(b / 2), A: uint16(a)}
}

// playerGroundLayers is the player's ground mask, or every layer when there
// is no player.
func playerGroundLayers(w *ecs.World) motion.LayerMask {
	e, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return motion.AllLayers
	}
	ch, ok := ecs.Get(w, e, component.CharacterComponent.Kind())
	if !ok || ch.Controller == nil {
		return motion.AllLayers
	}
	return ch.Controller.Config().GroundLayers
}

// characterByName prefers the physics body, which is where the character
// is after this tick's move.
func characterByName(w *ecs.World, name string) (mgl64.Vec3, bool) {
	if pw := w.PhysicsWorld(); pw != nil {
		if cb, ok := pw.Character(name); ok {
			return cb.Position(), true
		}
	}
	var (
		pos   mgl64.Vec3
		found bool
	)
	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, ch *component.Character, tr *component.Transform) {
		if !found && ch.Name == name {
			pos = tr.Position
			found = true
		}
	})
	return pos, found
}
