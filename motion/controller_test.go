package motion

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type fakeInput struct {
	move    mgl64.Vec2
	sprint  bool
	jump    bool
	cleared int
}

func (f *fakeInput) Move() mgl64.Vec2    { return f.move }
func (f *fakeInput) Sprinting() bool     { return f.sprint }
func (f *fakeInput) JumpRequested() bool { return f.jump }
func (f *fakeInput) ClearJump() {
	f.jump = false
	f.cleared++
}

// fakeBody applies displacements verbatim unless blocked horizontally, and
// never sinks below floor.
type fakeBody struct {
	pos     mgl64.Vec3
	floor   float64
	blocked bool
	moves   int
}

func (b *fakeBody) Position() mgl64.Vec3 { return b.pos }

func (b *fakeBody) Move(d mgl64.Vec3, dt float64) mgl64.Vec3 {
	b.moves++
	if b.blocked {
		d = mgl64.Vec3{0, d.Y(), 0}
	}
	before := b.pos
	b.pos = b.pos.Add(d)
	if b.pos.Y() < b.floor {
		b.pos = mgl64.Vec3{b.pos.X(), b.floor, b.pos.Z()}
	}
	return b.pos.Sub(before).Mul(1 / dt)
}

// fakeGround treats everything at or below height as solid ground.
type fakeGround struct {
	height  float64
	centers []mgl64.Vec3
	layers  LayerMask
}

func (g *fakeGround) CheckSphere(center mgl64.Vec3, radius float64, layers LayerMask) bool {
	g.centers = append(g.centers, center)
	g.layers = layers
	return center.Y()-radius <= g.height
}

type fixedYaw float64

func (y fixedYaw) Yaw() float64 { return float64(y) }

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeInput, *fakeBody, *fakeGround) {
	t.Helper()
	in := &fakeInput{}
	body := &fakeBody{}
	ground := &fakeGround{}
	c, err := NewController(cfg, in, body, ground, fixedYaw(0))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c, in, body, ground
}

func TestNewControllerRejectsMissingCollaborators(t *testing.T) {
	cfg := DefaultConfig()
	in := &fakeInput{}
	body := &fakeBody{}
	ground := &fakeGround{}

	cases := []struct {
		name   string
		cfg    Config
		input  InputSource
		body   Body
		query  SpatialQuery
		camera YawProvider
		want   error
	}{
		{"no_camera", cfg, in, body, ground, nil, ErrNoCamera},
		{"no_input", cfg, nil, body, ground, fixedYaw(0), ErrNoInput},
		{"no_body", cfg, in, nil, ground, fixedYaw(0), ErrNoBody},
		{"no_query", cfg, in, body, nil, fixedYaw(0), ErrNoGroundQuery},
		{"bad_config", Config{Gravity: 9.8, TerminalVelocity: 1}, in, body, ground, fixedYaw(0), ErrInvalidConfig},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewController(c.cfg, c.input, c.body, c.query, c.camera)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestControllerProbesBelowFeet(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroundLayers = LayerBit(3)
	c, _, body, ground := newTestController(t, cfg)
	body.pos = mgl64.Vec3{1, 5, 2}
	body.floor = -100

	c.Update(tick)
	if len(ground.centers) != 1 {
		t.Fatalf("expected one probe, got %d", len(ground.centers))
	}
	want := mgl64.Vec3{1, 5 - cfg.GroundProbeOffset, 2}
	if !vecApprox(ground.centers[0], want) {
		t.Fatalf("probe center %v, want %v", ground.centers[0], want)
	}
	if ground.layers != LayerBit(3) {
		t.Fatalf("probe layers %b, want %b", ground.layers, LayerBit(3))
	}
}

func TestControllerClearsJumpOnlyWhenConsumed(t *testing.T) {
	cfg := DefaultConfig()
	c, in, _, _ := newTestController(t, cfg)

	// Settle on the ground first.
	for i := 0; i < 40; i++ {
		c.Update(tick)
	}
	if !c.State().Grounded {
		t.Fatalf("expected grounded after settling")
	}

	in.jump = true
	res := c.Update(tick)
	if !res.JumpConsumed || in.jump || in.cleared != 1 {
		t.Fatalf("expected jump consumed and cleared, res %+v cleared %d", res, in.cleared)
	}

	// Budget is spent: the request stays buffered.
	in.jump = true
	res = c.Update(tick)
	if res.JumpConsumed || !in.jump || in.cleared != 1 {
		t.Fatalf("unconsumed jump should stay raised, res %+v cleared %d", res, in.cleared)
	}
}

func TestControllerJumpArc(t *testing.T) {
	cfg := DefaultConfig()
	c, in, body, _ := newTestController(t, cfg)
	for i := 0; i < 40; i++ {
		c.Update(tick)
	}

	in.jump = true
	apex := 0.0
	landed := false
	for i := 0; i < 200; i++ {
		res := c.Update(tick)
		if body.pos.Y() > apex {
			apex = body.pos.Y()
		}
		if i > 0 && res.Landed {
			landed = true
			break
		}
	}
	if !landed {
		t.Fatalf("character never landed")
	}
	// Linear integration per tick lands within a tick's travel of the height.
	if apex < 1.0 || apex > 1.4 {
		t.Fatalf("apex %v far from configured height %v", apex, cfg.JumpHeights[0])
	}
}

func TestControllerMeasuredSpeedFeedback(t *testing.T) {
	cfg := DefaultConfig()
	c, in, body, _ := newTestController(t, cfg)
	in.move = mgl64.Vec2{0, 1}
	for i := 0; i < 60; i++ {
		c.Update(tick)
	}
	if got := HorizontalSpeed(c.Velocity()); !approx(got, cfg.MoveSpeed) {
		t.Fatalf("free running speed %v, want %v", got, cfg.MoveSpeed)
	}

	body.blocked = true
	c.Update(tick)
	c.Update(tick)
	// Measured speed is zero against the wall, so speed restarts from 0.
	if got := c.State().HorizontalSpeed; got != 0.4 {
		t.Fatalf("blocked speed %v, want 0.4", got)
	}
}

func TestControllerZeroDtIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	c, in, body, ground := newTestController(t, cfg)
	in.jump = true
	before := c.State()

	c.Update(0)
	c.Update(-1)
	if c.State() != before {
		t.Fatalf("state changed on zero dt")
	}
	if body.moves != 0 || len(ground.centers) != 0 || !in.jump {
		t.Fatalf("zero dt touched collaborators: moves %d probes %d jump %v", body.moves, len(ground.centers), in.jump)
	}
}

func TestControllerWithConfigKeepsState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JumpHeights = []float64{1, 1}
	c, in, _, _ := newTestController(t, cfg)
	in.jump = true
	c.Update(tick)
	in.jump = true
	c.Update(tick)
	if c.State().JumpCount != 2 {
		t.Fatalf("expected two jumps, got %d", c.State().JumpCount)
	}

	next := DefaultConfig()
	next.MoveSpeed = 4
	reloaded, err := c.WithConfig(next)
	if err != nil {
		t.Fatalf("WithConfig: %v", err)
	}
	if reloaded.Config().MoveSpeed != 4 || c.Config().MoveSpeed != cfg.MoveSpeed {
		t.Fatalf("config not swapped on the copy only")
	}
	if reloaded.State().JumpCount != 1 {
		t.Fatalf("jump count should be capped to the new budget, got %d", reloaded.State().JumpCount)
	}
	if reloaded.State().VerticalVelocity != c.State().VerticalVelocity {
		t.Fatalf("vertical velocity lost across reload")
	}

	bad := DefaultConfig()
	bad.TerminalVelocity = 0
	if _, err := c.WithConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestControllerReset(t *testing.T) {
	cfg := DefaultConfig()
	c, in, _, _ := newTestController(t, cfg)
	in.move = mgl64.Vec2{1, 0}
	for i := 0; i < 30; i++ {
		c.Update(tick)
	}
	in.jump = true
	c.Update(tick)
	facing := c.State().FacingYaw
	if facing == 0 || c.State().JumpCount != 1 {
		t.Fatalf("setup did not turn and jump: %+v", c.State())
	}

	c.Reset()
	s := c.State()
	if s.JumpCount != 0 || s.VerticalVelocity != 0 || s.HorizontalSpeed != 0 || s.Grounded {
		t.Fatalf("motion survived reset: %+v", s)
	}
	if s.FacingYaw != facing || s.TargetYaw != facing {
		t.Fatalf("facing should survive reset, got %v want %v", s.FacingYaw, facing)
	}
	if c.Velocity() != (mgl64.Vec3{}) {
		t.Fatalf("velocity %v after reset", c.Velocity())
	}
}
