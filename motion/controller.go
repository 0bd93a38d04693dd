package motion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// InputSource supplies intent each tick. The jump flag stays raised until the
// controller consumes it with ClearJump, so a request made between ticks is
// buffered.
type InputSource interface {
	Move() mgl64.Vec2
	Sprinting() bool
	JumpRequested() bool
	ClearJump()
}

// Body is the moved character. Move applies a displacement over dt seconds
// and returns the velocity the body actually ended up with.
type Body interface {
	Position() mgl64.Vec3
	Move(displacement mgl64.Vec3, dt float64) mgl64.Vec3
}

// YawProvider supplies the camera yaw in world degrees.
type YawProvider interface {
	Yaw() float64
}

// Controller drives one character: it owns the motion state and wires it to
// the input, body, ground query and camera collaborators.
type Controller struct {
	cfg    Config
	state  State
	input  InputSource
	body   Body
	sensor *GroundedSensor
	camera YawProvider

	query    SpatialQuery
	measured float64
	velocity mgl64.Vec3
}

func NewController(cfg Config, input InputSource, body Body, query SpatialQuery, camera YawProvider) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new controller: %w", err)
	}
	if camera == nil {
		return nil, ErrNoCamera
	}
	if input == nil {
		return nil, ErrNoInput
	}
	if body == nil {
		return nil, ErrNoBody
	}
	if query == nil {
		return nil, ErrNoGroundQuery
	}

	cfg = cfg.Clone()
	return &Controller{
		cfg:    cfg,
		state:  NewState(cfg),
		input:  input,
		body:   body,
		sensor: NewGroundedSensor(query, cfg),
		camera: camera,
		query:  query,
	}, nil
}

// WithConfig returns a controller using cfg that keeps c's state and
// collaborators. c itself is left untouched.
func (c *Controller) WithConfig(cfg Config) (*Controller, error) {
	next, err := NewController(cfg, c.input, c.body, c.query, c.camera)
	if err != nil {
		return nil, err
	}
	next.state = c.state
	if next.state.JumpCount > next.cfg.MaxJumps() {
		next.state.JumpCount = next.cfg.MaxJumps()
	}
	next.measured = c.measured
	next.velocity = c.velocity
	return next, nil
}

// Update runs one tick: jump and gravity, ground probe, horizontal planning,
// then moves the body. A non-positive dt does nothing.
func (c *Controller) Update(dt float64) Result {
	if dt <= 0 {
		return Result{Phase: c.state.Phase(), Direction: Heading(c.state.TargetYaw)}
	}

	// The body has not moved yet this tick, so probing here sees the same
	// world as probing after the vertical step.
	frame := Frame{
		Move:          c.input.Move(),
		Sprint:        c.input.Sprinting(),
		Jump:          c.input.JumpRequested(),
		Grounded:      c.sensor.Probe(c.body.Position()),
		CameraYaw:     c.camera.Yaw(),
		MeasuredSpeed: c.measured,
	}

	next, res := Step(c.state, c.cfg, frame, dt)
	c.state = next
	if res.JumpConsumed {
		c.input.ClearJump()
	}

	c.velocity = c.body.Move(res.Displacement, dt)
	c.measured = HorizontalSpeed(c.velocity)
	return res
}

// Reset puts the controller back in its initial state, keeping the facing.
// Callers use it after teleporting the body.
func (c *Controller) Reset() {
	yaw := c.state.FacingYaw
	c.state = NewState(c.cfg)
	c.state.FacingYaw = yaw
	c.state.TargetYaw = yaw
	c.measured = 0
	c.velocity = mgl64.Vec3{}
}

func (c *Controller) State() State { return c.state }

// Config returns a copy of the controller's tuning.
func (c *Controller) Config() Config { return c.cfg.Clone() }

// Velocity is the body velocity reported after the last tick.
func (c *Controller) Velocity() mgl64.Vec3 { return c.velocity }

func (c *Controller) Sensor() *GroundedSensor { return c.sensor }
