package ecs

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/motion"
)

// The Chipmunk space models the ground plane: world x maps to space X and
// world z maps to space Y. Heights are tracked outside the space.

const (
	collisionTypeGround cp.CollisionType = iota + 1
	collisionTypeWall
	collisionTypeTrigger
	collisionTypeCharacter
)

// Ground layers occupy the low filter bits; the top four are reserved.
const (
	groundLayerBits   = (1 << 28) - 1
	categoryQuery     = 1 << 28
	categoryTrigger   = 1 << 29
	categoryWall      = 1 << 30
	categoryCharacter = 1 << 31
)

const (
	collisionSlop     = 0.01
	maxSlideSteps     = 64
	maxPushIterations = 4

	// landingTolerance absorbs float drift when resting exactly on a top.
	landingTolerance = 1e-6
)

// TriggerContact is queued when a character enters or leaves a trigger.
type TriggerContact struct {
	Trigger   string
	Character string
	Enter     bool
}

type platformShape struct {
	platform component.Platform
}

type triggerShape struct {
	name string
}

// PhysicsWorld owns the Chipmunk space, the walkable platforms and the
// character bodies.
type PhysicsWorld struct {
	space         *cp.Space
	handlersReady bool

	platforms  []*platformShape
	characters map[string]*CharacterBody
	contacts   []TriggerContact
}

// NewPhysicsWorld creates an empty world.
func NewPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetCollisionSlop(collisionSlop)

	pw := &PhysicsWorld{
		space:      space,
		characters: make(map[string]*CharacterBody),
	}
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// AddPlatform registers a walkable box. Its footprint never blocks
// horizontal movement; only the ground probe and landing see it.
func (pw *PhysicsWorld) AddPlatform(p component.Platform) {
	if pw == nil || pw.space == nil {
		return
	}
	if p.Max.X() < p.Min.X() || p.Max.Y() < p.Min.Y() || p.Top < p.Bottom {
		log.Printf("PhysicsWorld: skipping degenerate platform %q", p.Name)
		return
	}
	bb := cp.BB{L: p.Min.X(), B: p.Min.Y(), R: p.Max.X(), T: p.Max.Y()}
	shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
	shape.SetCollisionType(collisionTypeGround)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(groundCategory(p.Layer)), categoryQuery))

	ref := &platformShape{platform: p}
	shape.UserData = ref
	pw.space.AddShape(shape)
	pw.platforms = append(pw.platforms, ref)
}

// AddWall adds a solid segment characters cannot pass.
func (pw *PhysicsWorld) AddWall(w component.Wall) {
	if pw == nil || pw.space == nil {
		return
	}
	radius := w.Thickness / 2
	shape := cp.NewSegment(pw.space.StaticBody, toSpace(w.A), toSpace(w.B), radius)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeWall)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryWall, categoryCharacter))
	pw.space.AddShape(shape)
}

// AddTrigger adds a circular trigger volume around center on the ground
// plane.
func (pw *PhysicsWorld) AddTrigger(name string, center mgl64.Vec3, radius float64) {
	if pw == nil || pw.space == nil {
		return
	}
	shape := cp.NewCircle(pw.space.StaticBody, radius, cp.Vector{X: center.X(), Y: center.Z()})
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeTrigger)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryTrigger, categoryCharacter))
	shape.UserData = &triggerShape{name: name}
	pw.space.AddShape(shape)
	log.Printf("PhysicsWorld: trigger %q at (%.2f, %.2f) r=%.2f", name, center.X(), center.Z(), radius)
}

// AddCharacter creates a body for a named character standing at position.
func (pw *PhysicsWorld) AddCharacter(name string, position mgl64.Vec3, radius, height float64) *CharacterBody {
	if pw == nil || pw.space == nil {
		return nil
	}
	if existing, ok := pw.characters[name]; ok {
		pw.RemoveCharacter(existing)
	}

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: position.X(), Y: position.Z()})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeCharacter)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryCharacter, categoryWall|categoryTrigger))

	cb := &CharacterBody{
		name:   name,
		world:  pw,
		body:   body,
		shape:  shape,
		y:      position.Y(),
		radius: radius,
		height: height,
	}
	shape.UserData = cb

	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.characters[name] = cb
	log.Printf("PhysicsWorld: character %q at (%.2f, %.2f, %.2f)", name, position.X(), position.Y(), position.Z())
	return cb
}

// RemoveCharacter takes a character body out of the space.
func (pw *PhysicsWorld) RemoveCharacter(cb *CharacterBody) {
	if pw == nil || cb == nil || cb.world != pw {
		return
	}
	pw.space.RemoveShape(cb.shape)
	pw.space.RemoveBody(cb.body)
	if pw.characters[cb.name] == cb {
		delete(pw.characters, cb.name)
	}
	cb.world = nil
}

// Character looks up a body by name.
func (pw *PhysicsWorld) Character(name string) (*CharacterBody, bool) {
	if pw == nil {
		return nil, false
	}
	cb, ok := pw.characters[name]
	return cb, ok
}

// CheckSphere reports whether a sphere overlaps any platform on layers.
// Triggers and walls never count.
func (pw *PhysicsWorld) CheckSphere(center mgl64.Vec3, radius float64, layers motion.LayerMask) bool {
	if pw == nil || pw.space == nil || radius < 0 {
		return false
	}
	mask := uint(layers) & groundLayerBits
	if mask == 0 {
		return false
	}

	p := cp.Vector{X: center.X(), Y: center.Z()}
	filter := cp.NewShapeFilter(cp.NO_GROUP, categoryQuery, mask)
	hit := false
	pw.space.BBQuery(cp.NewBBForCircle(p, radius), filter, func(shape *cp.Shape, _ interface{}) {
		if hit || shape.Sensor() {
			return
		}
		ref, ok := shape.UserData.(*platformShape)
		if !ok {
			return
		}
		dh := math.Max(0, shape.PointQuery(p).Distance)
		dv := verticalGap(center.Y(), ref.platform.Bottom, ref.platform.Top)
		if dh*dh+dv*dv <= radius*radius {
			hit = true
		}
	}, nil)
	return hit
}

// Step advances the space once so trigger sensors see where the bodies moved
// this tick. It only fires trigger callbacks; every body is pinned back to
// the position Move resolved.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil || dt <= 0 {
		return
	}
	bodies := make([]*CharacterBody, 0, len(pw.characters))
	pinned := make([]cp.Vector, 0, len(pw.characters))
	for _, cb := range pw.characters {
		cb.body.SetVelocity(0, 0)
		bodies = append(bodies, cb)
		pinned = append(pinned, cb.body.Position())
	}
	pw.space.Step(dt)
	for i, cb := range bodies {
		cb.body.SetPosition(pinned[i])
		cb.body.SetVelocity(0, 0)
	}
}

// DrainContacts returns trigger contacts queued since the last call.
func (pw *PhysicsWorld) DrainContacts() []TriggerContact {
	if pw == nil || len(pw.contacts) == 0 {
		return nil
	}
	out := pw.contacts
	pw.contacts = nil
	return out
}

// landingHeight returns the highest platform top the footprint at p (with
// radius r) crosses while falling from prevY to nextY.
func (pw *PhysicsWorld) landingHeight(p cp.Vector, r, prevY, nextY float64) (float64, bool) {
	best := math.Inf(-1)
	for _, ref := range pw.platforms {
		top := ref.platform.Top
		if prevY < top-landingTolerance || nextY >= top {
			continue
		}
		if !footprintOverlaps(ref.platform, p, r) {
			continue
		}
		if top > best {
			best = top
		}
	}
	return best, !math.IsInf(best, -1)
}

// ceilingHeight returns the lowest platform bottom the head crosses while
// rising from prevTop to nextTop.
func (pw *PhysicsWorld) ceilingHeight(p cp.Vector, r, prevTop, nextTop float64) (float64, bool) {
	best := math.Inf(1)
	for _, ref := range pw.platforms {
		bottom := ref.platform.Bottom
		if prevTop > bottom+landingTolerance || nextTop <= bottom {
			continue
		}
		if !footprintOverlaps(ref.platform, p, r) {
			continue
		}
		if bottom < best {
			best = bottom
		}
	}
	return best, !math.IsInf(best, 1)
}

func (pw *PhysicsWorld) setupHandlers() {
	if pw == nil || pw.handlersReady || pw.space == nil {
		return
	}

	triggerHandler := pw.space.NewCollisionHandler(collisionTypeCharacter, collisionTypeTrigger)
	triggerHandler.UserData = pw
	triggerHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if world, ok := userData.(*PhysicsWorld); ok {
			world.queueContact(arb, true)
		}
		return true
	}
	triggerHandler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		if world, ok := userData.(*PhysicsWorld); ok {
			world.queueContact(arb, false)
		}
	}

	pw.handlersReady = true
}

func (pw *PhysicsWorld) queueContact(arb *cp.Arbiter, enter bool) {
	a, b := arb.Shapes()
	cb, okA := a.UserData.(*CharacterBody)
	trig, okB := b.UserData.(*triggerShape)
	if !okA || !okB {
		cb, okA = b.UserData.(*CharacterBody)
		trig, okB = a.UserData.(*triggerShape)
	}
	if !okA || !okB {
		return
	}
	pw.contacts = append(pw.contacts, TriggerContact{Trigger: trig.name, Character: cb.name, Enter: enter})
}

// CharacterBody is a kinematic stand-in for an engine character controller.
// Horizontal motion is resolved against walls by the space; vertical motion
// lands on platform tops and stops under platform bottoms.
type CharacterBody struct {
	name  string
	world *PhysicsWorld
	body  *cp.Body
	shape *cp.Shape

	y      float64
	radius float64
	height float64
	vel    mgl64.Vec3
}

func (c *CharacterBody) Name() string { return c.name }

func (c *CharacterBody) Radius() float64 { return c.radius }

// Position is the feet position in world space.
func (c *CharacterBody) Position() mgl64.Vec3 {
	p := c.body.Position()
	return mgl64.Vec3{p.X, c.y, p.Y}
}

// Teleport places the body without sweeping and clears its velocity.
func (c *CharacterBody) Teleport(position mgl64.Vec3) {
	c.body.SetPosition(cp.Vector{X: position.X(), Y: position.Z()})
	c.body.SetVelocity(0, 0)
	c.y = position.Y()
	c.vel = mgl64.Vec3{}
}

// Move applies displacement over dt seconds and returns the velocity the
// body actually achieved.
func (c *CharacterBody) Move(displacement mgl64.Vec3, dt float64) mgl64.Vec3 {
	if dt <= 0 || c.world == nil {
		return c.vel
	}
	before := c.Position()

	p := c.slide(cp.Vector{X: displacement.X(), Y: displacement.Z()})
	c.body.SetVelocity(0, 0)

	nextY := c.y + displacement.Y()
	switch {
	case displacement.Y() < 0:
		if top, ok := c.world.landingHeight(p, c.radius, c.y, nextY); ok {
			nextY = top
		}
	case displacement.Y() > 0:
		if bottom, ok := c.world.ceilingHeight(p, c.radius, c.y+c.height, nextY+c.height); ok {
			nextY = bottom - c.height
		}
	}
	c.y = nextY

	c.vel = c.Position().Sub(before).Mul(1 / dt)
	return c.vel
}

// slide moves the body by delta in sub-steps no longer than half its radius,
// pushing it out of walls after each one.
func (c *CharacterBody) slide(delta cp.Vector) cp.Vector {
	p := c.body.Position()
	steps := 1
	if c.radius > 0 {
		steps = int(math.Ceil(delta.Length() / (c.radius * 0.5)))
	}
	steps = max(1, min(steps, maxSlideSteps))

	part := delta.Mult(1 / float64(steps))
	for i := 0; i < steps; i++ {
		p = p.Add(part)
		c.body.SetPosition(p)
		p = c.depenetrate(p)
	}
	return p
}

func (c *CharacterBody) depenetrate(p cp.Vector) cp.Vector {
	for i := 0; i < maxPushIterations; i++ {
		var push cp.Vector
		c.world.space.ShapeQuery(c.shape, func(other *cp.Shape, set *cp.ContactPointSet) {
			if other.Sensor() {
				return
			}
			deepest := 0.0
			for j := 0; j < set.Count; j++ {
				deepest = math.Min(deepest, set.Points[j].Distance)
			}
			// Normal points from the character into the wall.
			push = push.Add(set.Normal.Mult(deepest))
		})
		if push.LengthSq() < 1e-12 {
			break
		}
		p = p.Add(push)
		c.body.SetPosition(p)
	}
	return p
}

// Velocity is the velocity reported by the last Move.
func (c *CharacterBody) Velocity() mgl64.Vec3 { return c.vel }

func groundCategory(layer int) uint32 {
	bit := uint32(motion.LayerBit(layer))
	if bit&groundLayerBits == 0 {
		return 1
	}
	return bit
}

func toSpace(v mgl64.Vec2) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

func verticalGap(y, bottom, top float64) float64 {
	switch {
	case y < bottom:
		return bottom - y
	case y > top:
		return y - top
	}
	return 0
}

func footprintOverlaps(p component.Platform, c cp.Vector, r float64) bool {
	dx := math.Max(0, math.Max(p.Min.X()-c.X, c.X-p.Max.X()))
	dz := math.Max(0, math.Max(p.Min.Y()-c.Y, c.Y-p.Max.Y()))
	return dx*dx+dz*dz <= r*r
}
