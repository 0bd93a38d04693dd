package motion

import "github.com/go-gl/mathgl/mgl64"

// SpatialQuery answers overlap tests against the world. Implementations must
// ignore trigger volumes.
type SpatialQuery interface {
	CheckSphere(center mgl64.Vec3, radius float64, layers LayerMask) bool
}

// GroundedSensor probes for ground just below a character's feet.
type GroundedSensor struct {
	query  SpatialQuery
	offset float64
	radius float64
	layers LayerMask
}

func NewGroundedSensor(query SpatialQuery, cfg Config) *GroundedSensor {
	return &GroundedSensor{
		query:  query,
		offset: cfg.GroundProbeOffset,
		radius: cfg.GroundProbeRadius,
		layers: cfg.GroundLayers,
	}
}

// Center is the probe sphere's center for a body at position.
func (g *GroundedSensor) Center(position mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{position.X(), position.Y() - g.offset, position.Z()}
}

func (g *GroundedSensor) Radius() float64 { return g.radius }

// Probe reports whether ground overlaps the probe sphere.
func (g *GroundedSensor) Probe(position mgl64.Vec3) bool {
	if g == nil || g.query == nil {
		return false
	}
	return g.query.CheckSphere(g.Center(position), g.radius, g.layers)
}
