package lights

import "github.com/arpelle/glint/pkg/core"

// PointLight is an infinitesimal emitter at a position. Its samples are
// delta distributed: the PDF is reported as zero and MIS weights treat the
// light sample as the only strategy.
type PointLight struct {
	Position  core.Vec3
	Intensity core.Color // Radiant intensity
}

// NewPointLight creates a new point light
func NewPointLight(position core.Vec3, intensity core.Color) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

// Sample implements Light
func (l *PointLight) Sample(isec *core.Intersection, sample core.Vec2) (Sample, bool) {
	toLight := l.Position.Subtract(isec.Point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return Sample{}, false
	}
	dist := toLight.Length()
	return Sample{
		Direction: toLight.Multiply(1.0 / dist),
		Radiance:  l.Intensity.Scale(1.0 / dist2),
		PDF:       0, // delta light
		Distance:  dist,
	}, true
}

// Eval implements Light; a delta light is never hit by a sampled direction
func (l *PointLight) Eval(isec *core.Intersection, dir core.Vec3) (core.Color, float64) {
	return core.Black, 0
}

// Environmental implements Light
func (l *PointLight) Environmental() bool {
	return false
}

// SceneSetup implements Light
func (l *PointLight) SceneSetup(center core.Vec3, radius float64) {}
