package lights

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// FarLight is a directional light with a finite angular extent: a cone of
// half-angle Angle around Direction, infinitely far away
type FarLight struct {
	Direction core.Vec3  // Unit direction from the scene toward the light
	Angle     float64    // Cone half-angle in radians
	Intensity core.Color // Radiance within the cone

	cosAngle float64
	distance float64 // Shadow-ray length, set from the scene bounds
}

// NewFarLight creates a new far light
func NewFarLight(direction core.Vec3, angle float64, intensity core.Color) *FarLight {
	return &FarLight{
		Direction: direction.Normalize(),
		Angle:     angle,
		Intensity: intensity,
		cosAngle:  math.Cos(angle),
		distance:  math.Inf(1),
	}
}

// Sample implements Light: a uniform direction within the cone
func (l *FarLight) Sample(isec *core.Intersection, sample core.Vec2) (Sample, bool) {
	dir := core.SampleCone(l.Direction, l.cosAngle, sample)
	if dir.Dot(isec.Normal) <= 0 {
		return Sample{}, false // light is entirely behind the surface
	}
	return Sample{
		Direction: dir,
		Radiance:  l.Intensity,
		PDF:       core.UniformConePDF(l.cosAngle),
		Distance:  l.distance,
	}, true
}

// Eval implements Light: the intensity iff dir falls within the cone
func (l *FarLight) Eval(isec *core.Intersection, dir core.Vec3) (core.Color, float64) {
	if dir.Dot(l.Direction) < l.cosAngle {
		return core.Black, 0
	}
	return l.Intensity, core.UniformConePDF(l.cosAngle)
}

// Environmental implements Light; a far light contributes to rays that
// escape the scene inside its cone
func (l *FarLight) Environmental() bool {
	return true
}

// SceneSetup implements Light: shadow rays stop past the scene diameter so
// virtual hit points stay clear of real geometry
func (l *FarLight) SceneSetup(center core.Vec3, radius float64) {
	l.distance = 2 * radius
	if l.distance == 0 {
		l.distance = math.Inf(1)
	}
}
