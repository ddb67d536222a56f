package lights

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// EnvironmentLight illuminates the scene from an environment map infinitely
// far away. Directions are importance-sampled from a two-dimensional
// piecewise-constant distribution built once from the map's luminance,
// pre-integrated per pixel row.
type EnvironmentLight struct {
	Map *EnvMap

	dist     *distribution2D
	distance float64 // Shadow-ray length, set from the scene bounds
}

// NewEnvironmentLight creates an environment light from a map
func NewEnvironmentLight(envmap *EnvMap) *EnvironmentLight {
	// Luminance weighted by sinθ: rows near the poles cover less solid
	// angle and must not attract proportionally many samples
	weights := make([]float64, envmap.Width*envmap.Height)
	for y := 0; y < envmap.Height; y++ {
		sinTheta := math.Sin(math.Pi * (float64(y) + 0.5) / float64(envmap.Height))
		for x := 0; x < envmap.Width; x++ {
			weights[y*envmap.Width+x] = envmap.At(x, y).Luminance() * sinTheta
		}
	}
	return &EnvironmentLight{
		Map:      envmap,
		dist:     newDistribution2D(weights, envmap.Width, envmap.Height),
		distance: math.Inf(1),
	}
}

// Sample implements Light: a direction drawn from the map distribution
func (l *EnvironmentLight) Sample(isec *core.Intersection, sample core.Vec2) (Sample, bool) {
	u, v, mapPdf := l.dist.sample(sample.X, sample.Y)
	if mapPdf == 0 {
		return Sample{}, false
	}

	dir := uvToDir(u, v)
	sinTheta := math.Sin(v * math.Pi)
	if sinTheta == 0 {
		return Sample{}, false
	}
	if dir.Dot(isec.Normal) <= 0 {
		return Sample{}, false // below the shading horizon
	}

	return Sample{
		Direction: dir,
		Radiance:  l.Map.Lookup(dir),
		PDF:       mapPdf / (2 * math.Pi * math.Pi * sinTheta),
		Distance:  l.distance,
	}, true
}

// Eval implements Light: map radiance and distribution PDF for an
// arbitrary direction
func (l *EnvironmentLight) Eval(isec *core.Intersection, dir core.Vec3) (core.Color, float64) {
	u, v := dirToUV(dir)
	sinTheta := math.Sin(v * math.Pi)
	if sinTheta == 0 {
		return core.Black, 0
	}
	pdf := l.dist.pdf(u, v) / (2 * math.Pi * math.Pi * sinTheta)
	return l.Map.Lookup(dir), pdf
}

// Environmental implements Light
func (l *EnvironmentLight) Environmental() bool {
	return true
}

// SceneSetup implements Light: virtual hit points sit past the scene
// diameter so shadow rays clear real geometry
func (l *EnvironmentLight) SceneSetup(center core.Vec3, radius float64) {
	l.distance = 2 * radius
	if l.distance == 0 {
		l.distance = math.Inf(1)
	}
}
