package material

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Lambertian is a perfectly diffuse material
type Lambertian struct {
	Albedo core.Color // Base reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// ShadowKind implements core.Material
func (l *Lambertian) ShadowKind() core.ShadowKind {
	return core.ShadowOpaque
}

// BSDF implements core.Material
func (l *Lambertian) BSDF(isec *core.Intersection) core.BSDF {
	return &lambertianBSDF{frame: isec.Frame, albedo: l.Albedo}
}

// lambertianBSDF evaluates the diffuse lobe at one intersection
type lambertianBSDF struct {
	frame  core.Frame
	albedo core.Color
}

// Eval returns albedo/π and the cosine-weighted PDF for directions above
// the horizon
func (b *lambertianBSDF) Eval(dir core.Vec3) (core.Color, float64) {
	cosTheta := b.frame.CosTheta(dir)
	if cosTheta <= 0 {
		return core.Black, 0
	}
	return b.albedo.Scale(1.0 / math.Pi), core.CosineHemispherePDF(cosTheta)
}

// Sample draws a cosine-weighted direction in the hemisphere around the
// shading normal
func (b *lambertianBSDF) Sample(u, v float64) core.BSDFSample {
	dir := core.SampleCosineHemisphere(b.frame.Z, core.NewVec2(u, v))
	cosTheta := b.frame.CosTheta(dir)
	if cosTheta <= 0 {
		return core.BSDFSample{} // numerically grazing; zero-weight sample
	}
	return core.BSDFSample{
		Direction: dir,
		F:         b.albedo.Scale(1.0 / math.Pi),
		PDF:       core.CosineHemispherePDF(cosTheta),
		Flags:     core.BSDFReflective | core.BSDFDiffuse,
	}
}
