package material

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Glossy is a Phong-lobe reflector: samples concentrate around the mirror
// direction, tightening as the exponent grows
type Glossy struct {
	Albedo   core.Color // Lobe reflectance
	Exponent float64    // Phong exponent; higher is shinier
}

// NewGlossy creates a new glossy material
func NewGlossy(albedo core.Color, exponent float64) *Glossy {
	return &Glossy{Albedo: albedo, Exponent: exponent}
}

// ShadowKind implements core.Material
func (g *Glossy) ShadowKind() core.ShadowKind {
	return core.ShadowOpaque
}

// BSDF implements core.Material
func (g *Glossy) BSDF(isec *core.Intersection) core.BSDF {
	mirror := isec.Wo.Negate().Reflect(isec.Frame.Z)
	return &glossyBSDF{
		frame:    isec.Frame,
		mirror:   mirror,
		albedo:   g.Albedo,
		exponent: g.Exponent,
	}
}

type glossyBSDF struct {
	frame    core.Frame
	mirror   core.Vec3
	albedo   core.Color
	exponent float64
}

// lobe returns cos^n of the angle between dir and the mirror direction
func (b *glossyBSDF) lobe(dir core.Vec3) float64 {
	cosAlpha := dir.Dot(b.mirror)
	if cosAlpha <= 0 {
		return 0
	}
	return math.Pow(cosAlpha, b.exponent)
}

// Eval follows the normalized Phong lobe around the mirror direction
func (b *glossyBSDF) Eval(dir core.Vec3) (core.Color, float64) {
	if b.frame.CosTheta(dir) <= 0 {
		return core.Black, 0
	}
	lobe := b.lobe(dir)
	if lobe == 0 {
		return core.Black, 0
	}
	f := b.albedo.Scale((b.exponent + 2) / (2 * math.Pi) * lobe)
	pdf := (b.exponent + 1) / (2 * math.Pi) * lobe
	return f, pdf
}

// Sample draws from the cos^n lobe around the mirror direction. Samples
// that land below the horizon are returned with pdf 0 and must be treated
// as zero-weight.
func (b *glossyBSDF) Sample(u, v float64) core.BSDFSample {
	cosAlpha := math.Pow(u, 1.0/(b.exponent+1))
	sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))
	phi := 2 * math.Pi * v

	lobeFrame := core.NewFrame(core.Vec3{}, b.mirror)
	dir := lobeFrame.ToWorld(core.NewVec3(sinAlpha*math.Cos(phi), sinAlpha*math.Sin(phi), cosAlpha))

	if b.frame.CosTheta(dir) <= 0 {
		return core.BSDFSample{} // below the horizon
	}

	lobe := math.Pow(cosAlpha, b.exponent)
	return core.BSDFSample{
		Direction: dir,
		F:         b.albedo.Scale((b.exponent + 2) / (2 * math.Pi) * lobe),
		PDF:       (b.exponent + 1) / (2 * math.Pi) * lobe,
		Flags:     core.BSDFReflective | core.BSDFGlossy,
	}
}
