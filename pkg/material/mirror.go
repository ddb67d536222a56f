package material

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Mirror is a specular reflector, optionally layered over a diffuse base.
// When an index of refraction is given, the Fresnel term splits energy
// between the specular lobe and the underlying diffuse lobe; without one
// the surface is a pure mirror.
type Mirror struct {
	Reflectance core.Color // Specular reflectance
	Underlying  core.Color // Diffuse base, black for a bare mirror
	IOR         float64    // Fresnel index of refraction, 0 disables Fresnel
}

// NewMirror creates a pure specular mirror
func NewMirror(reflectance core.Color) *Mirror {
	return &Mirror{Reflectance: reflectance}
}

// NewCoatedMirror creates a Fresnel-weighted mirror over a diffuse base
func NewCoatedMirror(reflectance, underlying core.Color, ior float64) *Mirror {
	return &Mirror{Reflectance: reflectance, Underlying: underlying, IOR: ior}
}

// ShadowKind implements core.Material
func (m *Mirror) ShadowKind() core.ShadowKind {
	return core.ShadowOpaque
}

// BSDF implements core.Material
func (m *Mirror) BSDF(isec *core.Intersection) core.BSDF {
	medium := isec.Medium
	if medium == nil {
		medium = &core.DefaultMedium
	}

	// Fresnel weight of the specular lobe for the current IOR ratio
	fresnel := 1.0
	if m.IOR > 0 {
		cosTheta := math.Max(0, isec.Frame.CosTheta(isec.Wo))
		fresnel = SchlickReflectance(cosTheta, medium.IOR/m.IOR)
	}

	return &mirrorBSDF{
		frame:       isec.Frame,
		wo:          isec.Wo,
		reflectance: m.Reflectance,
		underlying:  m.Underlying,
		layered:     !m.Underlying.IsBlack(),
		fresnel:     fresnel,
	}
}

type mirrorBSDF struct {
	frame       core.Frame
	wo          core.Vec3
	reflectance core.Color
	underlying  core.Color
	layered     bool
	fresnel     float64
}

// Eval covers only the diffuse base; the specular lobe is a delta and
// contributes nothing to directional evaluation
func (b *mirrorBSDF) Eval(dir core.Vec3) (core.Color, float64) {
	if !b.layered {
		return core.Black, 0
	}
	cosTheta := b.frame.CosTheta(dir)
	if cosTheta <= 0 {
		return core.Black, 0
	}
	diffuseWeight := 1 - b.fresnel
	f := b.underlying.Scale(diffuseWeight / math.Pi)
	pdf := core.CosineHemispherePDF(cosTheta) * diffuseWeight
	return f, pdf
}

// Sample reflects specularly, or for a layered mirror chooses between the
// specular lobe and the diffuse base with probability equal to the Fresnel
// weight
func (b *mirrorBSDF) Sample(u, v float64) core.BSDFSample {
	if !b.layered || u < b.fresnel {
		dir := b.wo.Negate().Reflect(b.frame.Z)
		cosTheta := b.frame.CosTheta(dir)
		if cosTheta <= 0 {
			return core.BSDFSample{}
		}
		// For the bare mirror f = ρ·F/cosθ. For the layered mirror the
		// selection probability F cancels the Fresnel attenuation,
		// leaving f = ρ/cosθ.
		weight := b.fresnel
		if b.layered {
			weight = 1.0
		}
		return core.BSDFSample{
			Direction: dir,
			F:         b.reflectance.Scale(weight / cosTheta),
			PDF:       0, // delta sentinel
			Flags:     core.BSDFReflective | core.BSDFSpecular,
		}
	}

	// Diffuse base; remap u into [0,1) and reweight by the selection
	// probability so the estimator stays unbiased
	remap := (u - b.fresnel) / (1 - b.fresnel)
	dir := core.SampleCosineHemisphere(b.frame.Z, core.NewVec2(remap, v))
	cosTheta := b.frame.CosTheta(dir)
	if cosTheta <= 0 {
		return core.BSDFSample{}
	}
	diffuseWeight := 1 - b.fresnel
	return core.BSDFSample{
		Direction: dir,
		F:         b.underlying.Scale(diffuseWeight / math.Pi),
		PDF:       core.CosineHemispherePDF(cosTheta) * diffuseWeight,
		Flags:     core.BSDFReflective | core.BSDFDiffuse,
	}
}
