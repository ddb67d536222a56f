package material

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Glass is a dielectric that reflects and refracts by the Fresnel ratio
type Glass struct {
	medium core.Medium // The refractive medium inside the glass
	Tint   core.Color  // Transmittance tint applied to shadow rays
}

// NewGlass creates a clear dielectric with the given index of refraction
func NewGlass(ior float64) *Glass {
	return &Glass{medium: core.Medium{IOR: ior}, Tint: core.White}
}

// ShadowKind implements core.Material; glass attenuates shadow rays rather
// than blocking them
func (g *Glass) ShadowKind() core.ShadowKind {
	return core.ShadowPartial
}

// Transmittance implements core.Transmitter
func (g *Glass) Transmittance() core.Color {
	return g.Tint
}

// Medium implements core.MediumCarrier
func (g *Glass) Medium() *core.Medium {
	return &g.medium
}

// BSDF implements core.Material
func (g *Glass) BSDF(isec *core.Intersection) core.BSDF {
	current := isec.Medium
	if current == nil {
		current = &core.DefaultMedium
	}

	// Entering: refract from the surrounding medium into the glass.
	// Exiting: refract from the glass into whatever medium the path
	// returns to.
	var etaRatio float64
	if isec.Back {
		exit := isec.ExitMedium
		if exit == nil {
			exit = &core.DefaultMedium
		}
		etaRatio = current.IOR / exit.IOR
	} else {
		etaRatio = current.IOR / g.medium.IOR
	}

	return &glassBSDF{frame: isec.Frame, wo: isec.Wo, etaRatio: etaRatio}
}

type glassBSDF struct {
	frame    core.Frame
	wo       core.Vec3
	etaRatio float64
}

// Eval returns zero; both glass lobes are deltas
func (b *glassBSDF) Eval(dir core.Vec3) (core.Color, float64) {
	return core.Black, 0
}

// Sample chooses reflection or transmission by the Fresnel ratio.
// Total internal reflection yields pure reflection.
func (b *glassBSDF) Sample(u, v float64) core.BSDFSample {
	incoming := b.wo.Negate()
	normal := b.frame.Z
	cosTheta := math.Min(-incoming.Dot(normal), 1.0)
	if cosTheta < 0 {
		cosTheta = 0
	}

	refracted, canRefract := incoming.Refract(normal, b.etaRatio)

	reflectProb := 1.0
	if canRefract {
		reflectProb = SchlickReflectance(cosTheta, b.etaRatio)
	}

	if u < reflectProb {
		dir := incoming.Reflect(normal)
		cosOut := math.Abs(b.frame.CosTheta(dir))
		if cosOut == 0 {
			return core.BSDFSample{}
		}
		// Fresnel weight cancels against the branch probability
		return core.BSDFSample{
			Direction: dir,
			F:         core.White.Scale(1.0 / cosOut),
			PDF:       0,
			Flags:     core.BSDFReflective | core.BSDFSpecular,
		}
	}

	cosOut := math.Abs(b.frame.CosTheta(refracted))
	if cosOut == 0 {
		return core.BSDFSample{}
	}
	return core.BSDFSample{
		Direction: refracted,
		F:         core.White.Scale(1.0 / cosOut),
		PDF:       0,
		Flags:     core.BSDFTransmissive | core.BSDFSpecular,
	}
}
