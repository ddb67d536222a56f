package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/arpelle/glint/pkg/core"
)

// testIsec builds an intersection at the origin with a +Z shading normal
// and the viewer straight above
func testIsec() *core.Intersection {
	normal := core.NewVec3(0, 0, 1)
	return &core.Intersection{
		Point:      core.Vec3{},
		GeomNormal: normal,
		Normal:     normal,
		Wo:         core.NewVec3(0, 0, 1),
		Frame:      core.NewFrame(core.Vec3{}, normal),
		Medium:     &core.DefaultMedium,
		ExitMedium: &core.DefaultMedium,
	}
}

func TestLambertian_SampleMatchesEval(t *testing.T) {
	bsdf := NewLambertian(core.NewColor(0.8, 0.8, 0.8)).BSDF(testIsec())
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		bs := bsdf.Sample(random.Float64(), random.Float64())
		if bs.PDF <= 0 {
			continue // grazing sample, zero weight by contract
		}
		if !bs.Flags.Has(core.BSDFReflective | core.BSDFDiffuse) {
			t.Fatalf("unexpected flags %b", bs.Flags)
		}

		f, pdf := bsdf.Eval(bs.Direction)
		if math.Abs(pdf-bs.PDF) > 1e-12 {
			t.Errorf("Eval pdf %g != Sample pdf %g", pdf, bs.PDF)
		}
		expected := 0.8 / math.Pi
		if math.Abs(f.R-expected) > 1e-12 {
			t.Errorf("f = %g, expected albedo/π = %g", f.R, expected)
		}
	}
}

// Property: integrating f·cosθ over the hemisphere never exceeds one
func TestLambertian_EnergyConservation(t *testing.T) {
	bsdf := NewLambertian(core.NewColor(0.9, 0.9, 0.9)).BSDF(testIsec())
	random := rand.New(rand.NewSource(7))
	normal := core.NewVec3(0, 0, 1)

	const n = 100000
	sum := 0.0
	for i := 0; i < n; i++ {
		bs := bsdf.Sample(random.Float64(), random.Float64())
		if bs.PDF <= 0 {
			continue
		}
		cosTheta := bs.Direction.Dot(normal)
		sum += bs.F.R * cosTheta / bs.PDF
	}

	integral := sum / n
	if integral > 1.0+0.01 {
		t.Errorf("hemisphere integral %f exceeds 1 (energy violation)", integral)
	}
	if math.Abs(integral-0.9) > 0.02 {
		t.Errorf("hemisphere integral %f, expected albedo 0.9", integral)
	}
}

func TestLambertian_BelowHorizonRejected(t *testing.T) {
	bsdf := NewLambertian(core.NewColor(0.8, 0.8, 0.8)).BSDF(testIsec())
	f, pdf := bsdf.Eval(core.NewVec3(0, 0, -1))
	if !f.IsBlack() || pdf != 0 {
		t.Error("directions below the horizon must evaluate to zero")
	}
}

func TestMirror_DeltaReflection(t *testing.T) {
	isec := testIsec()
	// Tilt the viewer so the reflection is distinctive
	isec.Wo = core.NewVec3(1, 0, 1).Normalize()
	bsdf := NewMirror(core.NewColor(0.9, 0.9, 0.9)).BSDF(isec)

	bs := bsdf.Sample(0.3, 0.7)
	if bs.PDF != 0 {
		t.Errorf("specular sample must use the delta pdf sentinel, got %g", bs.PDF)
	}
	if !bs.Flags.Has(core.BSDFSpecular | core.BSDFReflective) {
		t.Errorf("unexpected flags %b", bs.Flags)
	}

	expected := core.NewVec3(-1, 0, 1).Normalize()
	if bs.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("reflected %v, expected %v", bs.Direction, expected)
	}

	// f·cosθ must equal the reflectance for a bare mirror
	cosTheta := bs.Direction.Z
	if math.Abs(bs.F.R*cosTheta-0.9) > 1e-9 {
		t.Errorf("f·cosθ = %g, expected 0.9", bs.F.R*cosTheta)
	}

	// Delta lobes contribute nothing to directional evaluation
	if f, pdf := bsdf.Eval(expected); !f.IsBlack() || pdf != 0 {
		t.Error("mirror Eval must return zero")
	}
}

func TestCoatedMirror_SplitsByFresnel(t *testing.T) {
	isec := testIsec()
	bsdf := NewCoatedMirror(core.White, core.NewColor(0.5, 0.5, 0.5), 1.5).BSDF(isec)

	sawSpecular, sawDiffuse := false, false
	random := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		bs := bsdf.Sample(random.Float64(), random.Float64())
		if bs.Flags.Has(core.BSDFSpecular) {
			sawSpecular = true
		}
		if bs.Flags.Has(core.BSDFDiffuse) {
			sawDiffuse = true
		}
	}
	if !sawSpecular || !sawDiffuse {
		t.Errorf("layered mirror should sample both lobes, specular=%v diffuse=%v",
			sawSpecular, sawDiffuse)
	}
}

func TestGlass_RefractionAndTIR(t *testing.T) {
	glass := NewGlass(1.5)

	// Straight-on entry refracts straight through; only at u beyond the
	// Fresnel reflectance
	isec := testIsec()
	bsdf := glass.BSDF(isec)
	bs := bsdf.Sample(0.99, 0.5)
	if !bs.Flags.Has(core.BSDFTransmissive) {
		t.Fatal("high u at normal incidence should refract")
	}
	if bs.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-9 {
		t.Errorf("normal-incidence refraction %v, expected straight through", bs.Direction)
	}
	if bs.PDF != 0 {
		t.Error("glass lobes are deltas")
	}

	// Exiting at a steep angle: total internal reflection regardless of u
	exit := testIsec()
	exit.Back = true
	exit.Wo = core.NewVec3(1, 0, 0.2).Normalize()
	exit.Medium = glass.Medium()
	bsdf = glass.BSDF(exit)
	bs = bsdf.Sample(0.999, 0.5)
	if !bs.Flags.Has(core.BSDFReflective) {
		t.Error("steep exit must totally internally reflect")
	}
}

func TestGlass_ShadowIsPartial(t *testing.T) {
	glass := NewGlass(1.5)
	if glass.ShadowKind() != core.ShadowPartial {
		t.Error("glass should cast partial shadows")
	}
	if glass.Transmittance() != core.White {
		t.Error("clear glass transmittance should be white")
	}
}

func TestGlossy_LobeAndPDF(t *testing.T) {
	isec := testIsec()
	isec.Wo = core.NewVec3(0.3, 0, 1).Normalize()
	bsdf := NewGlossy(core.NewColor(0.7, 0.7, 0.7), 32).BSDF(isec)

	random := rand.New(rand.NewSource(5))
	mirror := isec.Wo.Negate().Reflect(core.NewVec3(0, 0, 1))

	for i := 0; i < 200; i++ {
		bs := bsdf.Sample(random.Float64(), random.Float64())
		if bs.PDF == 0 {
			continue // below horizon is a zero-weight sample
		}
		f, pdf := bsdf.Eval(bs.Direction)
		if math.Abs(pdf-bs.PDF) > 1e-9 {
			t.Errorf("Eval pdf %g != Sample pdf %g", pdf, bs.PDF)
		}
		if math.Abs(f.R-bs.F.R) > 1e-9 {
			t.Errorf("Eval f %g != Sample f %g", f.R, bs.F.R)
		}
		// Samples must concentrate near the mirror direction for a
		// sharp exponent
		if bs.Direction.Dot(mirror) < 0.5 {
			t.Errorf("glossy sample far from mirror direction: %v", bs.Direction)
		}
	}
}

// Property: the glossy pdf integrates to one over its support. Estimated
// by uniform sphere sampling: E[pdf(ω)·4π] = ∫ pdf dω = 1.
func TestGlossy_PDFNormalization(t *testing.T) {
	// Viewer straight above, so the lobe sits entirely in the upper
	// hemisphere and no probability mass is clipped
	isec := testIsec()
	bsdf := NewGlossy(core.NewColor(0.5, 0.5, 0.5), 8).BSDF(isec)
	random := rand.New(rand.NewSource(17))

	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		dir := core.SampleOnUnitSphere(core.NewVec2(random.Float64(), random.Float64()))
		_, pdf := bsdf.Eval(dir)
		sum += pdf * 4 * math.Pi
	}
	integral := sum / n
	if math.Abs(integral-1) > 0.03 {
		t.Errorf("pdf integrates to %f, expected 1", integral)
	}
}

func TestEmissive_NoScattering(t *testing.T) {
	emissive := NewEmissive(core.NewColor(5, 5, 5))
	isec := testIsec()
	if emissive.BSDF(isec) != nil {
		t.Error("emitters must have no scattering function")
	}
	if emissive.Emit(isec) != core.NewColor(5, 5, 5) {
		t.Error("emitter radiance mismatch")
	}
}

func TestSchlickReflectance_Bounds(t *testing.T) {
	// Normal incidence for air/glass is about 4%
	r0 := SchlickReflectance(1, 1/1.5)
	if math.Abs(r0-0.04) > 0.005 {
		t.Errorf("normal-incidence reflectance %f, expected ~0.04", r0)
	}
	// Grazing incidence approaches 1
	if SchlickReflectance(0, 1/1.5) < 0.99 {
		t.Error("grazing reflectance should approach 1")
	}
}
