package lights

import (
	"math"
	"math/rand"
	"testing"

	"github.com/arpelle/glint/pkg/core"
)

func shadingPoint() *core.Intersection {
	normal := core.NewVec3(0, 1, 0)
	return &core.Intersection{
		Point:  core.Vec3{},
		Normal: normal,
		Frame:  core.NewFrame(core.Vec3{}, normal),
	}
}

func TestPointLight_DeltaSample(t *testing.T) {
	light := NewPointLight(core.NewVec3(0, 4, 0), core.NewColor(8, 8, 8))
	isec := shadingPoint()

	smp, ok := light.Sample(isec, core.NewVec2(0.5, 0.5))
	if !ok {
		t.Fatal("point light should always sample")
	}
	if smp.PDF != 0 {
		t.Errorf("point light pdf %g, expected the delta sentinel 0", smp.PDF)
	}
	if smp.Direction.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("direction %v, expected straight up", smp.Direction)
	}
	// Radiance falls off with inverse squared distance
	if math.Abs(smp.Radiance.R-8.0/16.0) > 1e-12 {
		t.Errorf("radiance %g, expected 0.5", smp.Radiance.R)
	}
	if math.Abs(smp.Distance-4) > 1e-12 {
		t.Errorf("distance %g, expected 4", smp.Distance)
	}

	// Delta lights evaluate to zero for arbitrary directions
	if radiance, pdf := light.Eval(isec, core.NewVec3(0, 1, 0)); !radiance.IsBlack() || pdf != 0 {
		t.Error("delta light Eval must be zero")
	}
}

func TestFarLight_ConeSamplingAndEval(t *testing.T) {
	angle := 0.2
	light := NewFarLight(core.NewVec3(0, 1, 0), angle, core.NewColor(3, 3, 3))
	light.SceneSetup(core.Vec3{}, 10)
	isec := shadingPoint()

	random := rand.New(rand.NewSource(21))
	expectedPDF := core.UniformConePDF(math.Cos(angle))

	for i := 0; i < 1000; i++ {
		smp, ok := light.Sample(isec, core.NewVec2(random.Float64(), random.Float64()))
		if !ok {
			t.Fatal("overhead far light should always illuminate an up-facing point")
		}
		if smp.Direction.Dot(light.Direction) < math.Cos(angle)-1e-9 {
			t.Fatalf("sample %v outside the cone", smp.Direction)
		}
		if math.Abs(smp.PDF-expectedPDF) > 1e-9 {
			t.Fatalf("pdf %g, expected 1/(2π(1-cosα)) = %g", smp.PDF, expectedPDF)
		}
		if smp.Distance != 20 {
			t.Fatalf("shadow distance %g, expected the scene diameter", smp.Distance)
		}
	}

	// Eval: intensity inside the cone, zero outside
	if radiance, pdf := light.Eval(isec, core.NewVec3(0, 1, 0)); radiance.IsBlack() || pdf == 0 {
		t.Error("direction inside the cone must evaluate to the intensity")
	}
	if radiance, _ := light.Eval(isec, core.NewVec3(1, 0, 0)); !radiance.IsBlack() {
		t.Error("direction outside the cone must evaluate to zero")
	}
}

func TestDiscLight_SolidAnglePDF(t *testing.T) {
	// Disc overhead, facing down
	light := NewDiscLight(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0), 0.5, core.NewColor(10, 10, 10))
	isec := shadingPoint()

	random := rand.New(rand.NewSource(33))
	for i := 0; i < 1000; i++ {
		smp, ok := light.Sample(isec, core.NewVec2(random.Float64(), random.Float64()))
		if !ok {
			t.Fatal("overhead disc should be sampleable")
		}

		// Verify pdf = dist²/(area·cosθ_light) against the geometry of
		// the sampled point
		dist2 := smp.Distance * smp.Distance
		cosAtLight := core.NewVec3(0, -1, 0).Dot(smp.Direction.Negate())
		expected := dist2 / (light.Area() * cosAtLight)
		if math.Abs(smp.PDF-expected)/expected > 1e-9 {
			t.Fatalf("pdf %g, expected %g", smp.PDF, expected)
		}
	}

	// Eval along the straight-up direction agrees with the analytic pdf
	radiance, pdf := light.Eval(isec, core.NewVec3(0, 1, 0))
	if radiance.IsBlack() {
		t.Fatal("direct view of the emitting face should see radiance")
	}
	expected := 4.0 / light.Area() // dist²=4, cosθ=1
	if math.Abs(pdf-expected)/expected > 1e-9 {
		t.Errorf("Eval pdf %g, expected %g", pdf, expected)
	}
}

func TestTriangleLight_SampleOnSurface(t *testing.T) {
	light := NewTriangleLight(
		core.NewVec3(-1, 2, -1), core.NewVec3(1, 2, -1), core.NewVec3(0, 2, 1),
		core.NewColor(5, 5, 5))
	isec := shadingPoint()

	random := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		smp, ok := light.Sample(isec, core.NewVec2(random.Float64(), random.Float64()))
		if !ok {
			t.Fatal("overhead triangle should be sampleable")
		}
		point := isec.Point.Add(smp.Direction.Multiply(smp.Distance))
		if math.Abs(point.Y-2) > 1e-9 {
			t.Fatalf("sampled point %v not on the light plane", point)
		}
		if smp.PDF <= 0 {
			t.Fatal("area light pdf must be positive")
		}
	}

	if len(light.Primitives()) != 1 {
		t.Error("triangle light should expose one emitting primitive")
	}
	if !light.Owns(light.Primitives()[0]) {
		t.Error("light must recognize its own surface")
	}
}

// Property: summing 1/pdf over accepted environment samples and dividing
// by the draw count converges to the hemisphere measure 2π for a constant
// map
func TestEnvironmentLight_PDFNormalization(t *testing.T) {
	light := NewEnvironmentLight(NewSolidEnvMap(core.White))
	light.SceneSetup(core.Vec3{}, 5)

	// Use an upward normal but integrate only accepted samples; the
	// accepted half should measure 2π
	isec := shadingPoint()
	random := rand.New(rand.NewSource(77))

	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		smp, ok := light.Sample(isec, core.NewVec2(random.Float64(), random.Float64()))
		if !ok {
			continue // below-horizon samples are rejected
		}
		if smp.PDF <= 0 {
			t.Fatal("accepted sample must carry a positive pdf")
		}
		sum += 1.0 / smp.PDF
	}

	mean := sum / n
	hemisphere := 2 * math.Pi
	if math.Abs(mean-hemisphere)/hemisphere > 0.03 {
		t.Errorf("hemisphere measure %f, expected %f", mean, hemisphere)
	}
}

func TestEnvironmentLight_ImportanceSamplesBrightRegion(t *testing.T) {
	// A map with one bright row band: samples should concentrate there
	const w, h = 8, 8
	texels := make([]core.Color, w*h)
	for i := range texels {
		texels[i] = core.NewColor(0.01, 0.01, 0.01)
	}
	brightRow := 2
	for x := 0; x < w; x++ {
		texels[brightRow*w+x] = core.NewColor(50, 50, 50)
	}
	light := NewEnvironmentLight(NewEnvMap(w, h, texels))

	isec := shadingPoint()
	random := rand.New(rand.NewSource(13))

	inBand, total := 0, 0
	for i := 0; i < 5000; i++ {
		smp, ok := light.Sample(isec, core.NewVec2(random.Float64(), random.Float64()))
		if !ok {
			continue
		}
		total++
		if smp.Radiance.R > 1 {
			inBand++
		}
	}
	if total == 0 {
		t.Fatal("no samples accepted")
	}
	if float64(inBand)/float64(total) < 0.8 {
		t.Errorf("only %d/%d samples hit the bright band", inBand, total)
	}
}

func TestEnvMap_LookupRoundTrip(t *testing.T) {
	const w, h = 16, 8
	texels := make([]core.Color, w*h)
	for i := range texels {
		texels[i] = core.Gray(float64(i))
	}
	m := NewEnvMap(w, h, texels)

	// Directions reconstructed from texel centers map back to the texel
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / w
			v := (float64(y) + 0.5) / h
			dir := uvToDir(u, v)
			if got := m.Lookup(dir); got != m.At(x, y) {
				t.Fatalf("lookup at (%d,%d) returned %v, expected %v", x, y, got, m.At(x, y))
			}
		}
	}
}

func TestDistribution2D_ProportionalSampling(t *testing.T) {
	// Mass 3:1 between two halves of a 2x1 function
	d := newDistribution2D([]float64{3, 1}, 2, 1)

	random := rand.New(rand.NewSource(2))
	left := 0
	const n = 100000
	for i := 0; i < n; i++ {
		u, _, pdf := d.sample(random.Float64(), random.Float64())
		if pdf <= 0 {
			t.Fatal("pdf must be positive inside the support")
		}
		if u < 0.5 {
			left++
		}
	}
	frac := float64(left) / n
	if math.Abs(frac-0.75) > 0.01 {
		t.Errorf("left-half fraction %f, expected 0.75", frac)
	}

	// pdf values integrate to one: (pdf_left·0.5 + pdf_right·0.5)
	integral := d.pdf(0.25, 0.5)*0.5 + d.pdf(0.75, 0.5)*0.5
	if math.Abs(integral-1) > 1e-9 {
		t.Errorf("pdf integral %f, expected 1", integral)
	}
}
