package core

import (
	"math"
	"math/rand"
	"testing"
)

// Averaging 1/pdf over draws from a sampler estimates the measure of its
// domain; hemisphere sampling must converge to 2π.
func TestSampleCosineHemisphere_PDFNormalization(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	normal := NewVec3(0, 0, 1)

	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		dir := SampleCosineHemisphere(normal, NewVec2(random.Float64(), random.Float64()))
		pdf := CosineHemispherePDF(dir.Dot(normal))
		if pdf <= 0 {
			t.Fatalf("sampled direction below hemisphere: %v", dir)
		}
		sum += 1.0 / pdf
	}

	mean := sum / n
	hemisphere := 2 * math.Pi
	if math.Abs(mean-hemisphere)/hemisphere > 0.02 {
		t.Errorf("measure estimate %f, expected %f", mean, hemisphere)
	}
}

func TestSampleCone_PDFNormalization(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	axis := NewVec3(1, 1, 0).Normalize()
	cosWidth := math.Cos(0.3)

	const n = 100000
	sum := 0.0
	for i := 0; i < n; i++ {
		dir := SampleCone(axis, cosWidth, NewVec2(random.Float64(), random.Float64()))
		if dir.Dot(axis) < cosWidth-1e-9 {
			t.Fatalf("sample outside cone: %v", dir)
		}
		sum += 1.0 / UniformConePDF(cosWidth)
	}

	mean := sum / n
	coneArea := 2 * math.Pi * (1 - cosWidth)
	if math.Abs(mean-coneArea)/coneArea > 0.02 {
		t.Errorf("measure estimate %f, expected %f", mean, coneArea)
	}
}

func TestSampleOnUnitSphere_Uniform(t *testing.T) {
	random := rand.New(rand.NewSource(9))

	const n = 100000
	var mean Vec3
	for i := 0; i < n; i++ {
		dir := SampleOnUnitSphere(NewVec2(random.Float64(), random.Float64()))
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Fatalf("direction not unit length: %v", dir)
		}
		mean = mean.Add(dir)
	}
	if mean.Multiply(1.0 / n).Length() > 0.01 {
		t.Errorf("sphere samples are not balanced, mean %v", mean.Multiply(1.0/n))
	}
}

func TestPowerHeuristic_Partition(t *testing.T) {
	// The two weights of an MIS pair must sum to one
	cases := [][2]float64{{0.5, 0.5}, {1, 3}, {0.01, 10}, {5, 0}}
	for _, c := range cases {
		wf := PowerHeuristic(1, c[0], 1, c[1])
		wg := PowerHeuristic(1, c[1], 1, c[0])
		if math.Abs(wf+wg-1) > 1e-12 {
			t.Errorf("weights for pdfs %v sum to %f, expected 1", c, wf+wg)
		}
	}

	if PowerHeuristic(1, 0, 1, 0) != 0 {
		t.Error("degenerate zero pdfs should yield zero weight")
	}
}

func TestSampleTriangle_InBounds(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		u, v := SampleTriangle(NewVec2(random.Float64(), random.Float64()))
		if u < 0 || v < 0 || u+v > 1+1e-12 {
			t.Fatalf("barycentrics out of range: u=%f v=%f", u, v)
		}
	}
}
