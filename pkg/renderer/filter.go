package renderer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Filter is a reconstruction kernel. Eval is called with the offset from
// the sample position to a pixel center, in pixels; it must be zero outside
// [-Radius, Radius] on each axis.
type Filter interface {
	Radius() float64
	Eval(x, y float64) float64
}

// BoxFilter weighs every sample within its radius equally
type BoxFilter struct {
	R float64
}

// NewBoxFilter creates a box filter
func NewBoxFilter(radius float64) *BoxFilter {
	return &BoxFilter{R: radius}
}

// Radius implements Filter
func (f *BoxFilter) Radius() float64 { return f.R }

// Eval implements Filter. The support is half-open, [-R, R), so lattice
// points on the boundary are counted by exactly one pixel.
func (f *BoxFilter) Eval(x, y float64) float64 {
	if x < -f.R || x >= f.R || y < -f.R || y >= f.R {
		return 0
	}
	return 1
}

// TriangleFilter falls off linearly to zero at its radius
type TriangleFilter struct {
	R float64
}

// NewTriangleFilter creates a triangle filter
func NewTriangleFilter(radius float64) *TriangleFilter {
	return &TriangleFilter{R: radius}
}

// Radius implements Filter
func (f *TriangleFilter) Radius() float64 { return f.R }

// Eval implements Filter
func (f *TriangleFilter) Eval(x, y float64) float64 {
	return math.Max(0, f.R-math.Abs(x)) * math.Max(0, f.R-math.Abs(y))
}

// GaussianFilter is a truncated Gaussian
type GaussianFilter struct {
	R     float64
	Alpha float64

	expR float64
}

// NewGaussianFilter creates a Gaussian filter
func NewGaussianFilter(radius, alpha float64) *GaussianFilter {
	return &GaussianFilter{
		R:     radius,
		Alpha: alpha,
		expR:  math.Exp(-alpha * radius * radius),
	}
}

// Radius implements Filter
func (f *GaussianFilter) Radius() float64 { return f.R }

// Eval implements Filter
func (f *GaussianFilter) Eval(x, y float64) float64 {
	return f.gauss(x) * f.gauss(y)
}

func (f *GaussianFilter) gauss(d float64) float64 {
	return math.Max(0, math.Exp(-f.Alpha*d*d)-f.expR)
}

// MitchellFilter is the Mitchell-Netravali kernel, the default
// reconstruction filter
type MitchellFilter struct {
	B, C float64
}

// NewMitchellFilter creates a Mitchell filter with the standard B=C=1/3
func NewMitchellFilter() *MitchellFilter {
	return &MitchellFilter{B: 1.0 / 3.0, C: 1.0 / 3.0}
}

// Radius implements Filter; the Mitchell kernel has support [-2,2]
func (f *MitchellFilter) Radius() float64 { return 2 }

// Eval implements Filter
func (f *MitchellFilter) Eval(x, y float64) float64 {
	return f.mitchell(x) * f.mitchell(y)
}

func (f *MitchellFilter) mitchell(x float64) float64 {
	x = math.Abs(x)
	x2 := x * x
	x3 := x2 * x
	switch {
	case x < 1:
		return ((12-9*f.B-6*f.C)*x3 + (-18+12*f.B+6*f.C)*x2 + (6 - 2*f.B)) / 6
	case x < 2:
		return ((-f.B-6*f.C)*x3 + (6*f.B+30*f.C)*x2 + (-12*f.B-48*f.C)*x + (8*f.B + 24*f.C)) / 6
	default:
		return 0
	}
}

// ParseFilter parses a filter spec of the form NAME[.K=V[,K=V...]].
// Names: box, triangle, gauss, mitchell. Options: r (radius), alpha
// (gauss), b and c (mitchell).
func ParseFilter(spec string) (Filter, error) {
	name := spec
	opts := map[string]float64{}

	if dot := strings.IndexByte(spec, '.'); dot >= 0 {
		name = spec[:dot]
		for _, kv := range strings.Split(spec[dot+1:], ",") {
			eq := strings.IndexByte(kv, '=')
			if eq < 0 {
				return nil, fmt.Errorf("bad filter option %q in %q", kv, spec)
			}
			v, err := strconv.ParseFloat(kv[eq+1:], 64)
			if err != nil {
				return nil, fmt.Errorf("bad filter option %q in %q", kv, spec)
			}
			opts[kv[:eq]] = v
		}
	}

	opt := func(key string, def float64) float64 {
		if v, ok := opts[key]; ok {
			return v
		}
		return def
	}

	switch name {
	case "box":
		return NewBoxFilter(opt("r", 0.5)), nil
	case "triangle":
		return NewTriangleFilter(opt("r", 1)), nil
	case "gauss", "gaussian":
		return NewGaussianFilter(opt("r", 2), opt("alpha", 2)), nil
	case "mitchell", "":
		f := NewMitchellFilter()
		f.B = opt("b", f.B)
		f.C = opt("c", f.C)
		return f, nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}
