package renderer

import (
	"image"
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// pixelAccum is one accumulator cell: (Σ w·L, Σ w·α, Σ w)
type pixelAccum struct {
	color  core.Color
	alpha  float64
	weight float64
}

// Accumulator collects filtered sample splats over a pixel rectangle.
// Each sample is splatted into every pixel whose center lies within the
// reconstruction filter's radius of the sample position, weighted by the
// kernel at the sub-pixel offset. Workers splat into per-tile private
// accumulators which are merged into the frame accumulator in
// deterministic order.
type Accumulator struct {
	bounds image.Rectangle
	filter Filter
	pixels []pixelAccum
}

// NewAccumulator creates an accumulator covering bounds
func NewAccumulator(bounds image.Rectangle, filter Filter) *Accumulator {
	return &Accumulator{
		bounds: bounds,
		filter: filter,
		pixels: make([]pixelAccum, bounds.Dx()*bounds.Dy()),
	}
}

// Bounds returns the pixel rectangle the accumulator covers
func (a *Accumulator) Bounds() image.Rectangle {
	return a.bounds
}

// AddSample splats one sample at continuous image position (fx, fy)
func (a *Accumulator) AddSample(fx, fy float64, t core.Tint) {
	radius := a.filter.Radius()

	// Pixel centers sit at integer+0.5; find the affected pixel range
	x0 := int(math.Ceil(fx - radius - 0.5))
	x1 := int(math.Floor(fx + radius - 0.5))
	y0 := int(math.Ceil(fy - radius - 0.5))
	y1 := int(math.Floor(fy + radius - 0.5))

	if x0 < a.bounds.Min.X {
		x0 = a.bounds.Min.X
	}
	if x1 >= a.bounds.Max.X {
		x1 = a.bounds.Max.X - 1
	}
	if y0 < a.bounds.Min.Y {
		y0 = a.bounds.Min.Y
	}
	if y1 >= a.bounds.Max.Y {
		y1 = a.bounds.Max.Y - 1
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			w := a.filter.Eval(float64(x)+0.5-fx, float64(y)+0.5-fy)
			if w == 0 {
				continue
			}
			cell := a.cell(x, y)
			cell.color = cell.color.Add(t.Color.Scale(w))
			cell.alpha += t.Alpha * w
			cell.weight += w
		}
	}
}

// Merge adds another accumulator's sums into this one. The other's bounds
// must lie within this accumulator's bounds.
func (a *Accumulator) Merge(other *Accumulator) {
	for y := other.bounds.Min.Y; y < other.bounds.Max.Y; y++ {
		for x := other.bounds.Min.X; x < other.bounds.Max.X; x++ {
			src := other.cell(x, y)
			if src.weight == 0 && src.alpha == 0 && src.color.IsBlack() {
				continue
			}
			dst := a.cell(x, y)
			dst.color = dst.color.Add(src.color)
			dst.alpha += src.alpha
			dst.weight += src.weight
		}
	}
}

// Pixel resolves one pixel: Σ w·L / Σ w, clamped to non-negative
func (a *Accumulator) Pixel(x, y int) core.Tint {
	cell := a.cell(x, y)
	if cell.weight == 0 {
		return core.Tint{}
	}
	return core.Tint{
		Color: cell.color.Div(cell.weight).ClampNonNegative(),
		Alpha: math.Max(0, math.Min(1, cell.alpha/cell.weight)),
	}
}

// Row resolves a full pixel row into an output row
func (a *Accumulator) Row(y int) Row {
	row := Row{
		X0:     a.bounds.Min.X,
		Y:      y,
		Pixels: make([]core.Tint, a.bounds.Dx()),
	}
	for x := a.bounds.Min.X; x < a.bounds.Max.X; x++ {
		row.Pixels[x-a.bounds.Min.X] = a.Pixel(x, y)
	}
	return row
}

func (a *Accumulator) cell(x, y int) *pixelAccum {
	return &a.pixels[(y-a.bounds.Min.Y)*a.bounds.Dx()+(x-a.bounds.Min.X)]
}
