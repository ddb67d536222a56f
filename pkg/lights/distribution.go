package lights

// distribution1D is a piecewise-constant distribution over [0,1)
type distribution1D struct {
	f        []float64
	cdf      []float64
	integral float64
}

func newDistribution1D(f []float64) *distribution1D {
	n := len(f)
	d := &distribution1D{
		f:   append([]float64(nil), f...),
		cdf: make([]float64, n+1),
	}
	for i := 1; i <= n; i++ {
		d.cdf[i] = d.cdf[i-1] + f[i-1]/float64(n)
	}
	d.integral = d.cdf[n]
	if d.integral == 0 {
		// Degenerate function: fall back to uniform
		for i := 1; i <= n; i++ {
			d.cdf[i] = float64(i) / float64(n)
		}
	} else {
		for i := 1; i <= n; i++ {
			d.cdf[i] /= d.integral
		}
	}
	return d
}

// sampleContinuous maps a uniform u to a point in [0,1) distributed by f,
// returning the point, its density and the cell index
func (d *distribution1D) sampleContinuous(u float64) (x, pdf float64, offset int) {
	// Binary search for the cdf cell containing u
	lo, hi := 0, len(d.cdf)-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if d.cdf[mid] <= u {
			lo = mid
		} else {
			hi = mid
		}
	}
	offset = lo

	du := u - d.cdf[offset]
	if width := d.cdf[offset+1] - d.cdf[offset]; width > 0 {
		du /= width
	}

	pdf = 1.0
	if d.integral > 0 {
		pdf = d.f[offset] / d.integral
	}
	return (float64(offset) + du) / float64(len(d.f)), pdf, offset
}

// pdfAt returns the density of the cell containing x in [0,1)
func (d *distribution1D) pdfAt(x float64) float64 {
	if d.integral == 0 {
		return 1.0
	}
	i := int(x * float64(len(d.f)))
	if i < 0 {
		i = 0
	}
	if i >= len(d.f) {
		i = len(d.f) - 1
	}
	return d.f[i] / d.integral
}

// distribution2D is a piecewise-constant distribution over [0,1)²,
// pre-integrated per row: a marginal over rows plus one conditional
// distribution per row
type distribution2D struct {
	conditional []*distribution1D
	marginal    *distribution1D
}

// newDistribution2D builds the distribution from row-major values
func newDistribution2D(f []float64, width, height int) *distribution2D {
	d := &distribution2D{conditional: make([]*distribution1D, height)}
	rowIntegrals := make([]float64, height)
	for y := 0; y < height; y++ {
		row := f[y*width : (y+1)*width]
		d.conditional[y] = newDistribution1D(row)
		rowIntegrals[y] = d.conditional[y].integral
	}
	d.marginal = newDistribution1D(rowIntegrals)
	return d
}

// sample maps a 2D uniform sample to (u,v) distributed by f, with the
// joint density relative to uniform over the unit square
func (d *distribution2D) sample(u1, u2 float64) (u, v, pdf float64) {
	v, pdfV, row := d.marginal.sampleContinuous(u2)
	u, pdfU, _ := d.conditional[row].sampleContinuous(u1)
	return u, v, pdfU * pdfV
}

// pdf returns the joint density at (u,v)
func (d *distribution2D) pdf(u, v float64) float64 {
	row := int(v * float64(len(d.conditional)))
	if row < 0 {
		row = 0
	}
	if row >= len(d.conditional) {
		row = len(d.conditional) - 1
	}
	return d.conditional[row].pdfAt(u) * d.marginal.pdfAt(v)
}
