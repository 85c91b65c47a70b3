// Package mask builds the soft time-frequency masks the REPET pipelines
// apply to the STFT before inversion: MASK (fixed period), ADAPTIVEMASK
// (time-varying period) and SIMMASK (similarity-indexed), per spec §4.8.
package mask

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Eps is the machine epsilon of float64, matching the spec's
// epsilon-regularized mask ratio (repeating+eps)/(original+eps). It's
// exported so callers building masks outside the batch Fixed/Adaptive/Sim
// builders here (SIMONLINE's frame-at-a-time variant) use the same
// regularization.
const Eps = 2.220446049250313e-16

const eps = Eps

// Median is the per-frequency-bin aggregator the three mask builders use,
// exported for SIMONLINE's frame-at-a-time variant of the same logic.
func Median(v []float64) float64 {
	return median(v)
}

func median(v []float64) float64 {
	switch len(v) {
	case 0:
		return 0
	case 1:
		return v[0]
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	// The Empirical 0.5 quantile is the middle element for an odd count
	// and the lower of the two middle elements for an even count.
	lo := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted)%2 == 1 {
		return lo
	}
	return (lo + sorted[len(sorted)/2]) / 2
}

// Fixed builds the MASK (fixed-period) repeating mask for a half
// spectrogram s (F rows, T columns) and period p, per spec §4.8.
func Fixed(s *mat.Dense, period int) *mat.Dense {
	f, t := s.Dims()
	p := period
	g := (t + p - 1) / p
	width := g * p

	padded := mat.NewDense(f, width, nil)
	for row := 0; row < f; row++ {
		dst := make([]float64, width)
		orig := s.RawRowView(row)
		for col := 0; col < width; col++ {
			if col < t {
				dst[col] = orig[col]
			} else {
				dst[col] = math.NaN()
			}
		}
		padded.SetRow(row, dst)
	}

	// Columns 0..fullCols-1 of each segment have data across all G
	// segments; columns fullCols..p-1 only have data across the first
	// G-1 segments (the last segment is NaN there).
	fullCols := t - (g-1)*p
	if fullCols < 0 {
		fullCols = 0
	}
	if fullCols > p {
		fullCols = p
	}

	repeatingSegment := mat.NewDense(f, p, nil)
	for row := 0; row < f; row++ {
		rowVals := padded.RawRowView(row)
		out := make([]float64, p)
		for j := 0; j < p; j++ {
			segCount := g
			if j >= fullCols {
				segCount = g - 1
			}
			if segCount < 0 {
				segCount = 0
			}
			vals := make([]float64, segCount)
			for seg := 0; seg < segCount; seg++ {
				vals[seg] = rowVals[seg*p+j]
			}
			out[j] = median(vals)
		}
		repeatingSegment.SetRow(row, out)
	}

	out := mat.NewDense(f, t, nil)
	for row := 0; row < f; row++ {
		seg := repeatingSegment.RawRowView(row)
		orig := s.RawRowView(row)
		dst := make([]float64, t)
		for col := 0; col < t; col++ {
			rep := seg[col%p]
			o := orig[col]
			if rep > o {
				rep = o
			}
			dst[col] = (rep + eps) / (o + eps)
		}
		out.SetRow(row, dst)
	}
	return out
}
