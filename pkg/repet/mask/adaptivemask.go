package mask

import "gonum.org/v1/gonum/mat"

// Adaptive builds the ADAPTIVEMASK (time-varying period) mask for a
// half spectrogram s (F rows, T columns), per spec §4.8: for frame i
// with period periods[i], the lookup frames are i + k*periods[i] for k
// in {1-ceil(F0/2) .. F0-ceil(F0/2)}, clipped to [0,T); the repeating
// column is the per-frequency median over that (variable-width) set.
func Adaptive(s *mat.Dense, periods []int, filterOrder int) *mat.Dense {
	f, t := s.Dims()
	half := (filterOrder + 1) / 2
	out := mat.NewDense(f, t, nil)

	vals := make([]float64, 0, filterOrder)
	for i := 0; i < t; i++ {
		p := periods[i]
		var lookups []int
		for k := 1 - half; k <= filterOrder-half; k++ {
			idx := i + k*p
			if idx >= 0 && idx < t {
				lookups = append(lookups, idx)
			}
		}
		for row := 0; row < f; row++ {
			vals = vals[:0]
			for _, idx := range lookups {
				vals = append(vals, s.At(row, idx))
			}
			orig := s.At(row, i)
			var rep float64
			if len(vals) == 0 {
				rep = orig
			} else {
				rep = median(vals)
			}
			if rep > orig {
				rep = orig
			}
			out.Set(row, i, (rep+eps)/(orig+eps))
		}
	}
	return out
}
