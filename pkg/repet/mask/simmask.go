package mask

import "gonum.org/v1/gonum/mat"

// Sim builds the SIMMASK (similarity-indexed) mask for a half
// spectrogram s (F rows, T columns), per spec §4.8: for frame i, the
// repeating column is the per-frequency median over indices[i].
func Sim(s *mat.Dense, indices [][]int) *mat.Dense {
	f, t := s.Dims()
	out := mat.NewDense(f, t, nil)

	vals := make([]float64, 0, 16)
	for i := 0; i < t; i++ {
		idxs := indices[i]
		for row := 0; row < f; row++ {
			vals = vals[:0]
			for _, idx := range idxs {
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
