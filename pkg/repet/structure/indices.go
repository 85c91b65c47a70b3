package structure

import (
	"gonum.org/v1/gonum/mat"

	"github.com/soundsep/repet-go/pkg/repet/repeterr"
)

// Indices implements spec §4.7: for each column of a similarity matrix,
// apply LocalMaxima with (threshold, distance, number) and store the
// resulting index list for that frame. Self-matches at lag 0 are
// suppressed by LocalMaxima's strict-inequality rule and by the ±distance
// exclusion around the diagonal.
func Indices(sim *mat.Dense, threshold float64, distance, number int) ([][]int, error) {
	t, _ := sim.Dims()
	out := make([][]int, t)
	total := 0
	col := make([]float64, t)
	for j := 0; j < t; j++ {
		for i := 0; i < t; i++ {
			col[i] = sim.At(i, j)
		}
		_, idx := LocalMaxima(col, threshold, distance, number)
		out[j] = idx
		total += len(idx)
	}
	if total == 0 {
		return nil, repeterr.Degenerate("no similarity indices found within threshold=%v distance=%d", threshold, distance)
	}
	return out, nil
}
