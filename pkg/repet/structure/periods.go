package structure

import (
	"gonum.org/v1/gonum/mat"

	"github.com/soundsep/repet-go/pkg/repet/repeterr"
)

// Periods implements spec §4.4: for each column of a beat spectrogram
// (or a single-column beat spectrum), pick the argmax row index over
// pLo+1 .. min(pHi, floor(L/3)) — the +1 skips the zero-lag peak, and
// the floor(L/3) cap ensures at least three repetitions fit the window
// the period was estimated from. Ties keep the first (lowest-lag) max.
func Periods(beatSpectrogram *mat.Dense, pLo, pHi int) ([]int, error) {
	l, t := beatSpectrogram.Dims()
	maxRow := pHi
	if cap3 := l / 3; cap3 < maxRow {
		maxRow = cap3
	}
	minRow := pLo + 1
	if minRow > maxRow {
		return nil, repeterr.Degenerate("no candidate period in [%d,%d] for beat spectrogram of length %d", pLo, pHi, l)
	}

	periods := make([]int, t)
	for col := 0; col < t; col++ {
		best := minRow
		bestVal := beatSpectrogram.At(best, col)
		for row := minRow + 1; row <= maxRow; row++ {
			v := beatSpectrogram.At(row, col)
			if v > bestVal {
				bestVal = v
				best = row
			}
		}
		periods[col] = best
	}
	return periods, nil
}
