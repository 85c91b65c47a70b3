package structure

import "gonum.org/v1/gonum/mat"

// BeatSpectrum computes the mean over frequency channels of the
// unbiased autocorrelation of a magnitude spectrogram s (F rows, T
// columns) along the time axis, per spec §4.3. Pipelines square s
// before calling this to sharpen periodic peaks.
func BeatSpectrum(s *mat.Dense) []float64 {
	f, t := s.Dims()
	transposed := mat.NewDense(t, f, nil)
	transposed.Copy(s.T())

	ac := Acorr(transposed) // [t, f]: autocorrelation along the original time axis, per frequency column
	out := make([]float64, t)
	for row := 0; row < t; row++ {
		sum := 0.0
		for _, v := range ac.RawRowView(row) {
			sum += v
		}
		out[row] = sum / float64(f)
	}
	return out
}

// BeatSpectrogram computes a piecewise beat spectrum over sliding
// windows of segLen frames, anchored every segStep frames, per spec
// §4.3. s is zero-padded by ceil((segLen-1)/2) columns on the left and
// floor((segLen-1)/2) on the right so every original frame can sit at
// the center of some window. The result has segLen rows (lag 0..segLen-1)
// and as many columns as s, block-replicated between anchors.
func BeatSpectrogram(s *mat.Dense, segLen, segStep int) *mat.Dense {
	f, t := s.Dims()
	padLeft := (segLen - 1 + 1) / 2
	padRight := (segLen - 1) / 2

	padded := mat.NewDense(f, t+padLeft+padRight, nil)
	for row := 0; row < f; row++ {
		dst := make([]float64, t+padLeft+padRight)
		copy(dst[padLeft:padLeft+t], s.RawRowView(row))
		padded.SetRow(row, dst)
	}

	out := mat.NewDense(segLen, t, nil)
	for center := 0; center < t; center += segStep {
		window := extractCols(padded, center, segLen)
		bs := BeatSpectrum(window)
		end := center + segStep
		if end > t {
			end = t
		}
		for col := center; col < end; col++ {
			out.SetCol(col, bs)
		}
	}
	return out
}

func extractCols(m *mat.Dense, start, length int) *mat.Dense {
	rows, _ := m.Dims()
	out := mat.NewDense(rows, length, nil)
	for row := 0; row < rows; row++ {
		out.SetRow(row, append([]float64(nil), m.RawRowView(row)[start:start+length]...))
	}
	return out
}
