// Package structure implements the statistical-structure layer shared by
// the REPET pipelines: unbiased autocorrelation (Wiener-Khinchin), beat
// spectrum/spectrogram, cosine self-similarity, constrained local-maxima
// picking, period estimation and similarity-index extraction.
package structure

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"
)

// Acorr computes the unbiased autocorrelation of each column of x
// independently along the row axis, per spec §4.2: zero-pad to 2R rows,
// FFT each column, take the squared magnitude (the PSD), inverse-FFT,
// keep the real part of rows 0..R-1, and divide row r by R-r.
func Acorr(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = x.At(i, j)
		}
		out.SetCol(j, autocorrColumn(col))
	}
	return out
}

func autocorrColumn(v []float64) []float64 {
	r := len(v)
	padded := make([]float64, 2*r)
	copy(padded, v)

	spectrum := fft.FFTReal(padded)
	power := make([]complex128, 2*r)
	for i, z := range spectrum {
		mag2 := real(z)*real(z) + imag(z)*imag(z)
		power[i] = complex(mag2, 0)
	}

	inv := fft.IFFT(power)
	result := make([]float64, r)
	for i := 0; i < r; i++ {
		denom := float64(r - i)
		if denom == 0 {
			denom = 1
		}
		result[i] = real(inv[i]) / denom
	}
	return result
}
