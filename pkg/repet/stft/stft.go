// Package stft implements the centered, constant-overlap-add short-time
// Fourier transform and its inverse, per spec §4.1. Forward/inverse
// per-frame transforms are delegated to github.com/mjibson/go-dsp/fft,
// the same FFT primitive the teacher repo's SpectralAnalyzer.FFT uses —
// this package adds the framing, windowing, overlap-add and COLA
// normalization the teacher never needed for its single-frame analysis.
package stft

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"

	"github.com/soundsep/repet-go/pkg/repet/repeterr"
)

// Params holds the window/hop/pad derived from a sampling rate, per
// spec §4.1: W = 2^ceil(log2(0.04*fs)), periodic Hamming window of
// length W, hop H = W/2, pad P = floor(W/2) (== H, since W is a power
// of two and therefore even).
type Params struct {
	SampleRate float64
	W          int
	H          int
	P          int
	Window     []float64
	// Gain is the COLA normalization divisor: sum of the window
	// sampled every H starting at 0, per spec §4.1's "Σ_{k=0,H,2H,…} w[k]".
	Gain float64
}

// NewParams derives STFT parameters from a sampling rate.
func NewParams(fs float64) Params {
	w := windowSize(fs)
	h := w / 2
	p := w / 2
	window := periodicHamming(w)
	gain := 0.0
	for k := 0; k < w; k += h {
		gain += window[k]
	}
	return Params{SampleRate: fs, W: w, H: h, P: p, Window: window, Gain: gain}
}

func windowSize(fs float64) int {
	target := 0.04 * fs
	w := 1
	for float64(w) < target {
		w <<= 1
	}
	return w
}

// periodicHamming returns a length-n periodic (DFT-even) Hamming window.
func periodicHamming(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// Frame is a full-spectrum STFT: Frame[w][t] is the complex value at
// frequency bin w (0..W-1) and time frame t (0..T-1).
type Frame [][]complex128

// Frames returns the number of analysis frames, T.
func (f Frame) Frames() int {
	if len(f) == 0 {
		return 0
	}
	return len(f[0])
}

// Analyze computes the centered STFT of a single channel. It fails with
// repeterr.CodeInvalidInput if the channel is shorter than one window.
func Analyze(channel []float64, p Params) (Frame, error) {
	n := len(channel)
	if n < p.W {
		return nil, repeterr.Invalid("signal has %d samples, shorter than one analysis window (%d)", n, p.W)
	}

	numer := n + 2*p.P - p.W
	t := 1
	if numer > 0 {
		t = ceilDiv(numer, p.H) + 1
	}
	neededLen := (t-1)*p.H + p.W

	padded := make([]float64, neededLen)
	copy(padded[p.P:p.P+n], channel)

	frame := make(Frame, p.W)
	for w := range frame {
		frame[w] = make([]complex128, t)
	}

	windowed := make([]float64, p.W)
	for frameIdx := 0; frameIdx < t; frameIdx++ {
		start := frameIdx * p.H
		for i := 0; i < p.W; i++ {
			windowed[i] = padded[start+i] * p.Window[i]
		}
		spectrum := fft.FFTReal(windowed)
		for w := 0; w < p.W; w++ {
			frame[w][frameIdx] = spectrum[w]
		}
	}
	return frame, nil
}

// Synthesize inverts a Frame back to a real waveform of length
// originalLen, per spec §4.1's Inverse description: real part of the
// W-point inverse FFT of each column, overlap-added at hop H, with P
// samples stripped from the front and the result truncated (or, in
// degenerate cases, zero-padded) to originalLen, then divided by the
// COLA gain.
func Synthesize(frame Frame, p Params, originalLen int) []float64 {
	t := frame.Frames()
	if t == 0 {
		return make([]float64, originalLen)
	}
	neededLen := (t-1)*p.H + p.W
	buf := make([]float64, neededLen)

	col := make([]complex128, p.W)
	for frameIdx := 0; frameIdx < t; frameIdx++ {
		for w := 0; w < p.W; w++ {
			col[w] = frame[w][frameIdx]
		}
		timeDomain := fft.IFFT(col)
		start := frameIdx * p.H
		for i := 0; i < p.W; i++ {
			buf[start+i] += real(timeDomain[i])
		}
	}

	if p.Gain != 0 {
		for i := range buf {
			buf[i] /= p.Gain
		}
	}

	out := make([]float64, originalLen)
	stripped := buf[min(p.P, len(buf)):]
	n := min(originalLen, len(stripped))
	copy(out[:n], stripped[:n])
	return out
}

// Magnitude extracts the non-negative half-spectrum magnitude matrix
// (F = W/2+1 rows, T columns) from a full-spectrum Frame.
func Magnitude(frame Frame) *mat.Dense {
	w := len(frame)
	t := frame.Frames()
	f := w/2 + 1
	m := mat.NewDense(f, t, nil)
	for row := 0; row < f; row++ {
		for col := 0; col < t; col++ {
			m.Set(row, col, cmplx.Abs(frame[row][col]))
		}
	}
	return m
}

// MirrorMask expands a half-spectrum mask (F rows, T columns) to a
// full-spectrum mask (W rows) by concatenating the reversal of rows
// W/2-1 .. 1, per spec §4.9/§9 "Mirroring convention". Bins 0 (DC) and
// W/2 (Nyquist) are never duplicated.
func MirrorMask(half *mat.Dense, w int) *mat.Dense {
	f, t := half.Dims()
	full := mat.NewDense(w, t, nil)
	for row := 0; row < f; row++ {
		full.SetRow(row, half.RawRowView(row))
	}
	for row := f; row < w; row++ {
		full.SetRow(row, half.RawRowView(w-row))
	}
	return full
}

// ToRows returns a fresh copy of m, row by row, as a [][]float64 — a
// small convenience used by callers that need to hand a mask-shaped
// matrix to functions expecting plain slices.
func ToRows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = append([]float64(nil), m.RawRowView(i)[:c]...)
	}
	return out
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
