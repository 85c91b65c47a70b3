package stft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(freq, amp, fs float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return out
}

func TestNewParamsWindowSize(t *testing.T) {
	p := NewParams(8000)
	assert.Equal(t, 512, p.W) // 0.04*8000=320, 2^ceil(log2(320))=512
	assert.Equal(t, 256, p.H)
	assert.Equal(t, 256, p.P)
	assert.Len(t, p.Window, 512)
}

func TestAnalyzeSynthesizeRoundTrip(t *testing.T) {
	fs := 8000.0
	p := NewParams(fs)
	n := 32000
	amp := 0.5
	signal := sineWave(440, amp, fs, n)

	frame, err := Analyze(signal, p)
	require.NoError(t, err)

	out := Synthesize(frame, p, n)
	require.Len(t, out, n)

	// Gain is a single scalar (the COLA sum at full overlap), not a
	// per-sample normalization. The P = H centering pad puts every output
	// sample under two frames, so the scalar gain holds at the edges too.
	// The interior and the first and last W-H samples are checked
	// separately below.
	margin := p.W - p.H
	var errNum, errDen float64
	for i := margin; i < n-margin; i++ {
		d := out[i] - signal[i]
		errNum += d * d
		errDen += signal[i] * signal[i]
	}
	relErr := math.Sqrt(errNum / errDen)
	assert.Less(t, relErr, 1e-10, "STFT/ISTFT round trip should reconstruct interior samples to within COLA normalization error")

	// Edge samples can land near a sine zero-crossing, where a relative
	// error blows up even for a tiny absolute difference; compare
	// against the signal's own amplitude instead.
	var maxEdgeAbsErr float64
	for _, i := range []int{0, margin - 1, n - margin, n - 1} {
		d := math.Abs(out[i] - signal[i])
		if d > maxEdgeAbsErr {
			maxEdgeAbsErr = d
		}
	}
	assert.Less(t, maxEdgeAbsErr, 1e-6*amp, "edge samples should reconstruct as well")
}

func TestAnalyzeRejectsShortSignal(t *testing.T) {
	p := NewParams(8000)
	_, err := Analyze(make([]float64, p.W-1), p)
	require.Error(t, err)
}

func TestMirrorMaskShape(t *testing.T) {
	p := NewParams(8000)
	frame, err := Analyze(sineWave(200, 1, 8000, 32000), p)
	require.NoError(t, err)
	mag := Magnitude(frame)
	f, tcols := mag.Dims()
	assert.Equal(t, p.W/2+1, f)

	full := MirrorMask(mag, p.W)
	fw, ft := full.Dims()
	assert.Equal(t, p.W, fw)
	assert.Equal(t, tcols, ft)

	// Row W-1 mirrors row 1 of the half spectrum; DC (row 0) and
	// Nyquist (row W/2) are not duplicated anywhere else in full.
	for c := 0; c < ft; c++ {
		assert.Equal(t, mag.At(1, c), full.At(p.W-1, c))
		assert.Equal(t, mag.At(0, c), full.At(0, c))
		assert.Equal(t, mag.At(p.W/2, c), full.At(p.W/2, c))
	}
}
