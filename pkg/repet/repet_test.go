package repet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundsep/repet-go/pkg/repet/stft"
	"github.com/soundsep/repet-go/pkg/repet/testsupport"
)

const testFs = 8000.0

// periodicMixture tiles a short tone across the full duration every
// periodSec seconds and adds white noise on top, the repeating
// background + non-repeating foreground shape every REPET variant
// assumes its input has.
func periodicMixture(fs float64, seconds float64, periodSec float64, seed uint64) Signal {
	n := int(seconds * fs)
	periodSamples := int(periodSec * fs)
	riff := testsupport.Sine(220, 0.3, fs, periodSec)

	bg := make([]float64, n)
	for i := range bg {
		bg[i] = riff[i%periodSamples]
	}
	foreground := testsupport.WhiteNoise(n, 0.05, seed)
	return Mono(testsupport.Add(bg, foreground))
}

func TestOriginalFindsPeriodWithinRange(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 1)
	res, err := Original(signal, testFs)
	require.NoError(t, err)

	p := stft.NewParams(testFs)
	pLo := secondsToFrames(1, testFs, p.H)
	pHi := secondsToFrames(10, testFs, p.H)
	assert.GreaterOrEqual(t, res.Period, pLo+1)
	assert.LessOrEqual(t, res.Period, pHi)
	assert.Len(t, res.Background, 1)
	assert.Len(t, res.Background[0], signal.Frames())
}

func TestOriginalRejectsEmptySignal(t *testing.T) {
	_, err := Original(Signal{}, testFs)
	assert.Error(t, err)
}

func TestOriginalRejectsMismatchedChannelLengths(t *testing.T) {
	signal := NewSignal(make(Channel, 4000), make(Channel, 3000))
	_, err := Original(signal, testFs)
	assert.Error(t, err)
}

func TestOriginalDegenerateWhenPeriodRangeExceedsWindow(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 2)
	_, err := Original(signal, testFs, WithPeriodRange(1000, 2000))
	assert.Error(t, err)
}

func TestExtendedSplitsIntoMultipleSegments(t *testing.T) {
	signal := Mono(testsupport.WhiteNoise(int(20*testFs), 0.2, 3))
	res, err := Extended(signal, testFs)
	require.NoError(t, err)

	assert.Len(t, res.Background, 1)
	assert.Len(t, res.Background[0], signal.Frames())
	assert.Greater(t, len(res.SegmentPeriods), 1)
}

func TestExtendedShortSignalIsSingleSegment(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 4)
	res, err := Extended(signal, testFs)
	require.NoError(t, err)
	assert.Len(t, res.SegmentPeriods, 1)
	assert.Len(t, res.Background[0], signal.Frames())
}

func TestAdaptiveReturnsOnePeriodPerFrame(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 5)
	res, err := Adaptive(signal, testFs)
	require.NoError(t, err)

	p := stft.NewParams(testFs)
	frame, err := stft.Analyze(signal[0], p)
	require.NoError(t, err)
	assert.Len(t, res.Periods, frame.Frames())
	assert.Len(t, res.Background[0], signal.Frames())
}

func TestSimReturnsIndicesPerFrame(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 6)
	res, err := Sim(signal, testFs)
	require.NoError(t, err)

	p := stft.NewParams(testFs)
	frame, err := stft.Analyze(signal[0], p)
	require.NoError(t, err)
	assert.Len(t, res.SimilarityIndices, frame.Frames())
	assert.Len(t, res.Background[0], signal.Frames())
}

func TestSimOnlineWarmupRegionIsSilent(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 7)
	res, err := SimOnline(signal, testFs, WithBufferLength(1.0))
	require.NoError(t, err)

	p := stft.NewParams(testFs)
	warm := secondsToFrames(1.0, testFs, p.H)
	// Frames 0..warm-2 have a zero mask. Synthesize strips P = H samples
	// from the front, so the first unmasked frame (warm-1) starts at
	// sample (warm-2)*H: the silent region is exactly [0, (warm-2)*H).
	boundary := (warm - 2) * p.H
	require.Greater(t, boundary, 0)
	for i := 0; i < boundary; i++ {
		assert.Equal(t, 0.0, res.Background[0][i], "sample %d should be silent before the ring buffer fills", i)
	}
}

func TestSimOnlineIndicesStayWithinRingBufferBounds(t *testing.T) {
	signal := periodicMixture(testFs, 4.0, 2.0, 8)
	bufferLenSec := 1.0
	res, err := SimOnline(signal, testFs, WithBufferLength(bufferLenSec))
	require.NoError(t, err)

	p := stft.NewParams(testFs)
	bufferLen := secondsToFrames(bufferLenSec, testFs, p.H)
	for j, idx := range res.SimilarityIndices {
		for _, b := range idx {
			assert.GreaterOrEqual(t, b, 0, "frame %d", j)
			assert.Less(t, b, bufferLen, "frame %d", j)
		}
	}
}

func TestDeterministicOptionIsReproducible(t *testing.T) {
	n := int(4 * testFs)
	ch0 := testsupport.Sine(110, 0.4, testFs, 4.0)
	ch1 := testsupport.WhiteNoise(n, 0.1, 9)
	signal := NewSignal(ch0, ch1)

	a, err := Original(signal, testFs, WithDeterministic(true))
	require.NoError(t, err)
	b, err := Original(signal, testFs, WithDeterministic(true))
	require.NoError(t, err)

	require.Len(t, a.Background, len(b.Background))
	for ch := range a.Background {
		assert.Equal(t, a.Background[ch], b.Background[ch])
	}
}
