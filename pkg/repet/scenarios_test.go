package repet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundsep/repet-go/pkg/repet/stft"
	"github.com/soundsep/repet-go/pkg/repet/testsupport"
)

// These tests exercise the spec §8 end-to-end scenarios: they check
// that each pipeline actually separates a mixture rather than merely
// returning correctly-shaped output. Scenario numbering follows the
// spec's table.

// bandEnergyFraction returns the fraction of a channel's total STFT
// magnitude-squared energy that falls in frequency bins [loHz, hiHz].
func bandEnergyFraction(t *testing.T, channel []float64, fs, loHz, hiHz float64) float64 {
	t.Helper()
	p := stft.NewParams(fs)
	frame, err := stft.Analyze(channel, p)
	require.NoError(t, err)
	mag := stft.Magnitude(frame)

	loBin := int(math.Round(loHz * float64(p.W) / fs))
	hiBin := int(math.Round(hiHz * float64(p.W) / fs))

	var band, total float64
	rows, cols := mag.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			e := mag.At(r, c) * mag.At(r, c)
			total += e
			if r >= loBin && r <= hiBin {
				band += e
			}
		}
	}
	if total == 0 {
		return 0
	}
	return band / total
}

func l2RelativeError(a, b []float64) float64 {
	var num, den float64
	for i := range a {
		d := a[i] - b[i]
		num += d * d
		den += a[i] * a[i]
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(num / den)
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

// Scenario 1: a pure periodic tone has nothing for the foreground to
// claim, so ORIGINAL's background should reconstruct almost all of it.
func TestScenario1PureToneIsAlmostEntirelyBackground(t *testing.T) {
	tone := testsupport.Sine(440, 0.5, testFs, 4.0)
	signal := Mono(tone)

	res, err := Original(signal, testFs)
	require.NoError(t, err)

	relErr := l2RelativeError(tone, res.Background[0])
	assert.Less(t, relErr, 0.05, "background should track a pure tone within 5%% relative L2 error")
}

// Scenario 3: a periodic tone plus a non-repeating chirp. ORIGINAL's
// background should concentrate most of its energy in the tone's band;
// the chirp, which never repeats at any fixed lag, should mostly end up
// in the foreground instead.
func TestScenario3SeparatesToneFromChirp(t *testing.T) {
	tone := testsupport.Sine(220, 0.4, testFs, 4.0)
	chirp := testsupport.Chirp(500, 2000, 0.2, testFs, 4.0)
	mixture := testsupport.Add(tone, chirp)
	signal := Mono(mixture)

	res, err := Original(signal, testFs)
	require.NoError(t, err)

	bgFraction := bandEnergyFraction(t, res.Background[0], testFs, 200, 240)
	assert.Greater(t, bgFraction, 0.70, "background energy should concentrate near 220 Hz")

	foreground := make([]float64, len(mixture))
	for i := range foreground {
		foreground[i] = mixture[i] - res.Background[0][i]
	}
	fgHighBandFraction := bandEnergyFraction(t, foreground, testFs, 500, 2000)
	assert.Greater(t, fgHighBandFraction, 0.5, "foreground should retain most of the chirp's energy above 500 Hz")
}

// Scenario 5: EXTENDED must reassemble segment backgrounds without
// introducing a discontinuity at the crossfade boundary.
func TestScenario5ExtendedCrossfadeHasNoDiscontinuity(t *testing.T) {
	half := int(2.0 * testFs)
	tone := testsupport.Sine(220, 0.4, testFs, 2.0)
	chirp := testsupport.Chirp(500, 2000, 0.2, testFs, 2.0)
	firstHalf := testsupport.Add(tone, chirp)
	secondHalf := testsupport.Sine(440, 0.5, testFs, 2.0)

	mixture := make([]float64, 0, half*2)
	mixture = append(mixture, firstHalf...)
	mixture = append(mixture, secondHalf...)

	// A 2s segment is 64 frames, so Periods caps the period at 21 frames
	// (about 0.67s); the default 1-10s range would leave no candidate and
	// return a DegenerateStructure error. Search 0.1-0.6s instead.
	res, err := Extended(Mono(mixture), testFs, WithSegmentation(2.0, 1.0), WithPeriodRange(0.1, 0.6))
	require.NoError(t, err)

	bg := res.Background[0]

	// The first segment boundary (segStep*fs) falls inside the tone+chirp
	// region only, so any anomalous jump there is attributable to the
	// crossfade splice rather than to the tone/sine content change at 2s.
	seam := int(1.0 * testFs)
	window := int(0.01 * testFs)
	seamRMS := localDiffRMS(bg, seam-window/2, window)
	interiorRMS := localDiffRMS(bg, seam+window*20, window)

	assert.Less(t, seamRMS, interiorRMS*5+1e-9,
		"sample-to-sample differences at the crossfade seam should be no worse than a typical interior region")
	assert.Greater(t, len(res.SegmentPeriods), 1, "a 4s signal with 2s/1s segmentation should produce multiple segments")
}

// localDiffRMS returns the RMS of v's sample-to-sample differences over
// [start, start+length).
func localDiffRMS(v []float64, start, length int) float64 {
	var sum float64
	count := 0
	for i := start + 1; i < start+length && i < len(v); i++ {
		if i <= 0 {
			continue
		}
		d := v[i] - v[i-1]
		sum += d * d
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}

// Scenario 6: five irregular-period impulse trains masked by pink noise.
// SIMONLINE's steady-state background should beat the trivial baseline
// of returning the mixture unchanged as the background by at least 3 dB
// of ISR, per spec §8 scenario 6, once the ring buffer has filled.
func TestScenario6SimOnlineBeatsMixtureBaselineByISR(t *testing.T) {
	fs := testFs
	seconds := 4.0
	n := int(seconds * fs)

	periodsSec := []float64{0.37, 0.71, 1.13, 1.51, 2.03}
	trains := make([][]float64, len(periodsSec))
	for i, ps := range periodsSec {
		trains[i] = testsupport.ImpulseTrain(n, int(ps*fs), 0.6)
	}
	bgTrue := testsupport.Add(trains...)
	fgTrue := testsupport.PinkNoise(n, 0.08, 42)
	mixture := testsupport.Add(bgTrue, fgTrue)

	bufferLenSec := 3.0
	res, err := SimOnline(Mono(mixture), fs, WithBufferLength(bufferLenSec))
	require.NoError(t, err)

	p := stft.NewParams(fs)
	bufferFrames := secondsToFrames(bufferLenSec, fs, p.H)
	steadyStart := (bufferFrames + 2) * p.H
	require.Less(t, steadyStart, n, "test signal must be long enough to reach steady state")

	errBaseline := sumSquares(fgTrue[steadyStart:n])

	diff := make([]float64, n-steadyStart)
	for i := steadyStart; i < n; i++ {
		diff[i-steadyStart] = bgTrue[i] - res.Background[0][i]
	}
	errMethod := sumSquares(diff)

	improvementDB := 10 * math.Log10(errBaseline/errMethod)
	assert.GreaterOrEqual(t, improvementDB, 3.0,
		"SIMONLINE's steady-state background should beat the mixture-as-background baseline by >=3dB ISR")
}
