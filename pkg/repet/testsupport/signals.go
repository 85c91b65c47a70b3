// Package testsupport generates synthetic waveforms for the repet
// package's tests: sines, noise, chirps and impulse trains standing in
// for the spec's mixture/background/foreground test fixtures, since
// this module has no fixture audio of its own.
package testsupport

import "math"

// Sine returns a pure tone at freqHz, sampled at fs for the given
// duration, amplitude scaled to [-amp, amp].
func Sine(freqHz, amp, fs float64, seconds float64) []float64 {
	n := int(seconds * fs)
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freqHz*float64(i)/fs)
	}
	return out
}

// WhiteNoise returns a deterministic pseudo-random sequence in
// [-amp, amp], built from a linear congruential generator seeded with
// seed so tests are reproducible without needing math/rand's global
// state or a *rand.Rand threaded through every call site.
func WhiteNoise(n int, amp float64, seed uint64) []float64 {
	out := make([]float64, n)
	state := seed
	for i := range out {
		state = state*6364136223846793005 + 1442695040888963407
		u := float64(state>>11) / float64(1<<53)
		out[i] = amp * (2*u - 1)
	}
	return out
}

// Chirp returns a linear frequency sweep from f0Hz to f1Hz over the
// given duration.
func Chirp(f0, f1, amp, fs, seconds float64) []float64 {
	n := int(seconds * fs)
	out := make([]float64, n)
	k := (f1 - f0) / seconds
	for i := range out {
		t := float64(i) / fs
		phase := 2 * math.Pi * (f0*t + 0.5*k*t*t)
		out[i] = amp * math.Sin(phase)
	}
	return out
}

// ImpulseTrain returns unit impulses spaced periodSamples apart,
// amp-scaled, the discrete analogue of the spec's periodic-repetition
// test fixtures.
func ImpulseTrain(n, periodSamples int, amp float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i += periodSamples {
		out[i] = amp
	}
	return out
}

// Add sums equal-length signals sample by sample, the usual way these
// generators get combined into a mixture (e.g. periodic background +
// pink-noise-like foreground).
func Add(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}

// PinkNoise approximates pink (1/f) noise with the Voss-McCartney
// algorithm: sum of octave-spaced white-noise generators updated at
// geometrically decreasing rates.
func PinkNoise(n int, amp float64, seed uint64) []float64 {
	const rows = 16
	generators := make([]float64, rows)
	counters := make([]int, rows)
	state := seed

	nextRand := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		u := float64(state>>11) / float64(1<<53)
		return 2*u - 1
	}

	for i := range generators {
		generators[i] = nextRand()
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		for row := 0; row < rows; row++ {
			counters[row]++
			if counters[row]%(1<<row) == 0 {
				generators[row] = nextRand()
			}
		}
		sum := 0.0
		for _, g := range generators {
			sum += g
		}
		out[i] = amp * sum / rows
	}
	return out
}
