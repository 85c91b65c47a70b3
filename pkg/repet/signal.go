// Package repet implements the REPET family of repetition-based audio
// source-separation algorithms: ORIGINAL, EXTENDED, ADAPTIVE, SIM and
// SIMONLINE. Each pipeline takes a multichannel mixture and a sampling
// rate and returns an estimate of the repeating background; the caller
// computes the non-repeating foreground as signal minus background.
package repet

import "github.com/soundsep/repet-go/pkg/repet/repeterr"

// Channel is a single-channel waveform, sample-normalized to roughly [-1, 1].
type Channel []float64

// Signal is a multichannel waveform, one Channel per microphone/speaker.
// All channels must share the same length.
type Signal []Channel

// NewSignal builds a Signal from per-channel sample slices.
func NewSignal(channels ...Channel) Signal {
	return Signal(channels)
}

// Mono wraps a single channel as a one-channel Signal.
func Mono(samples []float64) Signal {
	return Signal{Channel(samples)}
}

// Channels returns the channel count.
func (s Signal) Channels() int {
	return len(s)
}

// Frames returns the per-channel sample count, or 0 for an empty signal.
func (s Signal) Frames() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Clone returns a deep copy so pipelines never mutate caller-owned data.
func (s Signal) Clone() Signal {
	out := make(Signal, len(s))
	for i, ch := range s {
		out[i] = append(Channel(nil), ch...)
	}
	return out
}

func (s Signal) validate(fs float64, minSamples int) error {
	if fs <= 0 {
		return repeterr.Invalid("sampling_frequency must be positive, got %v", fs)
	}
	if len(s) == 0 {
		return repeterr.Invalid("signal has no channels")
	}
	n := s.Frames()
	if n == 0 {
		return repeterr.Invalid("signal is empty")
	}
	for i, ch := range s {
		if len(ch) != n {
			return repeterr.Invalid("channel %d has %d samples, want %d", i, len(ch), n)
		}
	}
	if n < minSamples {
		return repeterr.Invalid("signal has %d samples, shorter than one analysis window (%d)", n, minSamples)
	}
	return nil
}
