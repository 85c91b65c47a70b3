package repet

import "runtime"

// Options carries the tuning constants from spec §4.9. The zero value
// is not valid on its own; use DefaultOptions() and override selectively
// with Option functions. Callers are never required to supply Options —
// every pipeline function works correctly with no opts at all.
type Options struct {
	// CutoffFrequency is the dual high-pass filter boundary, in Hz.
	CutoffFrequency float64

	// PeriodRangeSec is [min, max] in seconds, used by ORIGINAL, EXTENDED, ADAPTIVE.
	PeriodRangeSec [2]float64

	// SegmentLengthSec and SegmentStepSec, in seconds, used by EXTENDED and ADAPTIVE.
	SegmentLengthSec float64
	SegmentStepSec   float64

	// FilterOrder is ADAPTIVE's median filter order.
	FilterOrder int

	// Similarity* are used by SIM and SIMONLINE.
	SimilarityThreshold   float64
	SimilarityDistanceSec float64
	SimilarityNumber      int

	// BufferLengthSec is SIMONLINE's ring buffer length, in seconds.
	BufferLengthSec float64

	// MaxWorkers bounds the per-channel worker pool. Zero means
	// runtime.NumCPU().
	MaxWorkers int

	// Deterministic forces serial per-channel execution so repeated
	// calls on identical input are bit-identical (spec §8 property 9).
	Deterministic bool
}

// DefaultOptions returns the spec §4.9 constant table.
func DefaultOptions() Options {
	return Options{
		CutoffFrequency:       100,
		PeriodRangeSec:        [2]float64{1, 10},
		SegmentLengthSec:      10,
		SegmentStepSec:        5,
		FilterOrder:           5,
		SimilarityThreshold:   0,
		SimilarityDistanceSec: 1,
		SimilarityNumber:      100,
		BufferLengthSec:       10,
		MaxWorkers:            0,
		Deterministic:         false,
	}
}

// Option mutates an Options in place.
type Option func(*Options)

func (o *Options) apply(opts []Option) {
	for _, fn := range opts {
		fn(o)
	}
}

// WithCutoffFrequency overrides the high-pass cutoff, in Hz.
func WithCutoffFrequency(hz float64) Option {
	return func(o *Options) { o.CutoffFrequency = hz }
}

// WithPeriodRange overrides the candidate period search range, in seconds.
func WithPeriodRange(minSec, maxSec float64) Option {
	return func(o *Options) { o.PeriodRangeSec = [2]float64{minSec, maxSec} }
}

// WithSegmentation overrides EXTENDED/ADAPTIVE's segment length and step, in seconds.
func WithSegmentation(lengthSec, stepSec float64) Option {
	return func(o *Options) {
		o.SegmentLengthSec = lengthSec
		o.SegmentStepSec = stepSec
	}
}

// WithFilterOrder overrides ADAPTIVE's median filter order.
func WithFilterOrder(order int) Option {
	return func(o *Options) { o.FilterOrder = order }
}

// WithSimilarity overrides SIM/SIMONLINE's local-maxima search parameters.
func WithSimilarity(threshold, distanceSec float64, number int) Option {
	return func(o *Options) {
		o.SimilarityThreshold = threshold
		o.SimilarityDistanceSec = distanceSec
		o.SimilarityNumber = number
	}
}

// WithBufferLength overrides SIMONLINE's ring buffer length, in seconds.
func WithBufferLength(sec float64) Option {
	return func(o *Options) { o.BufferLengthSec = sec }
}

// WithMaxWorkers overrides the per-channel worker pool size.
func WithMaxWorkers(n int) Option {
	return func(o *Options) { o.MaxWorkers = n }
}

// WithDeterministic forces serial per-channel execution.
func WithDeterministic(det bool) Option {
	return func(o *Options) { o.Deterministic = det }
}

// FromConfig replaces every field of Options with src's values. It's
// meant to be the first Option in a call's opts slice, so a config file
// or environment-loaded baseline (internal/config) still loses to any
// explicit Option passed alongside it.
func FromConfig(src Options) Option {
	return func(o *Options) { *o = src }
}

func resolve(opts []Option) Options {
	o := DefaultOptions()
	o.apply(opts)
	return o
}

func (o Options) workerCount() int {
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
