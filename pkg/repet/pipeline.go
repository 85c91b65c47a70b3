package repet

import (
	"math"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/soundsep/repet-go/pkg/repet/repeterr"
	"github.com/soundsep/repet-go/pkg/repet/stft"
)

// Result is a separation pipeline's return value: the estimated
// background signal plus the diagnostic structure estimate that
// produced it (dropped by the distilled single-return interface, but
// present in the original toolbox's UI, which plots exactly these
// quantities).
type Result struct {
	Background Signal

	// Period holds ORIGINAL's single global period, in frames. EXTENDED
	// leaves it zero and reports SegmentPeriods instead.
	Period int

	// Periods holds ADAPTIVE's per-frame periods, in frames.
	Periods []int

	// SimilarityIndices holds SIM/SIMONLINE's per-frame similarity indices.
	SimilarityIndices [][]int

	// SegmentPeriods holds EXTENDED's per-segment global periods, in frames,
	// one per sliding window ORIGINAL ran on.
	SegmentPeriods []int
}

// mapChannels runs fn once per channel index in [0, n), either
// concurrently (bounded by opts.workerCount()) via a conc result pool,
// or serially via an errgroup limited to one in-flight goroutine when
// opts.Deterministic requests bit-identical repeated runs (spec §8
// property 9, §5's "serialize channel passes" escape hatch).
func mapChannels(n int, opts Options, fn func(ch int) (Channel, error)) (Signal, error) {
	if opts.Deterministic {
		out := make(Signal, n)
		g := new(errgroup.Group)
		g.SetLimit(1)
		for ch := 0; ch < n; ch++ {
			ch := ch
			g.Go(func() error {
				result, err := fn(ch)
				if err != nil {
					return err
				}
				out[ch] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}

	p := pool.NewWithResults[Channel]().WithMaxGoroutines(opts.workerCount()).WithErrors()
	for ch := 0; ch < n; ch++ {
		ch := ch
		p.Go(func() (Channel, error) {
			return fn(ch)
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	return Signal(results), nil
}

// cutoffBinRound implements the round(cutoff*W/fs) formula used by
// ORIGINAL, EXTENDED and ADAPTIVE.
func cutoffBinRound(cutoff, fs float64, w int) int {
	return int(math.Round(cutoff * float64(w) / fs))
}

// cutoffBinCeil implements the ceil(cutoff*(W-1)/fs) formula SIM uses
// instead. Spec §9 flags this as a likely bug in the reference
// implementation and instructs both formulas be preserved verbatim
// rather than silently unified; see DESIGN.md.
func cutoffBinCeil(cutoff, fs float64, w int) int {
	return int(math.Ceil(cutoff * float64(w-1) / fs))
}

// applyHighPassOverride sets mask rows 1..cutoffBin to 1.0, the "dual
// high-pass filter" of spec §4.9.
func applyHighPassOverride(half *mat.Dense, cutoffBin int) *mat.Dense {
	f, t := half.Dims()
	out := mat.NewDense(f, t, nil)
	out.Copy(half)
	ones := make([]float64, t)
	for i := range ones {
		ones[i] = 1
	}
	for row := 1; row <= cutoffBin && row < f; row++ {
		out.SetRow(row, ones)
	}
	return out
}

// applyMaskAndInvert is the shared epilogue of spec §4.9: override the
// low-frequency bins, mirror the half-spectrum mask to full spectrum,
// multiply pointwise with the channel's complex STFT, invert, and
// truncate to the original sample count.
func applyMaskAndInvert(frame stft.Frame, half *mat.Dense, cutoffBin int, p stft.Params, originalLen int) (Channel, error) {
	overridden := applyHighPassOverride(half, cutoffBin)
	full := stft.MirrorMask(overridden, p.W)

	t := frame.Frames()
	masked := make(stft.Frame, p.W)
	for w := 0; w < p.W; w++ {
		masked[w] = make([]complex128, t)
		row := full.RawRowView(w)
		src := frame[w]
		for col := 0; col < t; col++ {
			masked[w][col] = src[col] * complex(row[col], 0)
		}
	}
	out := stft.Synthesize(masked, p, originalLen)
	if err := checkFinite(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkFinite reports a CodeNumericOverflow error naming the first
// non-finite sample it finds. The mask-and-mirror epilogue should never
// produce NaN/Inf given epsilon-regularized ratios upstream, but a
// degenerate input (near-zero energy, for instance) can still drive a
// division through a band where that regularization isn't enough.
func checkFinite(ch Channel) error {
	for i, v := range ch {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return repeterr.Overflow("non-finite sample %v at index %d after mask inversion", v, i)
		}
	}
	return nil
}

// squareMatrix squares every element of m, used before beat-spectrum
// estimation per spec §4.3 ("pipelines square S ... to sharpen periodic
// peaks").
func squareMatrix(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		dst := make([]float64, c)
		for j, v := range row {
			dst[j] = v * v
		}
		out.SetRow(i, dst)
	}
	return out
}

// analyzeAll runs stft.Analyze on every channel and returns both the
// complex frames and their half-spectrum magnitudes, the STFT setup
// shared by ORIGINAL, ADAPTIVE, SIM and SIMONLINE.
func analyzeAll(signal Signal, p stft.Params) ([]stft.Frame, []*mat.Dense, error) {
	frames := make([]stft.Frame, len(signal))
	mags := make([]*mat.Dense, len(signal))
	for ch, channel := range signal {
		f, err := stft.Analyze(channel, p)
		if err != nil {
			return nil, nil, err
		}
		frames[ch] = f
		mags[ch] = stft.Magnitude(f)
	}
	return frames, mags, nil
}

// colOf returns a fresh copy of column j of m.
func colOf(m *mat.Dense, j int) []float64 {
	return mat.Col(nil, j, m)
}

// secondsToFrames converts a duration in seconds to a frame count given
// the STFT hop size, per the spec's "in frame units" conversions (§4.9
// table entries are all specified in seconds; the algorithms operate in
// frames, one frame every H/fs seconds).
func secondsToFrames(sec, fs float64, hop int) int {
	return int(sec * fs / float64(hop))
}

// meanAcrossChannels averages a slice of equal-shaped matrices
// elementwise, used to collapse a multichannel magnitude spectrogram to
// the single channel-averaged spectrogram the structure layer expects.
func meanAcrossChannels(mats []*mat.Dense) *mat.Dense {
	r, c := mats[0].Dims()
	out := mat.NewDense(r, c, nil)
	n := float64(len(mats))
	for i := 0; i < r; i++ {
		sum := make([]float64, c)
		for _, m := range mats {
			row := m.RawRowView(i)
			for j, v := range row {
				sum[j] += v
			}
		}
		for j := range sum {
			sum[j] /= n
		}
		out.SetRow(i, sum)
	}
	return out
}
