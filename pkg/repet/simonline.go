package repet

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/soundsep/repet-go/pkg/repet/mask"
	"github.com/soundsep/repet-go/pkg/repet/stft"
	"github.com/soundsep/repet-go/pkg/repet/structure"
)

// SimOnline implements REPET-SIMONLINE (spec §4.9.5): the causal
// variant of SIM. A fixed-size ring buffer of past magnitude frames
// stands in for the full self-similarity matrix, so frame j's mask
// depends only on frames that have already entered the buffer.
//
// SIMONLINE is still built on top of a full offline STFT: the per-frame
// causality constraint is about what feeds the similarity search and
// mask, not about how the complex spectrum itself gets computed, and a
// centered analysis window already looks at most W/2 samples into the
// future regardless of how the frames are produced.
func SimOnline(signal Signal, fs float64, opts ...Option) (Result, error) {
	o := resolve(opts)
	p := stft.NewParams(fs)
	if err := signal.validate(fs, p.W); err != nil {
		return Result{}, err
	}

	frames, mags, err := analyzeAll(signal, p)
	if err != nil {
		return Result{}, err
	}

	avgMag := meanAcrossChannels(mags)
	f, t := avgMag.Dims()

	bufferLen := secondsToFrames(o.BufferLengthSec, fs, p.H)
	if bufferLen < 1 {
		bufferLen = 1
	}
	distance := secondsToFrames(o.SimilarityDistanceSec, fs, p.H)
	cutoffBin := cutoffBinCeil(o.CutoffFrequency, fs, p.W)
	originalLen := signal.Frames()

	ringAvg := mat.NewDense(f, bufferLen, nil)
	ringCh := make([]*mat.Dense, len(signal))
	for ch := range ringCh {
		ringCh[ch] = mat.NewDense(f, bufferLen, nil)
	}

	halfMask := make([]*mat.Dense, len(signal))
	for ch := range halfMask {
		halfMask[ch] = mat.NewDense(f, t, nil)
	}

	indicesPerFrame := make([][]int, t)

	warm := bufferLen - 1
	if warm > t {
		warm = t
	}
	for j := 0; j < warm; j++ {
		ringAvg.SetCol(j, colOf(avgMag, j))
		for ch := range ringCh {
			ringCh[ch].SetCol(j, colOf(mags[ch], j))
		}
		// Output at these frames is defined to be zero (spec §4.9.5): the
		// ring buffer hasn't filled yet, so halfMask stays zero here.
	}

	for j := warm; j < t; j++ {
		slot := j % bufferLen
		ringAvg.SetCol(slot, colOf(avgMag, j))
		for ch := range ringCh {
			ringCh[ch].SetCol(slot, colOf(mags[ch], j))
		}

		idx := onlineSimilarIndices(ringAvg, slot, o.SimilarityThreshold, distance, o.SimilarityNumber)
		indicesPerFrame[j] = idx

		for ch := range ringCh {
			slotCol := colOf(ringCh[ch], slot)
			col := make([]float64, f)
			vals := make([]float64, 0, len(idx))
			for row := 0; row < f; row++ {
				vals = vals[:0]
				for _, b := range idx {
					vals = append(vals, ringCh[ch].At(row, b))
				}
				orig := slotCol[row]
				var rep float64
				if len(vals) == 0 {
					rep = orig
				} else {
					rep = mask.Median(vals)
				}
				if rep > orig {
					rep = orig
				}
				m := (rep + mask.Eps) / (orig + mask.Eps)
				if row >= 1 && row <= cutoffBin {
					m = 1
				}
				col[row] = m
			}
			halfMask[ch].SetCol(j, col)
		}
	}

	background := make(Signal, len(signal))
	for ch := range background {
		full := stft.MirrorMask(halfMask[ch], p.W)
		masked := make(stft.Frame, p.W)
		for w := 0; w < p.W; w++ {
			masked[w] = make([]complex128, t)
			row := full.RawRowView(w)
			src := frames[ch][w]
			for col := 0; col < t; col++ {
				masked[w][col] = src[col] * complex(row[col], 0)
			}
		}
		out := stft.Synthesize(masked, p, originalLen)
		if err := checkFinite(out); err != nil {
			return Result{}, err
		}
		background[ch] = out
	}

	return Result{Background: background, SimilarityIndices: indicesPerFrame}, nil
}

// onlineSimilarIndices computes the cosine similarity between ring
// buffer column slot and every column of ring (including itself), then
// applies the same constrained local-maxima rule SIM uses offline.
func onlineSimilarIndices(ring *mat.Dense, slot int, threshold float64, distance, number int) []int {
	_, b := ring.Dims()
	slotVec := colOf(ring, slot)
	slotNorm := floats.Norm(slotVec, 2)

	sim := make([]float64, b)
	for col := 0; col < b; col++ {
		v := colOf(ring, col)
		norm := floats.Norm(v, 2)
		denom := slotNorm * norm
		if denom == 0 {
			continue
		}
		sim[col] = floats.Dot(slotVec, v) / denom
	}
	_, idx := structure.LocalMaxima(sim, threshold, distance, number)
	return idx
}
