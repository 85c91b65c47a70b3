package repet

import (
	"github.com/soundsep/repet-go/pkg/repet/mask"
	"github.com/soundsep/repet-go/pkg/repet/stft"
	"github.com/soundsep/repet-go/pkg/repet/structure"
)

// Sim implements REPET-SIM (spec §4.9.4): instead of periodicity,
// self-similarity between frames of the channel-averaged spectrogram
// picks each frame's repeating neighbors directly, which tolerates
// non-periodic or intermittent repetition.
func Sim(signal Signal, fs float64, opts ...Option) (Result, error) {
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
	sim := structure.SelfSimilarity(avgMag)

	distance := secondsToFrames(o.SimilarityDistanceSec, fs, p.H)
	indices, err := structure.Indices(sim, o.SimilarityThreshold, distance, o.SimilarityNumber)
	if err != nil {
		return Result{}, err
	}

	// SIM uses the ceil((W-1)/fs) cutoff-bin formula rather than the
	// round(W/fs) formula ORIGINAL/EXTENDED/ADAPTIVE use; see
	// cutoffBinCeil and DESIGN.md.
	cutoffBin := cutoffBinCeil(o.CutoffFrequency, fs, p.W)
	originalLen := signal.Frames()

	background, err := mapChannels(len(signal), o, func(ch int) (Channel, error) {
		half := mask.Sim(mags[ch], indices)
		return applyMaskAndInvert(frames[ch], half, cutoffBin, p, originalLen)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Background: background, SimilarityIndices: indices}, nil
}
