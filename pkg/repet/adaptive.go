package repet

import (
	"github.com/soundsep/repet-go/pkg/repet/mask"
	"github.com/soundsep/repet-go/pkg/repet/stft"
	"github.com/soundsep/repet-go/pkg/repet/structure"
)

// Adaptive implements REPET-ADAPTIVE (spec §4.9.3): a beat spectrogram
// tracks the dominant period frame by frame over a sliding analysis
// window, and ADAPTIVEMASK looks up each frame's repeating neighbors at
// that frame's own period instead of one global period.
func Adaptive(signal Signal, fs float64, opts ...Option) (Result, error) {
	o := resolve(opts)
	p := stft.NewParams(fs)
	if err := signal.validate(fs, p.W); err != nil {
		return Result{}, err
	}

	frames, mags, err := analyzeAll(signal, p)
	if err != nil {
		return Result{}, err
	}

	squared := squareMatrix(meanAcrossChannels(mags))
	segLen := secondsToFrames(o.SegmentLengthSec, fs, p.H)
	segStep := secondsToFrames(o.SegmentStepSec, fs, p.H)
	if segLen < 1 {
		segLen = 1
	}
	if segStep < 1 {
		segStep = 1
	}
	beatSpectrogram := structure.BeatSpectrogram(squared, segLen, segStep)

	pLo := secondsToFrames(o.PeriodRangeSec[0], fs, p.H)
	pHi := secondsToFrames(o.PeriodRangeSec[1], fs, p.H)
	periods, err := structure.Periods(beatSpectrogram, pLo, pHi)
	if err != nil {
		return Result{}, err
	}

	cutoffBin := cutoffBinRound(o.CutoffFrequency, fs, p.W)
	originalLen := signal.Frames()

	background, err := mapChannels(len(signal), o, func(ch int) (Channel, error) {
		half := mask.Adaptive(mags[ch], periods, o.FilterOrder)
		return applyMaskAndInvert(frames[ch], half, cutoffBin, p, originalLen)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Background: background, Periods: periods}, nil
}
