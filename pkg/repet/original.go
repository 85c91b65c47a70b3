package repet

import (
	"gonum.org/v1/gonum/mat"

	"github.com/soundsep/repet-go/pkg/repet/mask"
	"github.com/soundsep/repet-go/pkg/repet/stft"
	"github.com/soundsep/repet-go/pkg/repet/structure"
)

// Original implements REPET-ORIGINAL (spec §4.9.1): a single global
// period is estimated from the channel-averaged beat spectrum, and the
// same fixed-period mask is applied to every channel.
func Original(signal Signal, fs float64, opts ...Option) (Result, error) {
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
	beatSpectrum := structure.BeatSpectrum(squared)
	beatSpectrumCol := mat.NewDense(len(beatSpectrum), 1, beatSpectrum)

	pLo := secondsToFrames(o.PeriodRangeSec[0], fs, p.H)
	pHi := secondsToFrames(o.PeriodRangeSec[1], fs, p.H)
	periods, err := structure.Periods(beatSpectrumCol, pLo, pHi)
	if err != nil {
		return Result{}, err
	}
	period := periods[0]

	cutoffBin := cutoffBinRound(o.CutoffFrequency, fs, p.W)
	originalLen := signal.Frames()

	background, err := mapChannels(len(signal), o, func(ch int) (Channel, error) {
		half := mask.Fixed(mags[ch], period)
		return applyMaskAndInvert(frames[ch], half, cutoffBin, p, originalLen)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Background: background, Period: period}, nil
}
