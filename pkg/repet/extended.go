package repet

// Extended implements REPET-EXTENDED (spec §4.9.2): the mixture is cut
// into overlapping segments, ORIGINAL runs once per segment across all
// channels, and the segment backgrounds are stitched back together with
// a triangular crossfade over the overlap region so segment boundaries
// don't click.
func Extended(signal Signal, fs float64, opts ...Option) (Result, error) {
	o := resolve(opts)
	n := signal.Frames()

	segLen := int(o.SegmentLengthSec * fs)
	segStep := int(o.SegmentStepSec * fs)
	if segLen <= 0 || segStep <= 0 {
		return Original(signal, fs, opts...)
	}
	overlap := segLen - segStep
	if overlap < 0 {
		overlap = 0
	}

	bounds := segmentBounds(n, segLen, segStep)

	background := make(Signal, len(signal))
	for ch := range background {
		background[ch] = make(Channel, n)
	}
	segmentPeriods := make([]int, len(bounds))

	leftRamp, rightRamp := triangleRamps(overlap)

	for i, b := range bounds {
		sub := make(Signal, len(signal))
		for ch, channel := range signal {
			sub[ch] = channel[b.start:b.end]
		}
		res, err := Original(sub, fs, opts...)
		if err != nil {
			return Result{}, err
		}
		segmentPeriods[i] = res.Period

		for ch := range background {
			segBG := res.Background[ch]
			if i == 0 {
				copy(background[ch][b.start:b.end], segBG)
				continue
			}
			ov := overlap
			if ov > len(segBG) {
				ov = len(segBG)
			}
			for k := 0; k < ov; k++ {
				idx := b.start + k
				background[ch][idx] = background[ch][idx]*rightRamp[k] + segBG[k]*leftRamp[k]
			}
			for k := ov; k < len(segBG); k++ {
				background[ch][b.start+k] = segBG[k]
			}
		}
	}

	return Result{Background: background, SegmentPeriods: segmentPeriods}, nil
}

type segmentBound struct{ start, end int }

// segmentBounds slices [0,n) into segLen-sample windows every segStep
// samples. If n is too short for even one step beyond the first
// segment, the whole signal is one segment. Otherwise the final segment
// absorbs whatever tail remains past the last full step, per spec
// §4.9.2's "last segment may run long".
func segmentBounds(n, segLen, segStep int) []segmentBound {
	if n < segLen+segStep {
		return []segmentBound{{0, n}}
	}
	var bounds []segmentBound
	start := 0
	for start+segLen+segStep <= n {
		bounds = append(bounds, segmentBound{start, start + segLen})
		start += segStep
	}
	bounds = append(bounds, segmentBound{start, n})
	return bounds
}

// triangleRamps builds the complementary linear ramps used to crossfade
// a segment boundary: leftRamp rises 0→1 across the new segment's
// leading overlap, rightRamp falls 1→0 across the accumulated buffer's
// trailing overlap, and leftRamp[i]+rightRamp[i] == 1 everywhere so the
// crossfade preserves unit gain.
func triangleRamps(overlap int) (left, right []float64) {
	left = make([]float64, overlap)
	right = make([]float64, overlap)
	for i := 0; i < overlap; i++ {
		frac := 1.0
		if overlap > 1 {
			frac = float64(i) / float64(overlap-1)
		}
		left[i] = frac
		right[i] = 1 - frac
	}
	return left, right
}
