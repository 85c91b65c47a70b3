package structure

import "sort"

// LocalMaxima implements spec §4.6's constrained local-maxima picking:
// scan v left to right, keep index i where v[i] >= threshold and v[i]
// is strictly greater than every neighbor within distance d on both
// sides (clipped to the vector's bounds), then keep the top min(cap,
// #candidates) by value, descending. Ties in the descending sort
// preserve scan order, so the first maximum encountered wins, per spec.
//
// The returned indices are not re-sorted into time order.
func LocalMaxima(v []float64, threshold float64, distance, cap int) (values []float64, indices []int) {
	var candidates []int
	for i := range v {
		if v[i] < threshold {
			continue
		}
		lo := i - distance
		if lo < 0 {
			lo = 0
		}
		hi := i + distance
		if hi >= len(v) {
			hi = len(v) - 1
		}
		isPeak := true
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			if v[j] >= v[i] {
				isPeak = false
				break
			}
		}
		if isPeak {
			candidates = append(candidates, i)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return v[candidates[a]] > v[candidates[b]]
	})

	k := cap
	if k > len(candidates) {
		k = len(candidates)
	}
	if k < 0 {
		k = 0
	}
	top := candidates[:k]

	values = make([]float64, k)
	indices = make([]int, k)
	for i, idx := range top {
		values[i] = v[idx]
		indices[i] = idx
	}
	return values, indices
}
