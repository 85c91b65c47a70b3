package structure

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Similarity computes the cosine similarity between the columns of a
// and the columns of b, per spec §4.5: L2-normalize columns of each
// matrix, then compute Aᵀ·B with gonum's mat.Dense.Mul.
func Similarity(a, b *mat.Dense) *mat.Dense {
	na := normalizeColumns(a)
	nb := normalizeColumns(b)
	var out mat.Dense
	out.Mul(na.T(), nb)
	return &out
}

// SelfSimilarity is Similarity(a, a).
func SelfSimilarity(a *mat.Dense) *mat.Dense {
	return Similarity(a, a)
}

func normalizeColumns(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	v := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			v[i] = m.At(i, j)
		}
		norm := floats.Norm(v, 2)
		if norm == 0 {
			norm = 1
		}
		normalized := make([]float64, r)
		for i := 0; i < r; i++ {
			normalized[i] = v[i] / norm
		}
		out.SetCol(j, normalized)
	}
	return out
}
