package mask

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestFixedMaskInUnitRangeBeforeOverride(t *testing.T) {
	f, tcols, period := 4, 20, 5
	data := make([]float64, f*tcols)
	for i := range data {
		data[i] = float64(1 + i%7)
	}
	s := mat.NewDense(f, tcols, data)

	m := Fixed(s, period)
	rows, cols := m.Dims()
	assert.Equal(t, f, rows)
	assert.Equal(t, tcols, cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			v := m.At(row, col)
			assert.False(t, math.IsNaN(v))
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0+1e-9)
		}
	}
}

func TestFixedMaskPerfectRepetitionIsAllOnes(t *testing.T) {
	f, period, reps := 3, 4, 5
	tcols := period * reps
	data := make([]float64, f*tcols)
	for row := 0; row < f; row++ {
		for col := 0; col < tcols; col++ {
			data[row*tcols+col] = float64(row+1) * float64(col%period+1)
		}
	}
	s := mat.NewDense(f, tcols, data)
	m := Fixed(s, period)

	for row := 0; row < f; row++ {
		for col := 0; col < tcols; col++ {
			assert.InDelta(t, 1.0, m.At(row, col), 1e-9)
		}
	}
}

func TestAdaptiveMaskShape(t *testing.T) {
	f, tcols := 3, 10
	data := make([]float64, f*tcols)
	for i := range data {
		data[i] = float64(i)
	}
	s := mat.NewDense(f, tcols, data)
	periods := make([]int, tcols)
	for i := range periods {
		periods[i] = 3
	}
	m := Adaptive(s, periods, 5)
	rows, cols := m.Dims()
	assert.Equal(t, f, rows)
	assert.Equal(t, tcols, cols)
}

func TestSimMaskUsesOnlyProvidedIndices(t *testing.T) {
	f, tcols := 2, 5
	s := mat.NewDense(f, tcols, []float64{
		1, 2, 3, 4, 5,
		10, 20, 30, 40, 50,
	})
	indices := [][]int{{}, {0}, {0, 1}, {}, {2}}
	m := Sim(s, indices)
	rows, cols := m.Dims()
	assert.Equal(t, f, rows)
	assert.Equal(t, tcols, cols)
	// frame with no indices falls back to the original column, mask == 1.
	assert.InDelta(t, 1.0, m.At(0, 0), 1e-9)
	assert.InDelta(t, 1.0, m.At(0, 3), 1e-9)
	// frames with indices use the median of only those columns:
	// frame 1 -> col 0 (1/2), frame 2 -> median(1, 2) = 1.5 (1.5/3),
	// frame 4 -> col 2 (3/5).
	assert.InDelta(t, 0.5, m.At(0, 1), 1e-9)
	assert.InDelta(t, 0.5, m.At(0, 2), 1e-9)
	assert.InDelta(t, 0.6, m.At(0, 4), 1e-9)
}
