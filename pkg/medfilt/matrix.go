package medfilt

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RunningMedianDense runs the 1-D pipeline independently down every column
// of m, treating each column as one input sequence. A single filter is
// reused (reset) across columns, so the only allocations are the result
// matrix and two scratch slices.
func RunningMedianDense(m mat.Matrix, window int, tapering Tapering, policy NaNPolicy) (*mat.Dense, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: unknown NaN policy %q", ErrInvalidArgument, policy)
	}
	rows, cols := m.Dims()
	if cols < 1 {
		return nil, fmt.Errorf("%w: matrix must have at least one column", ErrInvalidArgument)
	}
	outLen, err := OutputLength(rows, window, tapering)
	if err != nil {
		return nil, err
	}
	f, err := NewMedianFilter(ClampWindow(window, rows, tapering))
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(outLen, cols, nil)
	col := make([]float64, rows)
	res := make([]float64, outLen)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		f.Reset()
		if err := runInto(f, res, col, tapering, policy); err != nil {
			return nil, fmt.Errorf("column %d: %w", j, err)
		}
		out.SetCol(j, res)
	}
	return out, nil
}
