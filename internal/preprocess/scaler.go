// Package preprocess implements the z-score normalization fitted on the
// training dataset at start-up.
package preprocess

import (
	"errors"
	"fmt"
	"math"
)

var ErrShape = errors.New("shape mismatch")

// StandardScaler removes the column mean and divides by the population
// standard deviation. It is immutable once fitted.
type StandardScaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

func Fit(columns []string, matrix [][]float64) (*StandardScaler, error) {
	if len(matrix) == 0 {
		return nil, errors.New("fit scaler: no samples")
	}
	width := len(columns)
	if width == 0 {
		return nil, errors.New("fit scaler: no columns")
	}

	mean := make([]float64, width)
	for i, row := range matrix {
		if len(row) != width {
			return nil, fmt.Errorf("fit scaler: %w: row %d has %d values, want %d", ErrShape, i, len(row), width)
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(matrix))
	for j := range mean {
		mean[j] /= n
	}

	scale := make([]float64, width)
	for _, row := range matrix {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		// constant column: leave values centred but unscaled
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	cols := make([]string, width)
	copy(cols, columns)
	return &StandardScaler{Columns: cols, Mean: mean, Scale: scale}, nil
}

func (s *StandardScaler) Width() int {
	return len(s.Mean)
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("transform: %w: got %d values, want %d", ErrShape, len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
