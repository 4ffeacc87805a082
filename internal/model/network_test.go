package model

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

func TestLoadAndPredict(t *testing.T) {
	n, err := Load(filepath.Join("testdata", "tiny.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tiny", n.Name)
	assert.Equal(t, 2, n.InputWidth())

	// hidden = relu([1*1 + 2*0.5, 1*-1 + 2*2 + 0.5]) = [2, 3.5]
	got, err := n.Predict([]float64{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, sigmoid(2-3.5), got, 1e-12)

	// relu clamps both hidden units to zero
	got, err = n.Predict([]float64{0, -10})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestParseJSON(t *testing.T) {
	doc := `{"name":"lin","inputs":1,"layers":[{"activation":"linear","weights":[[2]],"bias":[1]}]}`
	n, err := Parse([]byte(doc))
	require.NoError(t, err)

	got, err := n.Predict([]float64{3})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestPredictInputShape(t *testing.T) {
	n, err := Load(filepath.Join("testdata", "tiny.yaml"))
	require.NoError(t, err)
	_, err = n.Predict([]float64{1, 2, 3})
	require.ErrorIs(t, err, ErrInputShape)
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"no inputs":        `layers: [{activation: linear, weights: [[1]], bias: [0]}]`,
		"no layers":        `inputs: 1`,
		"bad activation":   `{inputs: 1, layers: [{activation: softmax, weights: [[1]], bias: [0]}]}`,
		"row count":        `{inputs: 2, layers: [{activation: linear, weights: [[1]], bias: [0]}]}`,
		"ragged row":       `{inputs: 2, layers: [{activation: linear, weights: [[1], [1, 2]], bias: [0]}]}`,
		"empty bias":       `{inputs: 1, layers: [{activation: linear, weights: [[]], bias: []}]}`,
		"two outputs":      `{inputs: 1, layers: [{activation: linear, weights: [[1, 2]], bias: [0, 0]}]}`,
		"not a document":   `[1, 2, 3]`,
		"chained mismatch": `{inputs: 1, layers: [{activation: relu, weights: [[1, 1]], bias: [0, 0]}, {activation: sigmoid, weights: [[1]], bias: [0]}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}
