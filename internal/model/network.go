// Package model evaluates the pre-trained feed-forward classifier. Weights
// are exported from the training run into a YAML (or JSON) document and
// checked for shape consistency when loaded.
package model

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInputShape = errors.New("input shape mismatch")

type Activation string

const (
	Linear  Activation = "linear"
	ReLU    Activation = "relu"
	Sigmoid Activation = "sigmoid"
	Tanh    Activation = "tanh"
)

// Layer is a dense layer. Weights has one row per input and one column per
// unit, matching the kernel layout of the exporting framework.
type Layer struct {
	Activation Activation  `yaml:"activation" json:"activation"`
	Weights    [][]float64 `yaml:"weights" json:"weights"`
	Bias       []float64   `yaml:"bias" json:"bias"`
}

type Network struct {
	Name   string  `yaml:"name" json:"name"`
	Inputs int     `yaml:"inputs" json:"inputs"`
	Layers []Layer `yaml:"layers" json:"layers"`
}

func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	n, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return n, nil
}

func Parse(data []byte) (*Network, error) {
	var n Network
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *Network) validate() error {
	if n.Inputs <= 0 {
		return errors.New("inputs must be positive")
	}
	if len(n.Layers) == 0 {
		return errors.New("no layers")
	}

	width := n.Inputs
	for i, l := range n.Layers {
		switch l.Activation {
		case Linear, ReLU, Sigmoid, Tanh:
		default:
			return fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}
		if len(l.Weights) != width {
			return fmt.Errorf("layer %d: %d weight rows, want %d", i, len(l.Weights), width)
		}
		units := len(l.Bias)
		if units == 0 {
			return fmt.Errorf("layer %d: empty bias", i)
		}
		for r, row := range l.Weights {
			if len(row) != units {
				return fmt.Errorf("layer %d row %d: %d columns, want %d", i, r, len(row), units)
			}
		}
		width = units
	}

	if width != 1 {
		return fmt.Errorf("output layer has %d units, want 1", width)
	}
	return nil
}

// InputWidth is the number of features the first layer expects.
func (n *Network) InputWidth() int {
	return n.Inputs
}

// Predict runs the forward pass and returns the single output unit.
func (n *Network) Predict(x []float64) (float64, error) {
	if len(x) != n.Inputs {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrInputShape, len(x), n.Inputs)
	}

	out := x
	for _, l := range n.Layers {
		out = l.forward(out)
	}
	return out[0], nil
}

func (l Layer) forward(in []float64) []float64 {
	out := make([]float64, len(l.Bias))
	copy(out, l.Bias)
	for i, v := range in {
		for j, w := range l.Weights[i] {
			out[j] += v * w
		}
	}
	for j := range out {
		out[j] = l.Activation.apply(out[j])
	}
	return out
}

func (a Activation) apply(v float64) float64 {
	switch a {
	case ReLU:
		return math.Max(0, v)
	case Sigmoid:
		return 1 / (1 + math.Exp(-v))
	case Tanh:
		return math.Tanh(v)
	default:
		return v
	}
}
