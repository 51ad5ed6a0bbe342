package neural

import (
	"fmt"
	"math"
)

// Activation is a per-layer activation function applied elementwise.
type Activation struct {
	Name string
	Fn   func(x float64) float64
}

// Activations maps function names to activation functions, so config can
// select activations by name.
var Activations = map[string]Activation{
	"identity": Identity,
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"clamped":  Clamped,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (Activation, error) {
	if a, ok := Activations[name]; ok {
		return a, nil
	}
	return Activation{}, fmt.Errorf("unknown activation function: %s", name)
}

// Identity passes values through unchanged.
var Identity = Activation{"identity", func(x float64) float64 { return x }}

// Sigmoid is the logistic sigmoid.
var Sigmoid = Activation{"sigmoid", func(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}}

// Tanh is the hyperbolic tangent.
var Tanh = Activation{"tanh", math.Tanh}

// ReLU is the rectified linear unit.
var ReLU = Activation{"relu", func(x float64) float64 { return math.Max(0, x) }}

// Clamped clamps values to [-1, 1].
var Clamped = Activation{"clamped", func(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}}
