// Package neural provides the feed-forward brain that drives critters.
package neural

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch reports an input vector or weight tensor whose dimensions
// do not line up with the brain's layer topology.
var ErrShapeMismatch = errors.New("neural: shape mismatch")

// Brain is an ultra-simplified feed-forward network: an ordered sequence of
// linear transforms, each followed by an elementwise activation. It carries no
// mutable state beyond its weights; there is no training and no gradients.
type Brain struct {
	acts   []Activation
	coefs  []*mat.Dense    // coefs[i]: widths[i] x widths[i+1]
	biases []*mat.VecDense // biases[i]: widths[i+1]
	widths []int           // layer widths, len = len(coefs)+1
}

// New builds a brain from explicit weight tensors. Shapes are validated once
// here so Infer can skip the checks on the hot path. One activation is
// required per transform, and each coefficient matrix's output width must
// match the next matrix's input width.
func New(acts []Activation, coefs []*mat.Dense, biases []*mat.VecDense) (*Brain, error) {
	if len(coefs) == 0 {
		return nil, fmt.Errorf("%w: brain needs at least one layer transform", ErrShapeMismatch)
	}
	if len(acts) != len(coefs) || len(biases) != len(coefs) {
		return nil, fmt.Errorf("%w: %d activations, %d coefficient matrices, %d bias vectors",
			ErrShapeMismatch, len(acts), len(coefs), len(biases))
	}

	widths := make([]int, len(coefs)+1)
	for i, m := range coefs {
		rows, cols := m.Dims()
		if i == 0 {
			widths[0] = rows
		} else if rows != widths[i] {
			return nil, fmt.Errorf("%w: layer %d expects input width %d, previous layer outputs %d",
				ErrShapeMismatch, i, rows, widths[i])
		}
		if biases[i].Len() != cols {
			return nil, fmt.Errorf("%w: layer %d bias has length %d, want %d",
				ErrShapeMismatch, i, biases[i].Len(), cols)
		}
		widths[i+1] = cols
	}

	return &Brain{acts: acts, coefs: coefs, biases: biases, widths: widths}, nil
}

// Random creates a brain with coefficients and biases drawn uniformly from
// [0,1). widths lists every layer width including input and output, so
// len(widths) must be len(acts)+1. Generation-0 genomes start here.
func Random(rng *rand.Rand, acts []Activation, widths []int) (*Brain, error) {
	if len(widths) < 2 {
		return nil, fmt.Errorf("%w: need at least input and output widths, got %d", ErrShapeMismatch, len(widths))
	}
	if len(acts) != len(widths)-1 {
		return nil, fmt.Errorf("%w: %d activations for %d layer transforms", ErrShapeMismatch, len(acts), len(widths)-1)
	}
	for i, w := range widths {
		if w < 1 {
			return nil, fmt.Errorf("%w: layer %d has width %d", ErrShapeMismatch, i, w)
		}
	}

	coefs := make([]*mat.Dense, len(widths)-1)
	biases := make([]*mat.VecDense, len(widths)-1)
	for i := 0; i < len(widths)-1; i++ {
		in, out := widths[i], widths[i+1]
		data := make([]float64, in*out)
		for j := range data {
			data[j] = rng.Float64()
		}
		coefs[i] = mat.NewDense(in, out, data)

		bias := make([]float64, out)
		for j := range bias {
			bias[j] = rng.Float64()
		}
		biases[i] = mat.NewVecDense(out, bias)
	}

	return New(acts, coefs, biases)
}

// Infer forward-propagates a single feature vector through the network and
// returns the final layer's activation.
func (b *Brain) Infer(x []float64) ([]float64, error) {
	if len(x) != b.widths[0] {
		return nil, fmt.Errorf("%w: input width %d, brain expects %d", ErrShapeMismatch, len(x), b.widths[0])
	}

	activity := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for i, m := range b.coefs {
		next := mat.NewVecDense(b.widths[i+1], nil)
		next.MulVec(m.T(), activity)
		next.AddVec(next, b.biases[i])
		for j := 0; j < next.Len(); j++ {
			next.SetVec(j, b.acts[i].Fn(next.AtVec(j)))
		}
		activity = next
	}

	out := make([]float64, activity.Len())
	for j := range out {
		out[j] = activity.AtVec(j)
	}
	return out, nil
}

// InferBatch runs Infer on each row independently and returns the outputs
// concatenated flat. Batching is a convenience; rows share no computation.
func (b *Brain) InferBatch(rows [][]float64) ([]float64, error) {
	out := make([]float64, 0, len(rows)*b.OutputWidth())
	for i, row := range rows {
		y, err := b.Infer(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, y...)
	}
	return out, nil
}

// InputWidth returns the expected input vector width.
func (b *Brain) InputWidth() int { return b.widths[0] }

// OutputWidth returns the output vector width.
func (b *Brain) OutputWidth() int { return b.widths[len(b.widths)-1] }

// LayerCount returns the conceptual layer count including input and output.
func (b *Brain) LayerCount() int { return len(b.coefs) + 1 }

// Widths returns a copy of the layer widths, input through output.
func (b *Brain) Widths() []int {
	return append([]int(nil), b.widths...)
}

// SameTopology reports whether two brains share layer widths and activations,
// making them compatible for crossover.
func (b *Brain) SameTopology(other *Brain) bool {
	if len(b.widths) != len(other.widths) {
		return false
	}
	for i, w := range b.widths {
		if other.widths[i] != w {
			return false
		}
	}
	for i, a := range b.acts {
		if other.acts[i].Name != a.Name {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the brain.
func (b *Brain) Clone() *Brain {
	coefs := make([]*mat.Dense, len(b.coefs))
	biases := make([]*mat.VecDense, len(b.biases))
	for i := range b.coefs {
		coefs[i] = mat.DenseCopyOf(b.coefs[i])
		biases[i] = mat.VecDenseCopyOf(b.biases[i])
	}
	acts := append([]Activation(nil), b.acts...)
	return &Brain{acts: acts, coefs: coefs, biases: biases, widths: append([]int(nil), b.widths...)}
}

// Blend produces a new brain whose every coefficient and bias is the linear
// blend primary*(1-r) + secondary*r. r=0.5 is the arithmetic mean; r=0
// reproduces the primary parent and r=1 the secondary. The parents must share
// topology; activations are inherited from the primary.
func Blend(primary, secondary *Brain, r float64) (*Brain, error) {
	if !primary.SameTopology(secondary) {
		return nil, fmt.Errorf("%w: cannot blend brains with different topologies", ErrShapeMismatch)
	}

	coefs := make([]*mat.Dense, len(primary.coefs))
	biases := make([]*mat.VecDense, len(primary.biases))
	for i := range primary.coefs {
		m := mat.NewDense(primary.widths[i], primary.widths[i+1], nil)
		m.Apply(func(row, col int, v float64) float64 {
			return v*(1-r) + secondary.coefs[i].At(row, col)*r
		}, primary.coefs[i])
		coefs[i] = m

		v := mat.NewVecDense(primary.widths[i+1], nil)
		for j := 0; j < v.Len(); j++ {
			v.SetVec(j, primary.biases[i].AtVec(j)*(1-r)+secondary.biases[i].AtVec(j)*r)
		}
		biases[i] = v
	}

	acts := append([]Activation(nil), primary.acts...)
	return &Brain{acts: acts, coefs: coefs, biases: biases, widths: append([]int(nil), primary.widths...)}, nil
}

// MutateLayer perturbs exactly one (tensor kind, layer) pair in place: it
// picks uniformly between the coefficient and bias lists, picks one layer
// within it, and replaces that tensor elementwise with draws uniform in
// [v-|v|*rate, v+|v|*rate]. Bounding the mutation to a single pair bounds
// per-generation drift.
func (b *Brain) MutateLayer(rng *rand.Rand, rate float64) {
	layer := rng.Intn(len(b.coefs))
	if rng.Intn(2) == 0 {
		m := b.coefs[layer]
		m.Apply(func(row, col int, v float64) float64 {
			return perturb(rng, v, rate)
		}, m)
	} else {
		v := b.biases[layer]
		for j := 0; j < v.Len(); j++ {
			v.SetVec(j, perturb(rng, v.AtVec(j), rate))
		}
	}
}

// perturb draws uniformly from [v-|v|*rate, v+|v|*rate]. The bound uses |v|
// so the interval stays centered on v for negative values too.
func perturb(rng *rand.Rand, v, rate float64) float64 {
	span := v * rate
	if span < 0 {
		span = -span
	}
	return v - span + rng.Float64()*2*span
}
