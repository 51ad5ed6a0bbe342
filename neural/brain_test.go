package neural

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b, err := Random(rng, []Activation{Tanh, Identity}, []int{4, 6, 2})
	if err != nil {
		t.Fatalf("Random returned error: %v", err)
	}

	if b.InputWidth() != 4 {
		t.Errorf("InputWidth = %d, want 4", b.InputWidth())
	}
	if b.OutputWidth() != 2 {
		t.Errorf("OutputWidth = %d, want 2", b.OutputWidth())
	}
	if b.LayerCount() != 3 {
		t.Errorf("LayerCount = %d, want 3", b.LayerCount())
	}
}

func TestRandomInvalidTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		acts   []Activation
		widths []int
	}{
		{"too few widths", []Activation{Tanh}, []int{4}},
		{"activation count mismatch", []Activation{Tanh, Tanh}, []int{4, 2}},
		{"zero width layer", []Activation{Tanh}, []int{4, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Random(rng, tt.acts, tt.widths); !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("Random error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestNewValidatesChaining(t *testing.T) {
	// Layer 0 outputs width 3, layer 1 expects width 2: must fail.
	coefs := []*mat.Dense{
		mat.NewDense(4, 3, nil),
		mat.NewDense(2, 1, nil),
	}
	biases := []*mat.VecDense{
		mat.NewVecDense(3, nil),
		mat.NewVecDense(1, nil),
	}
	if _, err := New([]Activation{Tanh, Identity}, coefs, biases); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("New error = %v, want ErrShapeMismatch", err)
	}
}

func TestInferZeroInput(t *testing.T) {
	// All-zero weights and biases with identity activation must map an
	// all-zero input to an all-zero output of the correct width.
	coefs := []*mat.Dense{mat.NewDense(3, 2, nil)}
	biases := []*mat.VecDense{mat.NewVecDense(2, nil)}
	b, err := New([]Activation{Identity}, coefs, biases)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	out, err := b.Infer([]float64{0, 0, 0})
	if err != nil {
		t.Fatalf("Infer returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("output width = %d, want 2", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestInferKnownValues(t *testing.T) {
	// 2-in, 1-out identity layer: y = x0*w0 + x1*w1 + bias.
	coefs := []*mat.Dense{mat.NewDense(2, 1, []float64{0.5, 2})}
	biases := []*mat.VecDense{mat.NewVecDense(1, []float64{1})}
	b, err := New([]Activation{Identity}, coefs, biases)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	out, err := b.Infer([]float64{2, 3})
	if err != nil {
		t.Fatalf("Infer returned error: %v", err)
	}
	want := 2*0.5 + 3*2 + 1
	if math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("out[0] = %v, want %v", out[0], want)
	}
}

func TestInferWrongWidth(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b, _ := Random(rng, []Activation{Tanh}, []int{4, 2})

	if _, err := b.Infer([]float64{1, 2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Infer error = %v, want ErrShapeMismatch", err)
	}
}

func TestInferDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b, _ := Random(rng, []Activation{Tanh, Sigmoid}, []int{5, 8, 3})

	x := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	out1, err := b.Infer(x)
	if err != nil {
		t.Fatalf("Infer returned error: %v", err)
	}
	out2, _ := b.Infer(x)

	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatal("Infer is not deterministic")
		}
	}
}

func TestInferBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b, _ := Random(rng, []Activation{Tanh}, []int{2, 3})

	rows := [][]float64{{0.1, 0.2}, {0.3, 0.4}}
	flat, err := b.InferBatch(rows)
	if err != nil {
		t.Fatalf("InferBatch returned error: %v", err)
	}
	if len(flat) != 6 {
		t.Fatalf("batch output length = %d, want 6", len(flat))
	}

	// Batch output is the per-row outputs concatenated in order.
	first, _ := b.Infer(rows[0])
	second, _ := b.Infer(rows[1])
	for i := range first {
		if flat[i] != first[i] {
			t.Errorf("flat[%d] = %v, want %v", i, flat[i], first[i])
		}
	}
	for i := range second {
		if flat[3+i] != second[i] {
			t.Errorf("flat[%d] = %v, want %v", 3+i, flat[3+i], second[i])
		}
	}
}

func TestClone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b, _ := Random(rng, []Activation{Tanh}, []int{2, 2})

	clone := b.Clone()
	if !b.SameTopology(clone) {
		t.Fatal("clone has different topology")
	}

	// Modifying the clone must not affect the original.
	clone.coefs[0].Set(0, 0, 999)
	if b.coefs[0].At(0, 0) == 999 {
		t.Error("clone shares storage with original")
	}
}

func TestBlendEndpoints(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p, _ := Random(rng, []Activation{Tanh}, []int{3, 2})
	s, _ := Random(rng, []Activation{Tanh}, []int{3, 2})

	// r=0 reproduces the primary exactly, r=1 the secondary.
	atP, _ := Blend(p, s, 0)
	atS, _ := Blend(p, s, 1)

	if !mat.Equal(atP.coefs[0], p.coefs[0]) || !mat.Equal(atP.biases[0], p.biases[0]) {
		t.Error("Blend(p, s, 0) != primary")
	}
	if !mat.Equal(atS.coefs[0], s.coefs[0]) || !mat.Equal(atS.biases[0], s.biases[0]) {
		t.Error("Blend(p, s, 1) != secondary")
	}
}

func TestBlendIdenticalParents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p, _ := Random(rng, []Activation{Tanh}, []int{3, 2})
	s := p.Clone()

	// Mean-blending two identical genomes is a no-op.
	child, err := Blend(p, s, 0.5)
	if err != nil {
		t.Fatalf("Blend returned error: %v", err)
	}
	if !mat.EqualApprox(child.coefs[0], p.coefs[0], 1e-12) {
		t.Error("Blend(p, p, 0.5) changed coefficients")
	}
	if !mat.EqualApprox(child.biases[0], p.biases[0], 1e-12) {
		t.Error("Blend(p, p, 0.5) changed biases")
	}
}

func TestBlendTopologyMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p, _ := Random(rng, []Activation{Tanh}, []int{3, 2})
	s, _ := Random(rng, []Activation{Tanh}, []int{4, 2})

	if _, err := Blend(p, s, 0.5); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Blend error = %v, want ErrShapeMismatch", err)
	}
}

func TestMutateLayerZeroRate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b, _ := Random(rng, []Activation{Tanh, Identity}, []int{3, 4, 2})
	orig := b.Clone()

	b.MutateLayer(rng, 0)

	for i := range b.coefs {
		if !mat.Equal(b.coefs[i], orig.coefs[i]) {
			t.Errorf("rate-0 mutation changed coefs[%d]", i)
		}
		if !mat.Equal(b.biases[i], orig.biases[i]) {
			t.Errorf("rate-0 mutation changed biases[%d]", i)
		}
	}
}

func TestMutateLayerTouchesSingleTensor(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b, _ := Random(rng, []Activation{Tanh, Identity}, []int{3, 4, 2})
	orig := b.Clone()

	b.MutateLayer(rng, 0.5)

	changed := 0
	for i := range b.coefs {
		if !mat.Equal(b.coefs[i], orig.coefs[i]) {
			changed++
		}
		if !mat.Equal(b.biases[i], orig.biases[i]) {
			changed++
		}
	}
	if changed != 1 {
		t.Errorf("mutation changed %d tensors, want exactly 1", changed)
	}
}

func TestGetActivation(t *testing.T) {
	a, err := GetActivation("relu")
	if err != nil {
		t.Fatalf("GetActivation returned error: %v", err)
	}
	if a.Fn(-1) != 0 || a.Fn(2) != 2 {
		t.Error("relu activation misbehaves")
	}

	if _, err := GetActivation("softmax"); err == nil {
		t.Error("expected error for unknown activation")
	}
}

func BenchmarkInfer(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	brain, _ := Random(rng, []Activation{Tanh, Identity}, []int{8, 16, 3})

	x := make([]float64, 8)
	for i := range x {
		x[i] = 0.5
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		brain.Infer(x)
	}
}
