package critter

import "math/rand"

// Physique holds the physical movement parameters of a critter. Every field
// is an independently evolvable scalar; a physique is fixed for the critter's
// lifetime and only crossover/mutation between generations produces new ones.
type Physique struct {
	Mass        float64 `yaml:"mass"`          // governs energy expenditure
	MaxSpeed    float64 `yaml:"max_speed"`     // maximum absolute speed
	MaxAccel    float64 `yaml:"max_accel"`     // maximum positive speed change per step
	MaxBrake    float64 `yaml:"max_brake"`     // maximum negative speed change per step
	MaxTurnRate float64 `yaml:"max_turn_rate"` // maximum heading change per step
}

// physiqueField names one evolvable scalar and how to reach it. Keeping the
// schema as an explicit ordered list lets crossover and mutation treat the
// fields generically without reflection.
type physiqueField struct {
	name string
	addr func(*Physique) *float64
}

var physiqueFields = []physiqueField{
	{"mass", func(p *Physique) *float64 { return &p.Mass }},
	{"max_speed", func(p *Physique) *float64 { return &p.MaxSpeed }},
	{"max_accel", func(p *Physique) *float64 { return &p.MaxAccel }},
	{"max_brake", func(p *Physique) *float64 { return &p.MaxBrake }},
	{"max_turn_rate", func(p *Physique) *float64 { return &p.MaxTurnRate }},
}

// PhysiqueFieldNames returns the evolvable field names in schema order.
func PhysiqueFieldNames() []string {
	names := make([]string, len(physiqueFields))
	for i, f := range physiqueFields {
		names[i] = f.name
	}
	return names
}

// Blend returns a new physique whose every field is the linear blend
// p*(1-r) + other*r.
func (p Physique) Blend(other Physique, r float64) Physique {
	var out Physique
	for _, f := range physiqueFields {
		*f.addr(&out) = *f.addr(&p)*(1-r) + *f.addr(&other)*r
	}
	return out
}

// MutateField replaces one uniformly chosen field with a draw uniform in
// [v-|v|*rate, v+|v|*rate] and returns the mutated field's name. The bound
// uses |v| so the interval stays centered on v for negative values.
func (p *Physique) MutateField(rng *rand.Rand, rate float64) string {
	f := physiqueFields[rng.Intn(len(physiqueFields))]
	v := f.addr(p)
	span := *v * rate
	if span < 0 {
		span = -span
	}
	*v = *v - span + rng.Float64()*2*span
	return f.name
}

// RandomPhysique draws each field uniformly from [min, max] per the given
// bounds, for generation-0 critters.
func RandomPhysique(rng *rand.Rand, min, max Physique) Physique {
	var out Physique
	for _, f := range physiqueFields {
		lo, hi := *f.addr(&min), *f.addr(&max)
		*f.addr(&out) = lo + rng.Float64()*(hi-lo)
	}
	return out
}
