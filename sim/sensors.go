package sim

import (
	"math"

	"github.com/Jwely/mlgen2/critter"
)

var proximityLabels = []string{
	"food_dx",
	"food_dy",
	"food_dist",
	"self_speed",
	"self_heading_sin",
	"self_heading_cos",
}

// ProximitySensor extracts a feature vector from the nearest plant and the
// critter's own motion state. One instance is shared by every critter in the
// world, which is what lets them mate: the evolver requires parents to carry
// the same extractor by identity.
type ProximitySensor struct {
	world *World
}

// Labels names the features in order.
func (s *ProximitySensor) Labels() []string { return proximityLabels }

// Width is the feature vector width.
func (s *ProximitySensor) Width() int { return len(proximityLabels) }

// Sense builds the brain input for one critter. Offsets and distance are
// normalized by the world dimensions; with no plant left the food features
// read as "nothing anywhere", distance 1.
func (s *ProximitySensor) Sense(c *critter.Critter) []float64 {
	w := s.world
	loc := c.Location

	foodDX, foodDY, foodDist := 0.0, 0.0, 1.0
	if dx, dy, dist, ok := w.nearestPlant(loc.X, loc.Y); ok {
		diag := math.Hypot(w.cfg.World.Width, w.cfg.World.Height)
		foodDX = dx / w.cfg.World.Width
		foodDY = dy / w.cfg.World.Height
		foodDist = dist / diag
	}

	speed := 0.0
	if c.Physique.MaxSpeed > 0 {
		speed = loc.Speed / c.Physique.MaxSpeed
	}

	return []float64{
		foodDX,
		foodDY,
		foodDist,
		speed,
		math.Sin(loc.Heading),
		math.Cos(loc.Heading),
	}
}
