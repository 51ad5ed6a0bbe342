// Package components defines ECS components for the demo world.
package components

import "github.com/Jwely/mlgen2/critter"

// Position is an entity's world position.
type Position struct {
	X, Y float64
}

// Plant marks an inert energy source. Plants are spawned with fixed energy
// and just sit there until grazed.
type Plant struct {
	Energy float64
	Eaten  bool
}

// Body links an entity to the critter it embodies.
type Body struct {
	Critter *critter.Critter
}
