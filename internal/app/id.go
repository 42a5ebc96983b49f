package app

import "github.com/google/uuid"

// newID produces a unique identifier.
// Isolated here so the ID strategy can evolve independently.
func newID() string {
	return uuid.NewString()
}
