package physics

// State is the ball's contact state after a sub-step.
type State int

const (
	// FreeFall means no contact was found.
	FreeFall State = iota
	// Colliding means at least one contact received an impulse.
	Colliding
	// Resting means every contact was held by support forces.
	Resting
)

func (s State) String() string {
	switch s {
	case FreeFall:
		return "free-fall"
	case Colliding:
		return "colliding"
	case Resting:
		return "resting"
	default:
		return "unknown"
	}
}
