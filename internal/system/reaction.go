package system

import (
	"time"

	coresys "github.com/angler/sim/internal/core/system"
)

// Animator advances live animations by one tick.
type Animator interface {
	Tick(dt time.Duration)
}

// ReactionSystem advances every live animation and re-validates the changes
// they emit. Phase 2 (Update).
type ReactionSystem struct {
	animator Animator
}

func NewReactionSystem(animator Animator) *ReactionSystem {
	return &ReactionSystem{animator: animator}
}

func (s *ReactionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ReactionSystem) Update(dt time.Duration) {
	s.animator.Tick(dt)
}
