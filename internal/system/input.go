package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/angler/sim/internal/core/system"
	"github.com/angler/sim/internal/entity"
)

// ChangeSource produces proposed changes, one batch per tick.
type ChangeSource interface {
	Tick(n uint64)
	Drain() []entity.Change
}

// Proposer adjudicates and applies a proposed change.
type Proposer interface {
	Propose(change entity.Change) bool
}

// InputSystem lets the level script act, then feeds what it proposed through
// the reaction scheduler. At most maxPerTick proposals are handled per tick;
// the rest wait for the next one. Phase 0 (Input).
type InputSystem struct {
	source     ChangeSource
	proposer   Proposer
	maxPerTick int
	log        *zap.Logger

	tick    uint64
	backlog []entity.Change
}

// NewInputSystem creates the input system. maxPerTick <= 0 means unlimited.
func NewInputSystem(source ChangeSource, proposer Proposer, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		source:     source,
		proposer:   proposer,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.tick++
	s.source.Tick(s.tick)
	s.backlog = append(s.backlog, s.source.Drain()...)

	n := len(s.backlog)
	if s.maxPerTick > 0 && n > s.maxPerTick {
		n = s.maxPerTick
	}
	for i := 0; i < n; i++ {
		change := s.backlog[i]
		if !s.proposer.Propose(change) {
			s.log.Debug("proposal rejected", zap.Stringer("change", change))
		}
	}
	clear(s.backlog[:n])
	s.backlog = s.backlog[n:]
	if len(s.backlog) > 0 {
		s.log.Debug("input backlog", zap.Int("pending", len(s.backlog)))
	}
}

// Backlog returns the number of proposals waiting for a later tick.
func (s *InputSystem) Backlog() int { return len(s.backlog) }
