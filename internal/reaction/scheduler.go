// Package reaction runs the adjudicate-apply-animate loop: proposed changes
// pass through the policy engine, accepted ones are committed, and the
// reactions they trigger are applied or animated over later ticks.
package reaction

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/angler/sim/internal/animation"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/core/event"
	"github.com/angler/sim/internal/entity"
	"github.com/angler/sim/internal/policy"
)

// DefaultMaxChain bounds how many reactions deep a single proposal may go.
const DefaultMaxChain = 64

type Config struct {
	Store  *entity.Store
	Policy *policy.Engine
	// Bus receives a ChangeCommitted for every commit. Optional.
	Bus *event.Bus
	Log *zap.Logger
	// MaxChain of 0 means DefaultMaxChain.
	MaxChain int
}

// Stats counts what the scheduler has done since it was created.
type Stats struct {
	Proposed  uint64
	Accepted  uint64
	Rejected  uint64
	Committed uint64
	Deleted   uint64
	Dropped   uint64
}

type pending struct {
	change entity.Change
	depth  int
}

// Scheduler owns the live-animation set, at most one animation per entity.
// Accessed only from the game loop goroutine, so there are no locks.
type Scheduler struct {
	store    *entity.Store
	policy   *policy.Engine
	bus      *event.Bus
	log      *zap.Logger
	maxChain int

	live  []animation.Animation
	index map[ecs.EntityID]int
	queue []pending
	out   []animation.AnimatedChange
	stats Stats
}

func NewScheduler(cfg *Config) *Scheduler {
	if cfg.Store == nil || cfg.Policy == nil {
		panic("reaction: scheduler needs a store and a policy")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxChain := cfg.MaxChain
	if maxChain <= 0 {
		maxChain = DefaultMaxChain
	}
	return &Scheduler{
		store:    cfg.Store,
		policy:   cfg.Policy,
		bus:      cfg.Bus,
		log:      log,
		maxChain: maxChain,
		index:    make(map[ecs.EntityID]int, 64),
	}
}

// Propose adjudicates change and everything it sets off immediately.
// It reports whether change itself was accepted and committed.
func (s *Scheduler) Propose(change entity.Change) bool {
	s.queue = append(s.queue, pending{change: change})
	return s.drain()
}

// drain processes the work queue in FIFO order until it is empty and reports
// the verdict of the first item.
func (s *Scheduler) drain() bool {
	first := true
	rootAccepted := false
	for len(s.queue) > 0 {
		item := s.queue[0]
		s.queue[0] = pending{}
		s.queue = s.queue[1:]

		if item.depth > s.maxChain {
			s.stats.Dropped++
			s.log.Error("reaction chain too deep, dropping change",
				zap.Stringer("change", item.change),
				zap.Int("depth", item.depth),
				zap.Int("max_chain", s.maxChain))
			continue
		}

		s.stats.Proposed++
		v := s.policy.Check(item.change, s.store)
		if v.Accept {
			s.stats.Accepted++
			s.commit(item.change)
		} else {
			s.stats.Rejected++
			s.log.Debug("change rejected", zap.Stringer("change", item.change))
		}
		if first {
			rootAccepted = v.Accept
			first = false
		}

		for _, id := range v.Deletions {
			s.stats.Deleted++
			s.store.World().MarkForDestruction(id)
			s.log.Debug("entity queued for deletion", zap.Stringer("entity", id))
		}
		for _, desc := range v.Reactions {
			s.schedule(desc, item.depth+1)
		}
	}
	s.queue = s.queue[:0]
	return rootAccepted
}

// schedule compiles desc and either queues, applies or animates the result.
func (s *Scheduler) schedule(desc animation.ChangeDesc, depth int) {
	anim, start := animation.Compile(desc)
	if anim != nil {
		s.register(anim)
	}
	for _, c := range start {
		if c.Checked {
			s.queue = append(s.queue, pending{change: c.Change, depth: depth})
		} else {
			s.commit(c.Change)
		}
	}
}

// register makes anim the entity's live animation, discarding any previous one.
func (s *Scheduler) register(anim animation.Animation) {
	id := anim.EntityID()
	if i, ok := s.index[id]; ok {
		s.live[i] = anim
		return
	}
	s.index[id] = len(s.live)
	s.live = append(s.live, anim)
}

func (s *Scheduler) commit(change entity.Change) {
	s.store.Commit(change)
	s.stats.Committed++
	if s.bus != nil {
		event.Emit(s.bus, event.ChangeCommitted{Change: change})
	}
}

// Tick advances every live animation by the same dt, then applies what they
// emitted in order. Animations started while applying wait for the next tick.
func (s *Scheduler) Tick(dt time.Duration) {
	if len(s.live) == 0 {
		return
	}

	s.out = s.out[:0]
	kept := s.live[:0]
	for _, a := range s.live {
		var status animation.Status
		s.out, status = animation.Advance(a, dt, s.out)
		if status == animation.Running {
			kept = append(kept, a)
		}
	}
	clear(s.live[len(kept):])
	s.live = kept
	s.reindex()

	emitted := append([]animation.AnimatedChange(nil), s.out...)
	for _, c := range emitted {
		if c.Checked {
			s.Propose(c.Change)
		} else {
			s.commit(c.Change)
		}
	}
}

func (s *Scheduler) reindex() {
	clear(s.index)
	for i, a := range s.live {
		s.index[a.EntityID()] = i
	}
}

// Forget drops the live animation of id, if any. Called when an entity is
// destroyed so nothing keeps animating it.
func (s *Scheduler) Forget(id ecs.EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.live = slices.Delete(s.live, i, i+1)
	s.reindex()
}

// Animation returns the live animation of id.
func (s *Scheduler) Animation(id ecs.EntityID) (animation.Animation, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.live[i], true
}

// Live returns the number of running animations.
func (s *Scheduler) Live() int { return len(s.live) }

func (s *Scheduler) Stats() Stats { return s.stats }
