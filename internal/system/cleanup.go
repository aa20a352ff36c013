package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/core/event"
	coresys "github.com/angler/sim/internal/core/system"
)

// Forgetter drops per-entity state held outside the component stores.
type Forgetter interface {
	Forget(id ecs.EntityID)
}

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 3 (Cleanup).
type CleanupSystem struct {
	world  *ecs.World
	forget Forgetter
	bus    *event.Bus
	log    *zap.Logger
}

func NewCleanupSystem(world *ecs.World, forget Forgetter, bus *event.Bus, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, forget: forget, bus: bus, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, id := range s.world.FlushDestroyQueue() {
		if s.forget != nil {
			s.forget.Forget(id)
		}
		if s.bus != nil {
			event.Emit(s.bus, event.EntityDestroyed{EntityID: id})
		}
		s.log.Debug("entity destroyed", zap.Stringer("entity", id))
	}
}
