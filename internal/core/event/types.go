package event

import (
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/entity"
)

// ChangeCommitted is emitted for every change applied to the world, whether
// it was adjudicated or came from an animation frame. Presentation code only
// ever observes these.
type ChangeCommitted struct {
	Change entity.Change
}

// EntityDestroyed is emitted once cleanup has removed an entity.
type EntityDestroyed struct {
	EntityID ecs.EntityID
}
