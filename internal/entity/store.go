package entity

import (
	"fmt"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
)

// Store holds every component this simulation knows about together with the
// spatial index derived from them. All mutation goes through Commit.
// Accessed only from the game loop goroutine, so there are no locks.
type Store struct {
	world   *ecs.World
	spatial *SpatialHash

	coord    *ecs.Store[Coord]
	position *ecs.Store[Vec2]
	door     *ecs.Store[content.DoorInfo]
	health   *ecs.Store[content.HealthInfo]
	sprite   *ecs.Store[content.TileSprite]
	opacity  *ecs.Store[float64]
	tags     [numComponentTypes]*ecs.TagStore
}

// NewStore creates the component stores and registers them with world so a
// destroyed entity disappears from all of them and from the spatial index.
func NewStore(world *ecs.World, width, height int32) *Store {
	s := &Store{
		world:    world,
		spatial:  NewSpatialHash(width, height),
		coord:    ecs.NewStore[Coord](),
		position: ecs.NewStore[Vec2](),
		door:     ecs.NewStore[content.DoorInfo](),
		health:   ecs.NewStore[content.HealthInfo](),
		sprite:   ecs.NewStore[content.TileSprite](),
		opacity:  ecs.NewStore[float64](),
	}
	// Spatial removal reads coord and tags, so it must run first.
	world.Registry().Register(spatialRemover{s})
	world.Registry().Register(s.coord)
	world.Registry().Register(s.position)
	world.Registry().Register(s.door)
	world.Registry().Register(s.health)
	world.Registry().Register(s.sprite)
	world.Registry().Register(s.opacity)
	for k := ComponentType(0); k < numComponentTypes; k++ {
		if tagValue(k) != nil {
			s.tags[k] = ecs.NewTagStore()
			world.Registry().Register(s.tags[k])
		}
	}
	return s
}

type spatialRemover struct{ s *Store }

func (r spatialRemover) Remove(id ecs.EntityID) {
	if c, ok := r.s.coord.Get(id); ok {
		r.s.spatial.leave(r.s, id, c)
	}
}

func (s *Store) World() *ecs.World          { return s.world }
func (s *Store) Spatial() *SpatialHash      { return s.spatial }
func (s *Store) Cell(c Coord) (*Cell, bool) { return s.spatial.Get(c) }

// Commit applies a change. Callers are responsible for having adjudicated it.
func (s *Store) Commit(ch Change) {
	s.spatial.update(s, ch)
	if ch.Op == OpRemove {
		s.remove(ch.ID, ch.Kind)
		return
	}
	id := ch.ID
	switch v := ch.Value.(type) {
	case Coord:
		s.coord.Set(id, v)
	case Position:
		s.position.Set(id, v.Vec2)
	case Door:
		s.door.Set(id, v.DoorInfo)
	case Health:
		s.health.Set(id, v.HealthInfo)
	case Sprite:
		s.sprite.Set(id, v.TileSprite)
	case Opacity:
		s.opacity.Set(id, float64(v))
	default:
		tags := s.tags[v.Type()]
		if tags == nil {
			panic(fmt.Sprintf("entity: no store for %s", v.Type()))
		}
		tags.Tag(id)
	}
}

// CommitAll applies changes in order.
func (s *Store) CommitAll(changes []Change) {
	for _, ch := range changes {
		s.Commit(ch)
	}
}

func (s *Store) remove(id ecs.EntityID, kind ComponentType) {
	switch kind {
	case ComponentCoord:
		s.coord.Remove(id)
	case ComponentPosition:
		s.position.Remove(id)
	case ComponentDoor:
		s.door.Remove(id)
	case ComponentHealth:
		s.health.Remove(id)
	case ComponentSprite:
		s.sprite.Remove(id)
	case ComponentOpacity:
		s.opacity.Remove(id)
	default:
		if tags := s.tags[kind]; tags != nil {
			tags.Remove(id)
		}
	}
}

// Has reports whether id currently has a component of the given type.
func (s *Store) Has(id ecs.EntityID, kind ComponentType) bool {
	switch kind {
	case ComponentCoord:
		return s.coord.Has(id)
	case ComponentPosition:
		return s.position.Has(id)
	case ComponentDoor:
		return s.door.Has(id)
	case ComponentHealth:
		return s.health.Has(id)
	case ComponentSprite:
		return s.sprite.Has(id)
	case ComponentOpacity:
		return s.opacity.Has(id)
	}
	if kind < numComponentTypes && s.tags[kind] != nil {
		return s.tags[kind].Has(id)
	}
	return false
}

func (s *Store) Coord(id ecs.EntityID) (Coord, bool)               { return s.coord.Get(id) }
func (s *Store) Position(id ecs.EntityID) (Vec2, bool)             { return s.position.Get(id) }
func (s *Store) Door(id ecs.EntityID) (content.DoorInfo, bool)     { return s.door.Get(id) }
func (s *Store) Health(id ecs.EntityID) (content.HealthInfo, bool) { return s.health.Get(id) }
func (s *Store) Sprite(id ecs.EntityID) (content.TileSprite, bool) { return s.sprite.Get(id) }
func (s *Store) Opacity(id ecs.EntityID) (float64, bool)           { return s.opacity.Get(id) }

// EachHealthyNPC visits NPCs that carry a health component, in id order.
func (s *Store) EachHealthyNPC(fn func(ecs.EntityID, content.HealthInfo)) {
	ecs.Each2(s.health, s.tags[ComponentNPC], func(id ecs.EntityID, h content.HealthInfo, _ struct{}) {
		fn(id, h)
	})
}

// Tagged returns the ids carrying a marker component, in ascending order.
func (s *Store) Tagged(kind ComponentType) []ecs.EntityID {
	if kind >= numComponentTypes || s.tags[kind] == nil {
		return nil
	}
	return s.tags[kind].IDs()
}
