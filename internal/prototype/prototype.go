// Package prototype builds the initial component sets of spawnable entities.
package prototype

import (
	"fmt"
	"sort"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/entity"
)

// Prototype appends the components of a fresh entity at coord to changes.
type Prototype func(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change

var prototypes = map[string]Prototype{
	"angler":      Angler,
	"crab":        Crab,
	"snail":       Snail,
	"inner_wall":  InnerWall,
	"outer_wall":  OuterWall,
	"inner_floor": InnerFloor,
	"outer_floor": OuterFloor,
	"inner_water": InnerWater,
	"inner_door":  InnerDoor,
	"outer_door":  OuterDoor,
	"window":      Window,
	"light":       Light,
}

// Lookup returns the prototype registered under name.
func Lookup(name string) (Prototype, bool) {
	p, ok := prototypes[name]
	return p, ok
}

// Names returns all prototype names, sorted.
func Names() []string {
	names := make([]string, 0, len(prototypes))
	for name := range prototypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spawn creates an entity from the named prototype and commits its
// components directly. Spawning bypasses the policy engine.
func Spawn(store *entity.Store, name string, coord entity.Coord) (ecs.EntityID, error) {
	p, ok := prototypes[name]
	if !ok {
		return 0, fmt.Errorf("unknown prototype %q", name)
	}
	if _, ok := store.Cell(coord); !ok {
		return 0, fmt.Errorf("spawn %s at %s: outside the world", name, coord)
	}
	id := store.World().CreateEntity()
	store.CommitAll(p(nil, id, coord))
	return id, nil
}

func placed(changes []entity.Change, id ecs.EntityID, coord entity.Coord, sprite content.TileSprite) []entity.Change {
	return append(changes,
		entity.InsertCoord(id, coord),
		entity.InsertPosition(id, coord.Vec()),
		entity.InsertSprite(id, sprite),
	)
}

func Angler(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	changes = placed(changes, id, coord, content.SpriteAngler)
	return append(changes,
		entity.InsertTag(id, entity.ComponentCollider),
		entity.InsertTag(id, entity.ComponentPlayer),
		entity.InsertTag(id, entity.ComponentDoorOpener),
		entity.InsertTag(id, entity.ComponentBumpAttack),
		entity.InsertTag(id, entity.ComponentAttackable),
	)
}

func creature(changes []entity.Change, id ecs.EntityID, coord entity.Coord, sprite content.TileSprite, hp int32) []entity.Change {
	changes = placed(changes, id, coord, sprite)
	return append(changes,
		entity.InsertTag(id, entity.ComponentCollider),
		entity.InsertTag(id, entity.ComponentNPC),
		entity.InsertTag(id, entity.ComponentBumpAttack),
		entity.InsertTag(id, entity.ComponentAttackable),
		entity.InsertHealth(id, content.FullHealth(hp)),
	)
}

func Crab(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return creature(changes, id, coord, content.SpriteCrab, 8)
}

func Snail(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return creature(changes, id, coord, content.SpriteSnail, 3)
}

func wall(changes []entity.Change, id ecs.EntityID, coord entity.Coord, sprite content.TileSprite) []entity.Change {
	changes = placed(changes, id, coord, sprite)
	return append(changes,
		entity.InsertTag(id, entity.ComponentSolid),
		entity.InsertOpacity(id, 1),
	)
}

func InnerWall(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return wall(changes, id, coord, content.SpriteInnerWall)
}

func OuterWall(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return wall(changes, id, coord, content.SpriteOuterWall)
}

func InnerFloor(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return placed(changes, id, coord, content.SpriteInnerFloor)
}

func OuterFloor(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return placed(changes, id, coord, content.SpriteOuterFloor)
}

func InnerWater(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return placed(changes, id, coord, content.SpriteInnerWater)
}

// Doors start closed, solid and opaque.
func door(changes []entity.Change, id ecs.EntityID, coord entity.Coord, typ content.DoorType, sprite content.TileSprite) []entity.Change {
	changes = placed(changes, id, coord, sprite)
	return append(changes,
		entity.InsertDoor(id, content.NewDoorInfo(typ, content.DoorClosed)),
		entity.InsertTag(id, entity.ComponentSolid),
		entity.InsertOpacity(id, 1),
	)
}

func InnerDoor(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return door(changes, id, coord, content.DoorInner, content.SpriteInnerDoor)
}

func OuterDoor(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return door(changes, id, coord, content.DoorOuter, content.SpriteOuterDoor)
}

// Window has negative opacity: it lets more light through than open floor.
func Window(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	changes = placed(changes, id, coord, content.SpriteWindow)
	return append(changes, entity.InsertOpacity(id, -1))
}

func Light(changes []entity.Change, id ecs.EntityID, coord entity.Coord) []entity.Change {
	return placed(changes, id, coord, content.SpriteLight)
}
