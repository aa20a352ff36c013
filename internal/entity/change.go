package entity

import (
	"fmt"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
)

// Op distinguishes inserting a component from removing one.
type Op uint8

const (
	OpInsert Op = iota
	OpRemove
)

// Change is one proposed or committed mutation of a single component.
// Inserts carry a Value; removes carry only the component type.
type Change struct {
	Op    Op
	ID    ecs.EntityID
	Value Value
	Kind  ComponentType
}

// Type returns the component type the change targets.
func (c Change) Type() ComponentType {
	if c.Op == OpInsert {
		return c.Value.Type()
	}
	return c.Kind
}

func (c Change) String() string {
	if c.Op == OpInsert {
		return fmt.Sprintf("insert %s %s=%v", c.ID, c.Value.Type(), c.Value)
	}
	return fmt.Sprintf("remove %s %s", c.ID, c.Kind)
}

func Insert(id ecs.EntityID, v Value) Change {
	if v == nil {
		panic("entity: insert with nil value")
	}
	return Change{Op: OpInsert, ID: id, Value: v, Kind: v.Type()}
}

func Remove(id ecs.EntityID, kind ComponentType) Change {
	return Change{Op: OpRemove, ID: id, Kind: kind}
}

func InsertCoord(id ecs.EntityID, c Coord) Change {
	return Insert(id, c)
}

func InsertPosition(id ecs.EntityID, v Vec2) Change {
	return Insert(id, Position{v})
}

func InsertDoor(id ecs.EntityID, d content.DoorInfo) Change {
	return Insert(id, Door{d})
}

func InsertDoorClosingFinished(id ecs.EntityID) Change {
	return Insert(id, DoorClosingFinished{})
}

func InsertHealth(id ecs.EntityID, h content.HealthInfo) Change {
	return Insert(id, Health{h})
}

func InsertSprite(id ecs.EntityID, s content.TileSprite) Change {
	return Insert(id, Sprite{s})
}

func InsertOpacity(id ecs.EntityID, o float64) Change {
	return Insert(id, Opacity(o))
}

// InsertTag inserts a marker component such as ComponentSolid.
func InsertTag(id ecs.EntityID, kind ComponentType) Change {
	v := tagValue(kind)
	if v == nil {
		panic(fmt.Sprintf("entity: %s is not a marker component", kind))
	}
	return Insert(id, v)
}
