package entity

import (
	"fmt"

	"github.com/angler/sim/internal/content"
)

// ComponentType names one kind of component payload.
type ComponentType uint8

const (
	ComponentCoord ComponentType = iota
	ComponentPosition
	ComponentDoor
	ComponentDoorClosingFinished
	ComponentHealth
	ComponentSprite
	ComponentOpacity
	ComponentSolid
	ComponentCollider
	ComponentNPC
	ComponentPlayer
	ComponentDoorOpener
	ComponentBumpAttack
	ComponentAttackable

	numComponentTypes
)

var componentNames = [numComponentTypes]string{
	ComponentCoord:               "coord",
	ComponentPosition:            "position",
	ComponentDoor:                "door",
	ComponentDoorClosingFinished: "door_closing_finished",
	ComponentHealth:              "health",
	ComponentSprite:              "sprite",
	ComponentOpacity:             "opacity",
	ComponentSolid:               "solid",
	ComponentCollider:            "collider",
	ComponentNPC:                 "npc",
	ComponentPlayer:              "player",
	ComponentDoorOpener:          "door_opener",
	ComponentBumpAttack:          "bump_attack",
	ComponentAttackable:          "attackable",
}

func (c ComponentType) String() string {
	if c < numComponentTypes {
		return componentNames[c]
	}
	return fmt.Sprintf("component(%d)", uint8(c))
}

// Value is a component payload. The set of implementations is closed.
type Value interface {
	Type() ComponentType
	isValue()
}

// Coord is a signed tile coordinate.
type Coord struct {
	X, Y int32
}

func (c Coord) Add(o Coord) Coord { return Coord{X: c.X + o.X, Y: c.Y + o.Y} }

// Vec returns the coordinate as a render position.
func (c Coord) Vec() Vec2 { return Vec2{X: float64(c.X), Y: float64(c.Y)} }

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Vec2 is a continuous render position measured in tiles.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) String() string       { return fmt.Sprintf("(%.3f,%.3f)", v.X, v.Y) }

type Position struct{ Vec2 }
type Door struct{ content.DoorInfo }
type Health struct{ content.HealthInfo }
type Sprite struct{ content.TileSprite }
type Opacity float64

type DoorClosingFinished struct{}
type Solid struct{}
type Collider struct{}
type NPC struct{}
type Player struct{}
type DoorOpener struct{}
type BumpAttack struct{}
type Attackable struct{}

func (Coord) Type() ComponentType               { return ComponentCoord }
func (Position) Type() ComponentType            { return ComponentPosition }
func (Door) Type() ComponentType                { return ComponentDoor }
func (DoorClosingFinished) Type() ComponentType { return ComponentDoorClosingFinished }
func (Health) Type() ComponentType              { return ComponentHealth }
func (Sprite) Type() ComponentType              { return ComponentSprite }
func (Opacity) Type() ComponentType             { return ComponentOpacity }
func (Solid) Type() ComponentType               { return ComponentSolid }
func (Collider) Type() ComponentType            { return ComponentCollider }
func (NPC) Type() ComponentType                 { return ComponentNPC }
func (Player) Type() ComponentType              { return ComponentPlayer }
func (DoorOpener) Type() ComponentType          { return ComponentDoorOpener }
func (BumpAttack) Type() ComponentType          { return ComponentBumpAttack }
func (Attackable) Type() ComponentType          { return ComponentAttackable }

func (Coord) isValue()               {}
func (Position) isValue()            {}
func (Door) isValue()                {}
func (DoorClosingFinished) isValue() {}
func (Health) isValue()              {}
func (Sprite) isValue()              {}
func (Opacity) isValue()             {}
func (Solid) isValue()               {}
func (Collider) isValue()            {}
func (NPC) isValue()                 {}
func (Player) isValue()              {}
func (DoorOpener) isValue()          {}
func (BumpAttack) isValue()          {}
func (Attackable) isValue()          {}

// tagValue returns the payload for a marker component type, or nil if the
// type carries data.
func tagValue(t ComponentType) Value {
	switch t {
	case ComponentDoorClosingFinished:
		return DoorClosingFinished{}
	case ComponentSolid:
		return Solid{}
	case ComponentCollider:
		return Collider{}
	case ComponentNPC:
		return NPC{}
	case ComponentPlayer:
		return Player{}
	case ComponentDoorOpener:
		return DoorOpener{}
	case ComponentBumpAttack:
		return BumpAttack{}
	case ComponentAttackable:
		return Attackable{}
	}
	return nil
}
