// Package policy adjudicates a single proposed change against a read-only
// view of the world.
package policy

import (
	"time"

	"github.com/angler/sim/internal/animation"
	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/entity"
)

// Snapshot is the read-only world view consulted during adjudication.
// It must not change while Check runs.
type Snapshot interface {
	Cell(c entity.Coord) (*entity.Cell, bool)
	Coord(id ecs.EntityID) (entity.Coord, bool)
	Has(id ecs.EntityID, kind entity.ComponentType) bool
	Door(id ecs.EntityID) (content.DoorInfo, bool)
	Health(id ecs.EntityID) (content.HealthInfo, bool)
}

// Rules holds the tunable constants of the movement and attack rules.
type Rules struct {
	SlideDuration time.Duration
	BumpDuration  time.Duration
	BumpFraction  float64
	BumpDamage    int32
}

func DefaultRules() Rules {
	return Rules{
		SlideDuration: 50 * time.Millisecond,
		BumpDuration:  100 * time.Millisecond,
		BumpFraction:  0.49,
		BumpDamage:    1,
	}
}

// Verdict is the outcome of adjudicating one change. A rejected change must
// not be applied, but its reactions and deletions still must be.
type Verdict struct {
	Accept    bool
	Reactions []animation.ChangeDesc
	Deletions []ecs.EntityID
}

// Engine is the change policy. It holds only configuration; Check never
// mutates anything and returns all effects as data.
type Engine struct {
	rules Rules
	doors *content.DoorTable
}

func NewEngine(rules Rules, doors *content.DoorTable) *Engine {
	if doors == nil {
		doors = content.DefaultDoorTable()
	}
	return &Engine{rules: rules, doors: doors}
}

func (e *Engine) Rules() Rules { return e.rules }

// Check decides whether change may be applied and what it sets in motion.
// Changes without a dedicated rule are accepted with no reactions.
func (e *Engine) Check(change entity.Change, snap Snapshot) Verdict {
	if change.Op != entity.OpInsert {
		return accept()
	}
	id := change.ID
	switch v := change.Value.(type) {
	case entity.Coord:
		return e.checkMove(id, v, snap)
	case entity.Door:
		return e.checkDoor(id, v.DoorInfo, snap)
	case entity.DoorClosingFinished:
		return e.checkDoorClosed(id, snap)
	case entity.Health:
		if v.Dead() {
			return Verdict{Accept: false, Deletions: []ecs.EntityID{id}}
		}
	}
	return accept()
}

func accept() Verdict { return Verdict{Accept: true} }
func reject() Verdict { return Verdict{Accept: false} }

func (v *Verdict) react(desc animation.ChangeDesc) {
	v.Reactions = append(v.Reactions, desc)
}

// checkMove handles a coord insert. Order matters: doors are opened before
// collision is considered, and attacks are considered before sliding.
func (e *Engine) checkMove(id ecs.EntityID, dest entity.Coord, snap Snapshot) Verdict {
	cell, ok := snap.Cell(dest)
	if !ok {
		return reject()
	}

	if snap.Has(id, entity.ComponentDoorOpener) {
		if doorID, ok := cell.FirstDoor(); ok {
			if door, ok := snap.Door(doorID); ok && door.State == content.DoorClosed {
				v := reject()
				v.react(animation.Immediate(entity.InsertDoor(doorID, door.WithState(content.DoorOpen))))
				return v
			}
		}
	}

	if snap.Has(id, entity.ComponentCollider) && cell.SolidCount() > 0 {
		return reject()
	}

	current, ok := snap.Coord(id)
	if !ok || current == dest {
		return accept()
	}

	if snap.Has(id, entity.ComponentNPC) && cell.NPCCount() > 0 {
		return reject()
	}

	if snap.Has(id, entity.ComponentBumpAttack) {
		if targetID, ok := cell.FirstAttackable(); ok {
			var mid *entity.Change
			if health, ok := snap.Health(targetID); ok {
				hit := entity.InsertHealth(targetID, health.Reduce(e.rules.BumpDamage))
				mid = &hit
			}
			v := reject()
			v.react(animation.BumpSlide(id, current.Vec(), dest.Vec(),
				e.rules.BumpDuration, e.rules.BumpFraction, mid))
			return v
		}
	}

	v := accept()
	v.react(animation.SlideBetween(id, current.Vec(), dest.Vec(), e.rules.SlideDuration))
	return v
}

func (e *Engine) checkDoor(id ecs.EntityID, door content.DoorInfo, snap Snapshot) Verdict {
	sprites := e.doors.Get(door.Type)

	if door.State == content.DoorOpen {
		v := accept()
		v.react(animation.Immediate(entity.Remove(id, entity.ComponentSolid)))
		v.react(animation.Immediate(entity.InsertOpacity(id, 0)))
		if sprites != nil {
			v.react(animation.PlaySprites(id, sprites.OpenAnimation,
				entity.InsertSprite(id, sprites.StateSprite(content.DoorOpen))))
		}
		return v
	}

	if coord, ok := snap.Coord(id); ok {
		if cell, ok := snap.Cell(coord); ok {
			if cell.NPCCount() > 0 || cell.PlayerCount() > 0 {
				return reject()
			}
		}
	}
	v := accept()
	v.react(animation.Immediate(entity.InsertTag(id, entity.ComponentSolid)))
	var frames content.SpriteAnimation
	if sprites != nil {
		frames = sprites.CloseAnimation
	}
	v.react(animation.PlaySprites(id, frames, entity.InsertDoorClosingFinished(id)))
	return v
}

func (e *Engine) checkDoorClosed(id ecs.EntityID, snap Snapshot) Verdict {
	v := accept()
	v.react(animation.Immediate(entity.InsertOpacity(id, 1)))
	if door, ok := snap.Door(id); ok {
		if sprites := e.doors.Get(door.Type); sprites != nil {
			v.react(animation.Immediate(entity.InsertSprite(id, sprites.StateSprite(content.DoorClosed))))
		}
	}
	return v
}
