// Package animation holds reaction descriptors and the time-stepped
// animations compiled from them.
package animation

import (
	"time"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/entity"
)

// ChangeDesc is a deferred consequence emitted by the policy engine.
// The variants are ImmediateDesc, SlideDesc, SpritesDesc and BumpSlideDesc.
type ChangeDesc interface {
	// EntityID names the entity the descriptor animates.
	EntityID() ecs.EntityID
	isChangeDesc()
}

// ImmediateDesc applies a change with no delay.
type ImmediateDesc struct {
	Change entity.Change
}

// SlideDesc interpolates an entity's render position from From to To.
type SlideDesc struct {
	ID       ecs.EntityID
	From, To entity.Vec2
	Duration time.Duration
}

// SpritesDesc plays a sprite sequence and then proposes Then.
type SpritesDesc struct {
	ID     ecs.EntityID
	Frames content.SpriteAnimation
	Then   entity.Change
}

// BumpSlideDesc lunges Fraction of the way toward To and back, proposing
// Mid (if any) at the turning point.
type BumpSlideDesc struct {
	ID       ecs.EntityID
	From, To entity.Vec2
	Duration time.Duration
	Fraction float64
	Mid      *entity.Change
}

func (d ImmediateDesc) EntityID() ecs.EntityID { return d.Change.ID }
func (d SlideDesc) EntityID() ecs.EntityID     { return d.ID }
func (d SpritesDesc) EntityID() ecs.EntityID   { return d.ID }
func (d BumpSlideDesc) EntityID() ecs.EntityID { return d.ID }

func (ImmediateDesc) isChangeDesc() {}
func (SlideDesc) isChangeDesc()     {}
func (SpritesDesc) isChangeDesc()   {}
func (BumpSlideDesc) isChangeDesc() {}

func Immediate(change entity.Change) ChangeDesc {
	return ImmediateDesc{Change: change}
}

func SlideBetween(id ecs.EntityID, from, to entity.Vec2, d time.Duration) ChangeDesc {
	return SlideDesc{ID: id, From: from, To: to, Duration: d}
}

func PlaySprites(id ecs.EntityID, frames content.SpriteAnimation, then entity.Change) ChangeDesc {
	return SpritesDesc{ID: id, Frames: frames, Then: then}
}

func BumpSlide(id ecs.EntityID, from, to entity.Vec2, d time.Duration, fraction float64, mid *entity.Change) ChangeDesc {
	return BumpSlideDesc{ID: id, From: from, To: to, Duration: d, Fraction: fraction, Mid: mid}
}
