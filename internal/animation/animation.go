package animation

import (
	"fmt"
	"time"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/entity"
)

// Status reports whether an animation needs further ticks.
type Status uint8

const (
	Running Status = iota
	Finished
)

func (s Status) String() string {
	if s == Finished {
		return "finished"
	}
	return "running"
}

// AnimatedChange is a change emitted by an animation. Checked changes must be
// adjudicated again before they are applied; unchecked ones follow from an
// action that was already approved and are applied directly.
type AnimatedChange struct {
	Change  entity.Change
	Checked bool
}

func Checked(c entity.Change) AnimatedChange   { return AnimatedChange{Change: c, Checked: true} }
func Unchecked(c entity.Change) AnimatedChange { return AnimatedChange{Change: c} }

// Animation is the live state of a timed descriptor. The variants are
// *Slide, *Sprites and *Bump. Advance mutates the animation in place and
// appends whatever it emits to out.
type Animation interface {
	EntityID() ecs.EntityID
	Advance(dt time.Duration, out []AnimatedChange) ([]AnimatedChange, Status)
	isAnimation()
}

// Advance steps a by dt. It is the single entry point the scheduler uses.
func Advance(a Animation, dt time.Duration, out []AnimatedChange) ([]AnimatedChange, Status) {
	if a == nil {
		panic("animation: advance of nil animation")
	}
	if dt < 0 {
		panic(fmt.Sprintf("animation: negative time delta %s", dt))
	}
	return a.Advance(dt, out)
}

// durationRatio divides in whole nanoseconds, which int64 holds for
// roughly 292 years, before converting to float.
func durationRatio(a, b time.Duration) float64 {
	if b <= 0 {
		panic(fmt.Sprintf("animation: non-positive duration %s", b))
	}
	return float64(a.Nanoseconds()) / float64(b.Nanoseconds())
}

// Slide moves the render position from Base to Base+Path.
// Progress is derived from Elapsed so it reaches exactly 1.
type Slide struct {
	ID       ecs.EntityID
	Base     entity.Vec2
	Path     entity.Vec2
	Progress float64
	Elapsed  time.Duration
	Duration time.Duration
}

func (s *Slide) EntityID() ecs.EntityID { return s.ID }
func (*Slide) isAnimation()             {}

func (s *Slide) Advance(dt time.Duration, out []AnimatedChange) ([]AnimatedChange, Status) {
	s.Elapsed += dt
	if s.Elapsed > s.Duration {
		s.Elapsed = s.Duration
	}
	s.Progress = durationRatio(s.Elapsed, s.Duration)

	pos := s.Base.Add(s.Path.Scale(s.Progress))
	out = append(out, Unchecked(entity.InsertPosition(s.ID, pos)))

	if s.Progress < 1 {
		return out, Running
	}
	return out, Finished
}

// Sprites steps through Frames, holding each for its own duration.
// Remaining is the time left on Frames[Index].
type Sprites struct {
	ID        ecs.EntityID
	Frames    content.SpriteAnimation
	Then      entity.Change
	Index     int
	Remaining time.Duration
}

func (s *Sprites) EntityID() ecs.EntityID { return s.ID }
func (*Sprites) isAnimation()             {}

// Advance consumes whole frames from a large dt so a slow tick skips frames
// instead of falling behind.
func (s *Sprites) Advance(dt time.Duration, out []AnimatedChange) ([]AnimatedChange, Status) {
	if dt < s.Remaining {
		s.Remaining -= dt
		return out, Running
	}

	rest := dt - s.Remaining
	s.Index++
	for {
		if s.Index >= len(s.Frames) {
			out = append(out, Checked(s.Then))
			return out, Finished
		}
		frame := s.Frames[s.Index]
		frameDuration := frame.Duration()
		if rest < frameDuration {
			s.Remaining = frameDuration - rest
			out = append(out, Unchecked(entity.InsertSprite(s.ID, frame.Sprite)))
			return out, Running
		}
		rest -= frameDuration
		s.Index++
	}
}

// Bump lunges from Base along Path and returns, peaking at half time.
// Path is already scaled to the travelled fraction. Mid is proposed once,
// on the first step that reaches the peak.
type Bump struct {
	ID       ecs.EntityID
	Base     entity.Vec2
	Path     entity.Vec2
	Progress float64
	Elapsed  time.Duration
	Duration time.Duration
	Mid      *entity.Change

	midFired bool
}

func (b *Bump) EntityID() ecs.EntityID { return b.ID }
func (*Bump) isAnimation()             {}

// MidFired reports whether the turning-point change has been emitted.
func (b *Bump) MidFired() bool { return b.midFired }

func (b *Bump) Advance(dt time.Duration, out []AnimatedChange) ([]AnimatedChange, Status) {
	b.Elapsed += dt
	if b.Elapsed > b.Duration {
		b.Elapsed = b.Duration
	}
	b.Progress = durationRatio(b.Elapsed, b.Duration)

	reach := 2 * b.Progress
	if b.Progress > 0.5 {
		reach = 2 * (1 - b.Progress)
	}
	out = append(out, Unchecked(entity.InsertPosition(b.ID, b.Base.Add(b.Path.Scale(reach)))))

	if !b.midFired && b.Progress >= 0.5 {
		b.midFired = true
		if b.Mid != nil {
			out = append(out, Checked(*b.Mid))
		}
	}

	if b.Progress < 1 {
		return out, Running
	}
	return out, Finished
}
