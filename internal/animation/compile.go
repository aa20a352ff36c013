package animation

import (
	"fmt"

	"github.com/angler/sim/internal/entity"
)

// Compile turns a descriptor into a live animation plus the changes that
// take effect as it starts. Immediate descriptors, and sprite sequences with
// no frames, produce no animation; their change is returned as Checked.
func Compile(desc ChangeDesc) (Animation, []AnimatedChange) {
	switch d := desc.(type) {
	case ImmediateDesc:
		return nil, []AnimatedChange{Checked(d.Change)}
	case SlideDesc:
		if d.Duration <= 0 {
			panic(fmt.Sprintf("animation: slide for %s with duration %s", d.ID, d.Duration))
		}
		return &Slide{
			ID:       d.ID,
			Base:     d.From,
			Path:     d.To.Sub(d.From),
			Duration: d.Duration,
		}, nil
	case SpritesDesc:
		if len(d.Frames) == 0 {
			return nil, []AnimatedChange{Checked(d.Then)}
		}
		first := d.Frames[0]
		sprites := &Sprites{
			ID:        d.ID,
			Frames:    d.Frames,
			Then:      d.Then,
			Remaining: first.Duration(),
		}
		return sprites, []AnimatedChange{Unchecked(entity.InsertSprite(d.ID, first.Sprite))}
	case BumpSlideDesc:
		if d.Duration <= 0 {
			panic(fmt.Sprintf("animation: bump for %s with duration %s", d.ID, d.Duration))
		}
		return &Bump{
			ID:       d.ID,
			Base:     d.From,
			Path:     d.To.Sub(d.From).Scale(d.Fraction),
			Duration: d.Duration,
			Mid:      d.Mid,
		}, nil
	}
	panic(fmt.Sprintf("animation: unknown descriptor %T", desc))
}
