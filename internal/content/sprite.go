package content

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// TileSprite identifies one cell of the sprite sheet.
type TileSprite uint16

const (
	SpriteBlank TileSprite = iota
	SpriteAngler
	SpriteCrab
	SpriteSnail
	SpriteInnerWall
	SpriteOuterWall
	SpriteInnerFloor
	SpriteOuterFloor
	SpriteInnerWater
	SpriteInnerDoor
	SpriteInnerDoorOpening1
	SpriteInnerDoorOpening2
	SpriteInnerDoorOpen
	SpriteOuterDoor
	SpriteOuterDoorOpening1
	SpriteOuterDoorOpening2
	SpriteOuterDoorOpen
	SpriteWindow
	SpriteLight

	numSprites
)

var spriteNames = [numSprites]string{
	SpriteBlank:             "blank",
	SpriteAngler:            "angler",
	SpriteCrab:              "crab",
	SpriteSnail:             "snail",
	SpriteInnerWall:         "inner_wall",
	SpriteOuterWall:         "outer_wall",
	SpriteInnerFloor:        "inner_floor",
	SpriteOuterFloor:        "outer_floor",
	SpriteInnerWater:        "inner_water",
	SpriteInnerDoor:         "inner_door",
	SpriteInnerDoorOpening1: "inner_door_opening_1",
	SpriteInnerDoorOpening2: "inner_door_opening_2",
	SpriteInnerDoorOpen:     "inner_door_open",
	SpriteOuterDoor:         "outer_door",
	SpriteOuterDoorOpening1: "outer_door_opening_1",
	SpriteOuterDoorOpening2: "outer_door_opening_2",
	SpriteOuterDoorOpen:     "outer_door_open",
	SpriteWindow:            "window",
	SpriteLight:             "light",
}

func (s TileSprite) String() string {
	if s < numSprites {
		return spriteNames[s]
	}
	return fmt.Sprintf("sprite(%d)", uint16(s))
}

// ParseSprite looks a sprite up by its snake_case name.
func ParseSprite(name string) (TileSprite, error) {
	for i, n := range spriteNames {
		if n == name {
			return TileSprite(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sprite %q", name)
}

func (s *TileSprite) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseSprite(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

func (s TileSprite) MarshalYAML() (any, error) {
	return s.String(), nil
}

// SpriteFrame is one step of a sprite animation.
type SpriteFrame struct {
	Sprite TileSprite `yaml:"sprite"`
	Millis uint32     `yaml:"millis"`
}

func (f SpriteFrame) Duration() time.Duration {
	return time.Duration(f.Millis) * time.Millisecond
}

// SpriteAnimation is an ordered frame sequence played once.
type SpriteAnimation []SpriteFrame

// Total returns the summed duration of every frame.
func (a SpriteAnimation) Total() time.Duration {
	var d time.Duration
	for _, f := range a {
		d += f.Duration()
	}
	return d
}

// Reversed returns a copy of the animation with the frame order flipped.
func (a SpriteAnimation) Reversed() SpriteAnimation {
	out := make(SpriteAnimation, len(a))
	for i, f := range a {
		out[len(a)-1-i] = f
	}
	return out
}
