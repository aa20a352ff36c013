package content

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DoorSprites defines how one door type looks and animates.
type DoorSprites struct {
	Type           DoorType        `yaml:"type"`
	ClosedSprite   TileSprite      `yaml:"closed_sprite"`
	OpenSprite     TileSprite      `yaml:"open_sprite"`
	OpenAnimation  SpriteAnimation `yaml:"open_animation"`
	CloseAnimation SpriteAnimation `yaml:"close_animation"`
}

// StateSprite returns the resting sprite for a door in the given state.
func (d *DoorSprites) StateSprite(state DoorState) TileSprite {
	if state == DoorOpen {
		return d.OpenSprite
	}
	return d.ClosedSprite
}

// DoorTable provides door sprites and animations keyed by door type.
type DoorTable struct {
	doors map[DoorType]*DoorSprites
}

// LoadDoorTable loads a door table YAML file.
func LoadDoorTable(path string) (*DoorTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read door table %s: %w", path, err)
	}
	t, err := ParseDoorTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse door table %s: %w", path, err)
	}
	return t, nil
}

// ParseDoorTable decodes a YAML list of door entries.
func ParseDoorTable(raw []byte) (*DoorTable, error) {
	var entries []DoorSprites
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	t := &DoorTable{
		doors: make(map[DoorType]*DoorSprites, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if _, dup := t.doors[e.Type]; dup {
			return nil, fmt.Errorf("duplicate door type %s", e.Type)
		}
		for j, f := range e.OpenAnimation {
			if f.Millis == 0 {
				return nil, fmt.Errorf("door %s open frame %d: zero duration", e.Type, j)
			}
		}
		for j, f := range e.CloseAnimation {
			if f.Millis == 0 {
				return nil, fmt.Errorf("door %s close frame %d: zero duration", e.Type, j)
			}
		}
		t.doors[e.Type] = e
	}
	return t, nil
}

// Get returns the sprites for a door type, or nil if none.
func (t *DoorTable) Get(typ DoorType) *DoorSprites {
	return t.doors[typ]
}

// Count returns the total number of door types loaded.
func (t *DoorTable) Count() int {
	return len(t.doors)
}

// Each visits entries ordered by door type.
func (t *DoorTable) Each(fn func(*DoorSprites)) {
	types := make([]DoorType, 0, len(t.doors))
	for typ := range t.doors {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, typ := range types {
		fn(t.doors[typ])
	}
}

// DefaultDoorTable is used when no door table file is configured.
func DefaultDoorTable() *DoorTable {
	inner := SpriteAnimation{
		{Sprite: SpriteInnerDoorOpening1, Millis: 60},
		{Sprite: SpriteInnerDoorOpening2, Millis: 60},
	}
	outer := SpriteAnimation{
		{Sprite: SpriteOuterDoorOpening1, Millis: 80},
		{Sprite: SpriteOuterDoorOpening2, Millis: 80},
	}
	return &DoorTable{
		doors: map[DoorType]*DoorSprites{
			DoorInner: {
				Type:           DoorInner,
				ClosedSprite:   SpriteInnerDoor,
				OpenSprite:     SpriteInnerDoorOpen,
				OpenAnimation:  inner,
				CloseAnimation: inner.Reversed(),
			},
			DoorOuter: {
				Type:           DoorOuter,
				ClosedSprite:   SpriteOuterDoor,
				OpenSprite:     SpriteOuterDoorOpen,
				OpenAnimation:  outer,
				CloseAnimation: outer.Reversed(),
			},
		},
	}
}
