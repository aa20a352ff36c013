package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type DoorState uint8

const (
	DoorClosed DoorState = iota
	DoorOpen
)

func (s DoorState) String() string {
	if s == DoorOpen {
		return "open"
	}
	return "closed"
}

// ParseDoorState accepts "open" or "closed".
func ParseDoorState(name string) (DoorState, error) {
	switch name {
	case "open":
		return DoorOpen, nil
	case "closed":
		return DoorClosed, nil
	}
	return 0, fmt.Errorf("unknown door state %q", name)
}

type DoorType uint8

const (
	DoorInner DoorType = iota
	DoorOuter
)

func (t DoorType) String() string {
	switch t {
	case DoorInner:
		return "inner"
	case DoorOuter:
		return "outer"
	}
	return fmt.Sprintf("door_type(%d)", uint8(t))
}

func ParseDoorType(name string) (DoorType, error) {
	switch name {
	case "inner":
		return DoorInner, nil
	case "outer":
		return DoorOuter, nil
	}
	return 0, fmt.Errorf("unknown door type %q", name)
}

func (t *DoorType) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseDoorType(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = parsed
	return nil
}

// DoorInfo is the door component: which kind of door and whether it is open.
type DoorInfo struct {
	Type  DoorType
	State DoorState
}

func NewDoorInfo(typ DoorType, state DoorState) DoorInfo {
	return DoorInfo{Type: typ, State: state}
}

// WithState returns a copy of d in the given state.
func (d DoorInfo) WithState(state DoorState) DoorInfo {
	d.State = state
	return d
}
