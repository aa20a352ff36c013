package entity

import "github.com/angler/sim/internal/core/ecs"

// Cell aggregates the occupants of one tile that matter for collision and
// interaction. Accessed only from the game loop goroutine, so there are no locks.
type Cell struct {
	solid       int
	npcs        int
	players     int
	doors       map[ecs.EntityID]struct{}
	attackables map[ecs.EntityID]struct{}
}

func (c *Cell) SolidCount() int  { return c.solid }
func (c *Cell) NPCCount() int    { return c.npcs }
func (c *Cell) PlayerCount() int { return c.players }
func (c *Cell) DoorCount() int   { return len(c.doors) }

// FirstDoor returns the door with the lowest EntityID in the cell.
func (c *Cell) FirstDoor() (ecs.EntityID, bool) {
	return lowest(c.doors)
}

// FirstAttackable returns the attackable occupant with the lowest EntityID.
func (c *Cell) FirstAttackable() (ecs.EntityID, bool) {
	return lowest(c.attackables)
}

func lowest(set map[ecs.EntityID]struct{}) (ecs.EntityID, bool) {
	var best ecs.EntityID
	found := false
	for id := range set {
		if !found || id < best {
			best = id
			found = true
		}
	}
	return best, found
}

func (c *Cell) add(id ecs.EntityID, kind ComponentType) {
	switch kind {
	case ComponentSolid:
		c.solid++
	case ComponentNPC:
		c.npcs++
	case ComponentPlayer:
		c.players++
	case ComponentDoor:
		if c.doors == nil {
			c.doors = make(map[ecs.EntityID]struct{}, 1)
		}
		c.doors[id] = struct{}{}
	case ComponentAttackable:
		if c.attackables == nil {
			c.attackables = make(map[ecs.EntityID]struct{}, 1)
		}
		c.attackables[id] = struct{}{}
	}
}

func (c *Cell) sub(id ecs.EntityID, kind ComponentType) {
	switch kind {
	case ComponentSolid:
		c.solid--
	case ComponentNPC:
		c.npcs--
	case ComponentPlayer:
		c.players--
	case ComponentDoor:
		delete(c.doors, id)
	case ComponentAttackable:
		delete(c.attackables, id)
	}
}

// spatialKinds are the component types a Cell aggregates.
var spatialKinds = [...]ComponentType{
	ComponentSolid,
	ComponentNPC,
	ComponentPlayer,
	ComponentDoor,
	ComponentAttackable,
}

func spatialKind(kind ComponentType) bool {
	for _, k := range spatialKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// SpatialHash is a bounded width×height grid of cells.
// Coordinates outside the bounds have no cell.
type SpatialHash struct {
	width  int32
	height int32
	cells  []Cell
}

func NewSpatialHash(width, height int32) *SpatialHash {
	if width <= 0 || height <= 0 {
		panic("entity: spatial hash needs positive dimensions")
	}
	return &SpatialHash{
		width:  width,
		height: height,
		cells:  make([]Cell, int(width)*int(height)),
	}
}

func (h *SpatialHash) Width() int32  { return h.width }
func (h *SpatialHash) Height() int32 { return h.height }

// Get returns the cell at c, or false if c is out of bounds.
func (h *SpatialHash) Get(c Coord) (*Cell, bool) {
	if c.X < 0 || c.Y < 0 || c.X >= h.width || c.Y >= h.height {
		return nil, false
	}
	return &h.cells[int(c.Y)*int(h.width)+int(c.X)], true
}

// update folds a change into the index. It must run before the change is
// applied to the component stores so the previous coord and tags are visible.
func (h *SpatialHash) update(s *Store, ch Change) {
	id := ch.ID
	kind := ch.Type()
	if kind == ComponentCoord {
		old, had := s.coord.Get(id)
		if ch.Op == OpRemove {
			if had {
				h.leave(s, id, old)
			}
			return
		}
		next := ch.Value.(Coord)
		if had && old == next {
			return
		}
		if had {
			h.leave(s, id, old)
		}
		h.enter(s, id, next)
		return
	}

	if !spatialKind(kind) {
		return
	}
	coord, ok := s.coord.Get(id)
	if !ok {
		return
	}
	cell, ok := h.Get(coord)
	if !ok {
		return
	}
	has := s.Has(id, kind)
	switch {
	case ch.Op == OpInsert && !has:
		cell.add(id, kind)
	case ch.Op == OpRemove && has:
		cell.sub(id, kind)
	}
}

func (h *SpatialHash) enter(s *Store, id ecs.EntityID, c Coord) {
	cell, ok := h.Get(c)
	if !ok {
		return
	}
	for _, k := range spatialKinds {
		if s.Has(id, k) {
			cell.add(id, k)
		}
	}
}

func (h *SpatialHash) leave(s *Store, id ecs.EntityID, c Coord) {
	cell, ok := h.Get(c)
	if !ok {
		return
	}
	for _, k := range spatialKinds {
		if s.Has(id, k) {
			cell.sub(id, k)
		}
	}
}
