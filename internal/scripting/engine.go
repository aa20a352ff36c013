// Package scripting runs Lua level scripts. Scripts spawn prototypes directly
// and propose moves and door changes, which are queued until the input system
// drains them into the reaction scheduler.
package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/entity"
	"github.com/angler/sim/internal/prototype"
)

// Engine wraps a single gopher-lua VM.
// Single-goroutine access only (game loop).
type Engine struct {
	vm       *lua.LState
	store    *entity.Store
	log      *zap.Logger
	proposed []entity.Change
}

// NewEngine creates a Lua VM bound to store and registers the level API.
func NewEngine(store *entity.Store, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, store: store, log: log}
	vm.SetGlobal("spawn", vm.NewFunction(e.luaSpawn))
	vm.SetGlobal("move", vm.NewFunction(e.luaMove))
	vm.SetGlobal("set_door", vm.NewFunction(e.luaSetDoor))
	vm.SetGlobal("coord", vm.NewFunction(e.luaCoord))
	vm.SetGlobal("width", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(store.Spatial().Width()))
		return 1
	}))
	vm.SetGlobal("height", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(store.Spatial().Height()))
		return 1
	}))
	return e
}

func (e *Engine) Close() { e.vm.Close() }

// LoadLevel runs a level script file.
func (e *Engine) LoadLevel(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("load level %s: %w", path, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", path))
	return nil
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Tick calls the script's on_tick(n) if it defines one. Script errors are
// logged and otherwise ignored.
func (e *Engine) Tick(n uint64) {
	fn := e.vm.GetGlobal("on_tick")
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(n)); err != nil {
		e.log.Error("lua on_tick error", zap.Uint64("tick", n), zap.Error(err))
	}
}

// Drain returns the changes proposed since the last call, in call order.
func (e *Engine) Drain() []entity.Change {
	out := e.proposed
	e.proposed = nil
	return out
}

// spawn(prototype, x, y) -> id
func (e *Engine) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	at := entity.Coord{X: int32(L.CheckInt(2)), Y: int32(L.CheckInt(3))}
	id, err := prototype.Spawn(e.store, name, at)
	if err != nil {
		L.RaiseError("spawn: %v", err)
		return 0
	}
	L.Push(lua.LNumber(id))
	return 1
}

// move(id, x, y)
func (e *Engine) luaMove(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	to := entity.Coord{X: int32(L.CheckInt(2)), Y: int32(L.CheckInt(3))}
	e.proposed = append(e.proposed, entity.InsertCoord(id, to))
	return 0
}

// set_door(id, "open"|"closed")
func (e *Engine) luaSetDoor(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	state, err := content.ParseDoorState(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	info, ok := e.store.Door(id)
	if !ok {
		L.ArgError(1, fmt.Sprintf("entity %s is not a door", id))
		return 0
	}
	e.proposed = append(e.proposed, entity.InsertDoor(id, info.WithState(state)))
	return 0
}

// coord(id) -> x, y
func (e *Engine) luaCoord(L *lua.LState) int {
	id := e.checkEntity(L, 1)
	c, ok := e.store.Coord(id)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(c.X))
	L.Push(lua.LNumber(c.Y))
	return 2
}

func (e *Engine) checkEntity(L *lua.LState, n int) ecs.EntityID {
	id := ecs.EntityID(L.CheckNumber(n))
	if !e.store.World().Alive(id) {
		L.ArgError(n, fmt.Sprintf("no live entity %s", id))
	}
	return id
}
