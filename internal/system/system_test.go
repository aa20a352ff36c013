package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/core/event"
	coresys "github.com/angler/sim/internal/core/system"
	"github.com/angler/sim/internal/entity"
	"github.com/angler/sim/internal/policy"
	"github.com/angler/sim/internal/reaction"
	"github.com/angler/sim/internal/scripting"
)

const dt = 20 * time.Millisecond

type pipeline struct {
	store     *entity.Store
	bus       *event.Bus
	scheduler *reaction.Scheduler
	script    *scripting.Engine
	runner    *coresys.Runner
}

func newPipeline(t *testing.T, level string) *pipeline {
	t.Helper()
	log := zaptest.NewLogger(t)
	p := &pipeline{
		store: entity.NewStore(ecs.NewWorld(), 8, 8),
		bus:   event.NewBus(),
	}
	p.scheduler = reaction.NewScheduler(&reaction.Config{
		Store:  p.store,
		Policy: policy.NewEngine(policy.DefaultRules(), nil),
		Bus:    p.bus,
		Log:    log,
	})
	p.script = scripting.NewEngine(p.store, log)
	t.Cleanup(p.script.Close)
	require.NoError(t, p.script.DoString(level))

	p.runner = coresys.NewRunner()
	// registration order is deliberately not phase order
	p.runner.Register(NewCleanupSystem(p.store.World(), p.scheduler, p.bus, log))
	p.runner.Register(NewReactionSystem(p.scheduler))
	p.runner.Register(NewInputSystem(p.script, p.scheduler, 0, log))
	p.runner.Register(NewEventSystem(p.bus))
	return p
}

func (p *pipeline) ticks(n int) {
	for i := 0; i < n; i++ {
		p.runner.Tick(dt)
	}
}

func (p *pipeline) only(t *testing.T, kind entity.ComponentType) ecs.EntityID {
	t.Helper()
	ids := p.store.Tagged(kind)
	require.Len(t, ids, 1)
	return ids[0]
}

func TestScriptedWalkThroughDoor(t *testing.T) {
	p := newPipeline(t, `
		hero = spawn("angler", 1, 1)
		spawn("inner_door", 2, 1)
		function on_tick(n)
			if n == 1 or n == 8 then move(hero, 2, 1) end
		end
	`)
	hero := p.only(t, entity.ComponentPlayer)
	door := p.store.Tagged(entity.ComponentSolid)[0]

	p.ticks(1)
	info, _ := p.store.Door(door)
	assert.Equal(t, content.DoorOpen, info.State)
	coord, _ := p.store.Coord(hero)
	assert.Equal(t, entity.Coord{X: 1, Y: 1}, coord, "bumping the door does not move the hero")

	p.ticks(5)
	sprite, _ := p.store.Sprite(door)
	assert.Equal(t, content.SpriteInnerDoorOpen, sprite)
	assert.Equal(t, 0, p.scheduler.Live())

	p.ticks(2)
	coord, _ = p.store.Coord(hero)
	assert.Equal(t, entity.Coord{X: 2, Y: 1}, coord)
	pos, _ := p.store.Position(hero)
	assert.InDelta(t, 1.4, pos.X, 1e-9, "one tick into the slide")
}

func TestKilledEntityIsCleanedUp(t *testing.T) {
	p := newPipeline(t, `
		hero = spawn("angler", 3, 3)
		spawn("crab", 4, 3)
		function on_tick(n)
			if n == 1 then move(hero, 4, 3) end
		end
	`)
	crab := p.only(t, entity.ComponentNPC)
	p.store.Commit(entity.InsertHealth(crab, content.HealthInfo{Current: 1, Max: 8}))

	var destroyed []ecs.EntityID
	event.Subscribe(p.bus, func(ev event.EntityDestroyed) { destroyed = append(destroyed, ev.EntityID) })

	p.ticks(2)
	assert.True(t, p.store.World().Alive(crab), "the bump has not turned yet")

	p.ticks(1)
	assert.False(t, p.store.World().Alive(crab))
	assert.False(t, p.store.Has(crab, entity.ComponentHealth))
	cell, _ := p.store.Cell(entity.Coord{X: 4, Y: 3})
	_, ok := cell.FirstAttackable()
	assert.False(t, ok)
	assert.Empty(t, destroyed, "events arrive on the next tick")

	p.ticks(1)
	assert.Equal(t, []ecs.EntityID{crab}, destroyed)

	p.ticks(5)
	hero := p.only(t, entity.ComponentPlayer)
	pos, _ := p.store.Position(hero)
	assert.Equal(t, entity.Vec2{X: 3, Y: 3}, pos)
}

func TestCleanupForgetsAnimation(t *testing.T) {
	p := newPipeline(t, `
		hero = spawn("angler", 1, 1)
		function on_tick(n)
			if n == 1 then move(hero, 1, 2) end
		end
	`)
	hero := p.only(t, entity.ComponentPlayer)

	p.ticks(1)
	require.Equal(t, 1, p.scheduler.Live())
	p.store.World().MarkForDestruction(hero)
	p.runner.TickPhase(coresys.PhaseCleanup, dt)

	assert.Equal(t, 0, p.scheduler.Live())
	assert.False(t, p.store.World().Alive(hero))
}

type fakeSource struct {
	ticks []uint64
	batch []entity.Change
}

func (f *fakeSource) Tick(n uint64) { f.ticks = append(f.ticks, n) }

func (f *fakeSource) Drain() []entity.Change {
	out := f.batch
	f.batch = nil
	return out
}

type recorder struct {
	seen []entity.Change
}

func (r *recorder) Propose(change entity.Change) bool {
	r.seen = append(r.seen, change)
	return true
}

func TestInputBacklog(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	sys := NewInputSystem(src, rec, 2, zap.NewNop())
	assert.Equal(t, coresys.PhaseInput, sys.Phase())

	changes := []entity.Change{
		entity.InsertCoord(1, entity.Coord{X: 1}),
		entity.InsertCoord(2, entity.Coord{X: 2}),
		entity.InsertCoord(3, entity.Coord{X: 3}),
	}
	src.batch = changes

	sys.Update(dt)
	assert.Equal(t, changes[:2], rec.seen)
	assert.Equal(t, 1, sys.Backlog())

	sys.Update(dt)
	assert.Equal(t, changes, rec.seen)
	assert.Equal(t, 0, sys.Backlog())
	assert.Equal(t, []uint64{1, 2}, src.ticks)
}

func TestPhases(t *testing.T) {
	assert.Equal(t, coresys.PhasePreUpdate, NewEventSystem(event.NewBus()).Phase())
	assert.Equal(t, coresys.PhaseUpdate, NewReactionSystem(nil).Phase())
	assert.Equal(t, coresys.PhaseCleanup, NewCleanupSystem(ecs.NewWorld(), nil, nil, zap.NewNop()).Phase())
}
