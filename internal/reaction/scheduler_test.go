package reaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/angler/sim/internal/animation"
	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/core/event"
	"github.com/angler/sim/internal/entity"
	"github.com/angler/sim/internal/policy"
)

type SchedulerTestSuite struct {
	suite.Suite
	store     *entity.Store
	bus       *event.Bus
	scheduler *Scheduler
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (s *SchedulerTestSuite) SetupTest() {
	s.store = entity.NewStore(ecs.NewWorld(), 10, 10)
	s.bus = event.NewBus()
	s.scheduler = s.newScheduler(0)
}

func (s *SchedulerTestSuite) newScheduler(maxChain int) *Scheduler {
	return NewScheduler(&Config{
		Store:    s.store,
		Policy:   policy.NewEngine(policy.DefaultRules(), content.DefaultDoorTable()),
		Bus:      s.bus,
		Log:      zaptest.NewLogger(s.T()),
		MaxChain: maxChain,
	})
}

func (s *SchedulerTestSuite) spawn(at entity.Coord, tags ...entity.ComponentType) ecs.EntityID {
	id := s.store.World().CreateEntity()
	s.store.Commit(entity.InsertCoord(id, at))
	s.store.Commit(entity.InsertPosition(id, at.Vec()))
	for _, tag := range tags {
		s.store.Commit(entity.InsertTag(id, tag))
	}
	return id
}

func (s *SchedulerTestSuite) player(at entity.Coord) ecs.EntityID {
	return s.spawn(at, entity.ComponentCollider, entity.ComponentPlayer,
		entity.ComponentDoorOpener, entity.ComponentBumpAttack, entity.ComponentAttackable)
}

func (s *SchedulerTestSuite) door(at entity.Coord, state content.DoorState) ecs.EntityID {
	id := s.spawn(at)
	s.store.Commit(entity.InsertDoor(id, content.NewDoorInfo(content.DoorInner, state)))
	if state == content.DoorClosed {
		s.store.Commit(entity.InsertTag(id, entity.ComponentSolid))
		s.store.Commit(entity.InsertOpacity(id, 1))
		s.store.Commit(entity.InsertSprite(id, content.SpriteInnerDoor))
	} else {
		s.store.Commit(entity.InsertOpacity(id, 0))
		s.store.Commit(entity.InsertSprite(id, content.SpriteInnerDoorOpen))
	}
	return id
}

func (s *SchedulerTestSuite) position(id ecs.EntityID) entity.Vec2 {
	pos, ok := s.store.Position(id)
	s.Require().True(ok)
	return pos
}

func (s *SchedulerTestSuite) TestMoveCommitsCoordAndSlides() {
	id := s.player(entity.Coord{X: 1, Y: 1})

	s.True(s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 1})))
	coord, _ := s.store.Coord(id)
	s.Equal(entity.Coord{X: 2, Y: 1}, coord, "logical coord is committed at once")
	s.Equal(entity.Vec2{X: 1, Y: 1}, s.position(id), "render position has not moved yet")
	s.Equal(1, s.scheduler.Live())

	s.scheduler.Tick(25 * time.Millisecond)
	s.InDelta(1.5, s.position(id).X, 1e-9)
	s.Equal(1, s.scheduler.Live())

	s.scheduler.Tick(25 * time.Millisecond)
	s.Equal(entity.Vec2{X: 2, Y: 1}, s.position(id))
	s.Equal(0, s.scheduler.Live())
}

func (s *SchedulerTestSuite) TestBumpingClosedDoorOpensIt() {
	id := s.player(entity.Coord{X: 1, Y: 1})
	door := s.door(entity.Coord{X: 2, Y: 1}, content.DoorClosed)

	s.False(s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 1})))

	coord, _ := s.store.Coord(id)
	s.Equal(entity.Coord{X: 1, Y: 1}, coord)
	info, _ := s.store.Door(door)
	s.Equal(content.DoorOpen, info.State)
	s.False(s.store.Has(door, entity.ComponentSolid))
	opacity, _ := s.store.Opacity(door)
	s.Equal(0.0, opacity)
	sprite, _ := s.store.Sprite(door)
	s.Equal(content.SpriteInnerDoorOpening1, sprite, "first frame shows as the animation starts")
	_, animating := s.scheduler.Animation(door)
	s.True(animating)
	_, animating = s.scheduler.Animation(id)
	s.False(animating, "a rejected move does not slide")

	s.scheduler.Tick(60 * time.Millisecond)
	sprite, _ = s.store.Sprite(door)
	s.Equal(content.SpriteInnerDoorOpening2, sprite)

	s.scheduler.Tick(60 * time.Millisecond)
	sprite, _ = s.store.Sprite(door)
	s.Equal(content.SpriteInnerDoorOpen, sprite)
	s.Equal(0, s.scheduler.Live())

	// the doorway is now passable
	s.True(s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 1})))
}

func (s *SchedulerTestSuite) TestClosingDoorRunsToCompletion() {
	door := s.door(entity.Coord{X: 4, Y: 4}, content.DoorOpen)
	closeDoor := entity.InsertDoor(door, content.NewDoorInfo(content.DoorInner, content.DoorClosed))

	npc := s.spawn(entity.Coord{X: 4, Y: 4}, entity.ComponentNPC)
	s.False(s.scheduler.Propose(closeDoor), "occupied doorway")
	s.store.Commit(entity.InsertCoord(npc, entity.Coord{X: 5, Y: 4}))

	s.True(s.scheduler.Propose(closeDoor))
	s.True(s.store.Has(door, entity.ComponentSolid))
	opacity, _ := s.store.Opacity(door)
	s.Equal(0.0, opacity, "still see-through while closing")

	// one large tick skips the whole close animation
	s.scheduler.Tick(time.Second)
	opacity, _ = s.store.Opacity(door)
	s.Equal(1.0, opacity)
	sprite, _ := s.store.Sprite(door)
	s.Equal(content.SpriteInnerDoor, sprite)
	s.True(s.store.Has(door, entity.ComponentDoorClosingFinished))
	s.Equal(0, s.scheduler.Live())
}

func (s *SchedulerTestSuite) TestBumpAttackKillsAtMidpoint() {
	id := s.player(entity.Coord{X: 1, Y: 1})
	crab := s.spawn(entity.Coord{X: 2, Y: 1}, entity.ComponentNPC, entity.ComponentAttackable, entity.ComponentCollider)
	s.store.Commit(entity.InsertHealth(crab, content.FullHealth(1)))

	s.False(s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 1})))
	a, ok := s.scheduler.Animation(id)
	s.Require().True(ok)
	s.IsType(&animation.Bump{}, a)

	s.scheduler.Tick(40 * time.Millisecond)
	s.False(s.store.World().Pending(crab))

	s.scheduler.Tick(10 * time.Millisecond)
	s.True(s.store.World().Pending(crab))
	health, _ := s.store.Health(crab)
	s.Equal(int32(1), health.Current, "the fatal health change itself is rejected")
	s.InDelta(1.49, s.position(id).X, 1e-9)

	s.scheduler.Tick(50 * time.Millisecond)
	s.Equal(entity.Vec2{X: 1, Y: 1}, s.position(id))
	s.Equal(uint64(1), s.scheduler.Stats().Deleted)
}

func (s *SchedulerTestSuite) TestBumpAttackWoundsSurvivor() {
	id := s.player(entity.Coord{X: 1, Y: 1})
	snail := s.spawn(entity.Coord{X: 1, Y: 2}, entity.ComponentNPC, entity.ComponentAttackable)
	s.store.Commit(entity.InsertHealth(snail, content.FullHealth(3)))

	s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 1, Y: 2}))
	s.scheduler.Tick(time.Second)

	health, _ := s.store.Health(snail)
	s.Equal(content.HealthInfo{Current: 2, Max: 3}, health)
	s.False(s.store.World().Pending(snail))
}

func (s *SchedulerTestSuite) TestNewDescriptorReplacesLiveAnimation() {
	id := s.player(entity.Coord{X: 1, Y: 1})

	s.True(s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 1})))
	s.scheduler.Tick(40 * time.Millisecond)
	s.True(s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 2})))
	s.Equal(1, s.scheduler.Live())

	a, _ := s.scheduler.Animation(id)
	slide := a.(*animation.Slide)
	s.Equal(0.0, slide.Progress, "old progress is discarded")
	s.Equal(entity.Vec2{X: 2, Y: 1}, slide.Base)

	s.scheduler.Tick(10 * time.Millisecond)
	s.InDelta(1.2, s.position(id).Y, 1e-9)
	s.Equal(2.0, s.position(id).X, "no leftover from the replaced slide")
}

func (s *SchedulerTestSuite) TestAllAnimationsShareTickDelta() {
	a := s.player(entity.Coord{X: 1, Y: 1})
	b := s.spawn(entity.Coord{X: 5, Y: 5})

	s.scheduler.Propose(entity.InsertCoord(a, entity.Coord{X: 2, Y: 1}))
	s.scheduler.Propose(entity.InsertCoord(b, entity.Coord{X: 5, Y: 6}))
	s.scheduler.Tick(10 * time.Millisecond)

	s.InDelta(0.2, s.position(a).X-1, 1e-9)
	s.InDelta(0.2, s.position(b).Y-5, 1e-9)
}

func (s *SchedulerTestSuite) TestChainLimitDropsDeepChanges() {
	s.scheduler = s.newScheduler(1)
	id := s.player(entity.Coord{X: 1, Y: 1})
	door := s.door(entity.Coord{X: 2, Y: 1}, content.DoorClosed)

	s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 2, Y: 1}))

	info, _ := s.store.Door(door)
	s.Equal(content.DoorOpen, info.State, "depth 1 is within the limit")
	s.True(s.store.Has(door, entity.ComponentSolid), "depth 2 changes are dropped")
	s.Equal(uint64(2), s.scheduler.Stats().Dropped)
}

func (s *SchedulerTestSuite) TestForget() {
	id := s.player(entity.Coord{X: 1, Y: 1})
	other := s.spawn(entity.Coord{X: 6, Y: 6})
	s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 1, Y: 2}))
	s.scheduler.Propose(entity.InsertCoord(other, entity.Coord{X: 6, Y: 7}))
	s.Equal(2, s.scheduler.Live())

	s.scheduler.Forget(id)
	s.scheduler.Forget(id)
	s.Equal(1, s.scheduler.Live())
	_, ok := s.scheduler.Animation(other)
	s.True(ok)
}

func (s *SchedulerTestSuite) TestCommitsArePublished() {
	id := s.player(entity.Coord{X: 1, Y: 1})
	var seen []entity.Change
	event.Subscribe(s.bus, func(ev event.ChangeCommitted) { seen = append(seen, ev.Change) })

	s.scheduler.Propose(entity.InsertCoord(id, entity.Coord{X: 1, Y: 2}))
	s.scheduler.Tick(time.Second)
	s.bus.SwapBuffers()
	s.bus.DispatchAll()

	s.Equal([]entity.Change{
		entity.InsertCoord(id, entity.Coord{X: 1, Y: 2}),
		entity.InsertPosition(id, entity.Vec2{X: 1, Y: 2}),
	}, seen)
	s.Equal(uint64(2), s.scheduler.Stats().Committed)
}
