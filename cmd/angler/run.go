package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/angler/sim/internal/config"
	"github.com/angler/sim/internal/content"
	"github.com/angler/sim/internal/core/ecs"
	"github.com/angler/sim/internal/core/event"
	coresys "github.com/angler/sim/internal/core/system"
	"github.com/angler/sim/internal/entity"
	"github.com/angler/sim/internal/policy"
	"github.com/angler/sim/internal/reaction"
	"github.com/angler/sim/internal/scripting"
	"github.com/angler/sim/internal/system"
)

func newRunCmd() *cobra.Command {
	var (
		cfgFlag string
		ticks   int
		fast    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath(cfgFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Simulation.MaxTicks = ticks
			}
			if fast && cfg.Simulation.MaxTicks <= 0 {
				return fmt.Errorf("--fast needs a tick limit")
			}

			log, err := newLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			sim, err := newSimulation(cfg, log)
			if err != nil {
				return err
			}
			defer sim.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if fast {
				sim.RunFor(cfg.Simulation.MaxTicks)
			} else {
				sim.Run(ctx)
			}
			sim.Summary(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFlag, "config", "", "config file (default $ANGLER_CONFIG or "+defaultConfigPath+")")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "stop after this many ticks, overriding simulation.max_ticks")
	cmd.Flags().BoolVar(&fast, "fast", false, "tick as fast as possible instead of at tick_rate (needs a tick limit)")
	return cmd
}

// simulation wires the world, the reaction pipeline and the systems.
type simulation struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *entity.Store
	scheduler *reaction.Scheduler
	script    *scripting.Engine
	runner    *coresys.Runner
	input     *system.InputSystem
	events    uint64
}

func newSimulation(cfg *config.Config, log *zap.Logger) (*simulation, error) {
	doors := content.DefaultDoorTable()
	if cfg.Content.DoorTable != "" {
		t, err := content.LoadDoorTable(cfg.Content.DoorTable)
		if err != nil {
			return nil, fmt.Errorf("load door table: %w", err)
		}
		doors = t
	}
	log.Info("door table ready", zap.Int("types", doors.Count()))

	world := ecs.NewWorld()
	store := entity.NewStore(world, cfg.World.Width, cfg.World.Height)
	bus := event.NewBus()
	scheduler := reaction.NewScheduler(&reaction.Config{
		Store:    store,
		Policy:   policy.NewEngine(cfg.Reaction.Rules(), doors),
		Bus:      bus,
		Log:      log.Named("reaction"),
		MaxChain: cfg.Reaction.MaxChain,
	})
	script := scripting.NewEngine(store, log.Named("script"))

	s := &simulation{
		cfg:       cfg,
		log:       log,
		store:     store,
		scheduler: scheduler,
		script:    script,
		runner:    coresys.NewRunner(),
	}

	event.Subscribe(bus, func(ev event.ChangeCommitted) {
		s.events++
		log.Debug("committed", zap.Stringer("change", ev.Change))
	})
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		s.events++
		log.Info("entity removed", zap.Stringer("entity", ev.EntityID))
	})

	if cfg.Content.LevelScript != "" {
		if err := script.LoadLevel(cfg.Content.LevelScript); err != nil {
			script.Close()
			return nil, err
		}
	}
	log.Info("level loaded", zap.Int("entities", world.Pool().Count()))

	s.input = system.NewInputSystem(script, scheduler, 0, log.Named("input"))
	s.runner.Register(s.input)
	s.runner.Register(system.NewEventSystem(bus))
	s.runner.Register(system.NewReactionSystem(scheduler))
	s.runner.Register(system.NewCleanupSystem(world, scheduler, bus, log.Named("cleanup")))
	return s, nil
}

func (s *simulation) Close() { s.script.Close() }

// Run ticks at the configured rate until ctx is done or the tick limit is hit.
func (s *simulation) Run(ctx context.Context) {
	rate := s.cfg.Simulation.TickRate
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	s.log.Info("simulation started", zap.Duration("tick", rate), zap.Int("max_ticks", s.cfg.Simulation.MaxTicks))
	for !s.done() {
		select {
		case <-ticker.C:
			s.runner.Tick(rate)
		case <-ctx.Done():
			s.log.Info("shutdown signal received")
			return
		}
	}
}

// RunFor ticks n times without waiting between ticks.
func (s *simulation) RunFor(n int) {
	rate := s.cfg.Simulation.TickRate
	for i := 0; i < n; i++ {
		s.runner.Tick(rate)
	}
}

func (s *simulation) done() bool {
	limit := s.cfg.Simulation.MaxTicks
	return limit > 0 && s.runner.Ticks() >= uint64(limit)
}

func (s *simulation) Summary(w io.Writer) {
	st := s.scheduler.Stats()
	fmt.Fprintf(w, "ticks      %d\n", s.runner.Ticks())
	fmt.Fprintf(w, "entities   %d\n", s.store.World().Pool().Count())
	fmt.Fprintf(w, "animating  %d\n", s.scheduler.Live())
	fmt.Fprintf(w, "proposed   %d (accepted %d, rejected %d, dropped %d)\n", st.Proposed, st.Accepted, st.Rejected, st.Dropped)
	fmt.Fprintf(w, "committed  %d\n", st.Committed)
	fmt.Fprintf(w, "deleted    %d\n", st.Deleted)
	fmt.Fprintf(w, "events     %d\n", s.events)
	s.store.EachHealthyNPC(func(id ecs.EntityID, h content.HealthInfo) {
		coord, _ := s.store.Coord(id)
		fmt.Fprintf(w, "npc %-6s at %s hp %d/%d\n", id, coord, h.Current, h.Max)
	})
}
