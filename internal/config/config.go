package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/angler/sim/internal/policy"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	World      WorldConfig      `toml:"world"`
	Reaction   ReactionConfig   `toml:"reaction"`
	Content    ContentConfig    `toml:"content"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	MaxTicks int           `toml:"max_ticks"` // 0 = run until interrupted
}

type WorldConfig struct {
	Width  int32 `toml:"width"`
	Height int32 `toml:"height"`
}

type ReactionConfig struct {
	SlideDuration time.Duration `toml:"slide_duration"`
	BumpDuration  time.Duration `toml:"bump_duration"`
	BumpFraction  float64       `toml:"bump_fraction"` // share of the path travelled before turning back
	BumpDamage    int32         `toml:"bump_damage"`
	MaxChain      int           `toml:"max_chain"`
}

type ContentConfig struct {
	DoorTable   string `toml:"door_table"`   // empty = built-in table
	LevelScript string `toml:"level_script"` // empty = no level
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Rules converts the reaction section into policy constants.
func (r ReactionConfig) Rules() policy.Rules {
	return policy.Rules{
		SlideDuration: r.SlideDuration,
		BumpDuration:  r.BumpDuration,
		BumpFraction:  r.BumpFraction,
		BumpDamage:    r.BumpDamage,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when a key is absent.
func Default() *Config {
	rules := policy.DefaultRules()
	return &Config{
		Simulation: SimulationConfig{
			TickRate: 16 * time.Millisecond,
		},
		World: WorldConfig{
			Width:  64,
			Height: 64,
		},
		Reaction: ReactionConfig{
			SlideDuration: rules.SlideDuration,
			BumpDuration:  rules.BumpDuration,
			BumpFraction:  rules.BumpFraction,
			BumpDamage:    rules.BumpDamage,
			MaxChain:      64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate))
	}
	if c.Simulation.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("simulation.max_ticks must not be negative, got %d", c.Simulation.MaxTicks))
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height))
	}
	r := c.Reaction
	if r.SlideDuration <= 0 {
		errs = append(errs, fmt.Errorf("reaction.slide_duration must be positive, got %s", r.SlideDuration))
	}
	if r.BumpDuration <= 0 {
		errs = append(errs, fmt.Errorf("reaction.bump_duration must be positive, got %s", r.BumpDuration))
	}
	if r.BumpFraction <= 0 || r.BumpFraction > 1 {
		errs = append(errs, fmt.Errorf("reaction.bump_fraction must be in (0,1], got %g", r.BumpFraction))
	}
	if r.BumpDamage < 0 {
		errs = append(errs, fmt.Errorf("reaction.bump_damage must not be negative, got %d", r.BumpDamage))
	}
	if r.MaxChain <= 0 {
		errs = append(errs, fmt.Errorf("reaction.max_chain must be positive, got %d", r.MaxChain))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
