package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/movement"
	"github.com/Versifine/tilewalk/internal/world"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Loop     LoopConfig     `yaml:"loop"`
	Movement MovementConfig `yaml:"movement"`
	World    WorldConfig    `yaml:"world"`
	Render   RenderConfig   `yaml:"render"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

type LoopConfig struct {
	TickMS     int `yaml:"tick_ms"`
	TargetFPS  int `yaml:"target_fps"`
	MaxCatchUp int `yaml:"max_catch_up"`
}

type MovementConfig struct {
	WalkTilesPerTick int                 `yaml:"walk_tiles_per_tick"`
	RunTilesPerTick  int                 `yaml:"run_tiles_per_tick"`
	StartRunning     bool                `yaml:"start_running"`
	Pace             movement.PacePolicy `yaml:"pace"`
}

type WorldConfig struct {
	Width      int       `yaml:"width"`
	Height     int       `yaml:"height"`
	WallChance float64   `yaml:"wall_chance"`
	Seed       int64     `yaml:"seed"`
	Layout     []string  `yaml:"layout"`
	Spawn      *CellSpec `yaml:"spawn"`
}

type CellSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type RenderConfig struct {
	TileSize float64 `yaml:"tile_size"`
	Frontend string  `yaml:"frontend"`
	Sound    bool    `yaml:"sound"`
}

const (
	FrontendTUI      = "tui"
	FrontendConsole  = "console"
	FrontendGUI      = "gui"
	FrontendHeadless = "headless"
)

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			File:   "tilewalk.log",
			Format: "console",
		},
		Loop: LoopConfig{
			TickMS:     600,
			TargetFPS:  60,
			MaxCatchUp: 0,
		},
		Movement: MovementConfig{
			WalkTilesPerTick: 1,
			RunTilesPerTick:  2,
			Pace:             movement.DefaultPacePolicy(),
		},
		World: WorldConfig{
			Width:      20,
			Height:     15,
			WallChance: 0.2,
			Seed:       1,
		},
		Render: RenderConfig{
			TileSize: 32,
			Frontend: FrontendTUI,
		},
	}
}

// Load reads path over the defaults, so keys left out of the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if err := c.LoopSettings().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("loop: %w", err))
	}
	if c.Loop.TargetFPS <= 0 || c.Loop.TargetFPS > 1000 {
		errs = append(errs, fmt.Errorf("loop: target_fps %d out of range (1..1000)", c.Loop.TargetFPS))
	}
	if err := c.MovementSettings().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("movement: %w", err))
	}
	if len(c.World.Layout) == 0 {
		if c.World.Width <= 0 || c.World.Height <= 0 {
			errs = append(errs, fmt.Errorf("world: size %dx%d must be positive", c.World.Width, c.World.Height))
		}
		if c.World.WallChance < 0 || c.World.WallChance >= 1 {
			errs = append(errs, fmt.Errorf("world: wall_chance %.2f out of range [0,1)", c.World.WallChance))
		}
	}
	switch c.Render.Frontend {
	case FrontendTUI, FrontendConsole, FrontendGUI, FrontendHeadless:
	default:
		errs = append(errs, fmt.Errorf("render: unknown frontend %q", c.Render.Frontend))
	}
	switch c.Logging.Format {
	case "", "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func (l LoopConfig) TickDuration() time.Duration {
	return time.Duration(l.TickMS) * time.Millisecond
}

func (l LoopConfig) FrameDuration() time.Duration {
	if l.TargetFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(l.TargetFPS)
}

func (c *Config) LoopSettings() loop.Config {
	return loop.Config{
		TickDuration:    c.Loop.TickDuration(),
		FrameDuration:   c.Loop.FrameDuration(),
		MaxCatchUpTicks: c.Loop.MaxCatchUp,
	}
}

func (c *Config) MovementSettings() movement.Config {
	return movement.Config{
		TickDuration:     c.Loop.TickDuration(),
		WalkTilesPerTick: c.Movement.WalkTilesPerTick,
		RunTilesPerTick:  c.Movement.RunTilesPerTick,
		TileSize:         c.Render.TileSize,
		Pace:             c.Movement.Pace,
	}
}

// BuildWorld parses the configured layout, or generates a random grid when
// no layout is given. An explicit spawn overrides the layout's '@'.
func (c *Config) BuildWorld() (*world.Grid, error) {
	if len(c.World.Layout) > 0 {
		g, err := world.ParseLayout(c.World.Layout)
		if err != nil {
			return nil, fmt.Errorf("world layout: %w", err)
		}
		if c.World.Spawn != nil {
			spawn := world.Cell{X: c.World.Spawn.X, Y: c.World.Spawn.Y}
			if !g.IsInBounds(spawn.X, spawn.Y) {
				return nil, fmt.Errorf("world spawn %s outside %dx%d layout", spawn, g.Width(), g.Height())
			}
			g.SetSpawn(spawn)
		}
		return g, nil
	}

	spawn := world.Cell{X: c.World.Width / 2, Y: c.World.Height / 2}
	if c.World.Spawn != nil {
		spawn = world.Cell{X: c.World.Spawn.X, Y: c.World.Spawn.Y}
	}
	g, err := world.Generate(c.World.Width, c.World.Height, c.World.WallChance, c.World.Seed, spawn)
	if err != nil {
		return nil, fmt.Errorf("world generate: %w", err)
	}
	return g, nil
}
