package movement

import (
	"fmt"
	"math"
	"time"
)

// PacePolicy scales animation speed by how many waypoints are still waiting
// to be animated. Backlog counts the in-flight segment's target plus every
// buffered waypoint behind it, so the default CatchUpBacklog of 4 fires with
// one segment under way and three corners queued behind it.
type PacePolicy struct {
	CatchUpBacklog    int     `yaml:"catch_up_backlog"`
	CatchUpMultiplier float64 `yaml:"catch_up_multiplier"`
	HurryBacklog      int     `yaml:"hurry_backlog"`
	HurryMultiplier   float64 `yaml:"hurry_multiplier"`
	EaseInBacklog     int     `yaml:"ease_in_backlog"`
	EaseInMultiplier  float64 `yaml:"ease_in_multiplier"`
	DiagonalFactor    float64 `yaml:"diagonal_factor"`
}

func DefaultPacePolicy() PacePolicy {
	return PacePolicy{
		CatchUpBacklog:    4,
		CatchUpMultiplier: 2,
		HurryBacklog:      3,
		HurryMultiplier:   1.5,
		EaseInBacklog:     1,
		EaseInMultiplier:  0.9,
		DiagonalFactor:    math.Sqrt2,
	}
}

// Multiplier picks the speed factor for a backlog. settling is true when the
// final segment of a path is already under way.
func (p PacePolicy) Multiplier(backlog int, settling bool) float64 {
	switch {
	case backlog >= p.CatchUpBacklog:
		return p.CatchUpMultiplier
	case backlog >= p.HurryBacklog:
		return p.HurryMultiplier
	case settling && backlog <= p.EaseInBacklog:
		return p.EaseInMultiplier
	default:
		return 1
	}
}

func (p PacePolicy) Validate() error {
	if p.HurryBacklog > p.CatchUpBacklog {
		return fmt.Errorf("hurry backlog %d exceeds catch-up backlog %d", p.HurryBacklog, p.CatchUpBacklog)
	}
	if p.EaseInBacklog >= p.HurryBacklog {
		return fmt.Errorf("ease-in backlog %d must be below hurry backlog %d", p.EaseInBacklog, p.HurryBacklog)
	}
	for name, v := range map[string]float64{
		"catch_up_multiplier": p.CatchUpMultiplier,
		"hurry_multiplier":    p.HurryMultiplier,
		"ease_in_multiplier":  p.EaseInMultiplier,
		"diagonal_factor":     p.DiagonalFactor,
	} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	return nil
}

// Config holds the per-controller movement constants.
type Config struct {
	TickDuration     time.Duration
	WalkTilesPerTick int
	RunTilesPerTick  int
	TileSize         float64
	Pace             PacePolicy
}

func DefaultConfig() Config {
	return Config{
		TickDuration:     600 * time.Millisecond,
		WalkTilesPerTick: 1,
		RunTilesPerTick:  2,
		TileSize:         128,
		Pace:             DefaultPacePolicy(),
	}
}

func (c Config) Validate() error {
	if c.TickDuration <= 0 {
		return fmt.Errorf("tick duration must be positive, got %s", c.TickDuration)
	}
	if c.WalkTilesPerTick <= 0 || c.RunTilesPerTick <= 0 {
		return fmt.Errorf("tiles per tick must be positive (walk=%d run=%d)", c.WalkTilesPerTick, c.RunTilesPerTick)
	}
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %v", c.TileSize)
	}
	if err := c.Pace.Validate(); err != nil {
		return fmt.Errorf("pace: %w", err)
	}
	return nil
}
