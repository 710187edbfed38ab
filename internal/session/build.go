package session

import (
	"fmt"

	"github.com/Versifine/tilewalk/internal/config"
	"github.com/Versifine/tilewalk/internal/event"
	"github.com/Versifine/tilewalk/internal/loop"
	"github.com/Versifine/tilewalk/internal/movement"
	"github.com/Versifine/tilewalk/internal/pathfind"
)

// Build assembles a session from configuration. A nil clock means wall time.
func Build(cfg *config.Config, clock loop.Clock, bus *event.Bus) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	grid, err := cfg.BuildWorld()
	if err != nil {
		return nil, err
	}
	ctrl, err := movement.New(grid.Spawn(), cfg.MovementSettings())
	if err != nil {
		return nil, err
	}
	ctrl.SetRunning(cfg.Movement.StartRunning)

	sched, err := loop.New(cfg.LoopSettings(), clock)
	if err != nil {
		return nil, err
	}
	return New(grid, pathfind.NewFinder(grid), ctrl, sched, bus)
}
