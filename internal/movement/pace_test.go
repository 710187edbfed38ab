package movement

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaceMultiplier(t *testing.T) {
	p := DefaultPacePolicy()
	tests := []struct {
		name     string
		backlog  int
		settling bool
		want     float64
	}{
		{"empty", 0, false, 1},
		{"single not settling", 1, false, 1},
		{"single settling", 1, true, 0.9},
		{"two settling", 2, true, 1},
		{"hurry", 3, false, 1.5},
		{"hurry wins over settling", 3, true, 1.5},
		{"catch up", 4, false, 2},
		{"far behind", 12, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Multiplier(tt.backlog, tt.settling))
		})
	}
}

func TestPacePolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPacePolicy().Validate())

	tests := []struct {
		name   string
		mutate func(*PacePolicy)
	}{
		{"hurry above catch-up", func(p *PacePolicy) { p.HurryBacklog = 5 }},
		{"ease-in reaches hurry", func(p *PacePolicy) { p.EaseInBacklog = 3 }},
		{"zero multiplier", func(p *PacePolicy) { p.CatchUpMultiplier = 0 }},
		{"nan diagonal", func(p *PacePolicy) { p.DiagonalFactor = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPacePolicy()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick", func(c *Config) { c.TickDuration = 0 }},
		{"negative tick", func(c *Config) { c.TickDuration = -time.Second }},
		{"zero walk", func(c *Config) { c.WalkTilesPerTick = 0 }},
		{"zero run", func(c *Config) { c.RunTilesPerTick = 0 }},
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"bad pace", func(c *Config) { c.Pace.HurryMultiplier = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
