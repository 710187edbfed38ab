package loop

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type (
	TickFunc   func(tick uint64)
	UpdateFunc func(dt time.Duration, tickProgress float64)
	RenderFunc func()
)

type Config struct {
	TickDuration  time.Duration
	FrameDuration time.Duration
	// MaxCatchUpTicks caps ticks fired per Advance; 0 means unlimited.
	MaxCatchUpTicks int
}

func DefaultConfig() Config {
	return Config{
		TickDuration:  600 * time.Millisecond,
		FrameDuration: time.Second / 60,
	}
}

func (c Config) Validate() error {
	if c.TickDuration <= 0 {
		return fmt.Errorf("tick duration must be positive, got %s", c.TickDuration)
	}
	if c.FrameDuration <= 0 {
		return fmt.Errorf("frame duration must be positive, got %s", c.FrameDuration)
	}
	if c.MaxCatchUpTicks < 0 {
		return fmt.Errorf("max catch-up ticks must not be negative, got %d", c.MaxCatchUpTicks)
	}
	return nil
}

// Scheduler turns elapsed time into fixed-duration ticks and at most one
// frame-update/render pair per cycle. It is not safe for concurrent use;
// drive it from the goroutine that owns the callbacks' state.
type Scheduler struct {
	cfg   Config
	clock Clock
	state State

	onTick   TickFunc
	onUpdate UpdateFunc
	onRender RenderFunc

	tickAcc     time.Duration
	frameAcc    time.Duration
	sinceUpdate time.Duration
	lastStep    time.Time

	ticks            uint64
	lastTickDuration time.Duration

	fps       float64
	fpsFrames int
	fpsWindow time.Duration
}

func New(cfg Config, clock Clock) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loop config: %w", err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{cfg: cfg, clock: clock}, nil
}

// SetCallbacks replaces all three callbacks; nil slots are skipped.
func (s *Scheduler) SetCallbacks(tick TickFunc, update UpdateFunc, render RenderFunc) {
	s.onTick = tick
	s.onUpdate = update
	s.onRender = render
}

// Start enters Running. Coming from Stopped the accumulators start fresh;
// coming from Paused it behaves like Resume.
func (s *Scheduler) Start() {
	switch s.state {
	case Running:
		return
	case Paused:
		s.Resume()
		return
	}
	s.resetAccumulators()
	s.lastStep = s.clock.Now()
	s.state = Running
	slog.Info("Scheduler started", "tick", s.cfg.TickDuration, "frame", s.cfg.FrameDuration)
}

func (s *Scheduler) Stop() {
	if s.state == Stopped {
		return
	}
	s.state = Stopped
	slog.Info("Scheduler stopped", "ticks", s.ticks)
}

func (s *Scheduler) Pause() {
	if s.state != Running {
		return
	}
	s.state = Paused
	slog.Debug("Scheduler paused", "ticks", s.ticks)
}

// Resume continues from Paused. Wall time spent paused is not counted.
func (s *Scheduler) Resume() {
	if s.state != Paused {
		return
	}
	s.lastStep = s.clock.Now()
	s.state = Running
	slog.Debug("Scheduler resumed", "ticks", s.ticks)
}

// Reset stops the scheduler and zeroes every counter.
func (s *Scheduler) Reset() {
	s.state = Stopped
	s.resetAccumulators()
	s.ticks = 0
	s.lastTickDuration = 0
	s.fps = 0
}

func (s *Scheduler) resetAccumulators() {
	s.tickAcc = 0
	s.frameAcc = 0
	s.sinceUpdate = 0
	s.fpsFrames = 0
	s.fpsWindow = 0
}

// Step reads the clock and advances by the time since the previous Step.
func (s *Scheduler) Step() int {
	if s.state != Running {
		return 0
	}
	now := s.clock.Now()
	delta := now.Sub(s.lastStep)
	s.lastStep = now
	return s.Advance(delta)
}

// Advance feeds delta into both accumulators, fires every due tick in order,
// then at most one update/render pair. It returns the number of ticks fired.
func (s *Scheduler) Advance(delta time.Duration) int {
	if s.state != Running {
		return 0
	}
	if delta < 0 {
		delta = 0
	}
	s.tickAcc += delta
	s.frameAcc += delta
	s.sinceUpdate += delta
	defer s.measureFPS(delta)

	fired := 0
	for s.tickAcc >= s.cfg.TickDuration {
		if s.cfg.MaxCatchUpTicks > 0 && fired >= s.cfg.MaxCatchUpTicks {
			dropped := s.tickAcc / s.cfg.TickDuration
			s.tickAcc %= s.cfg.TickDuration
			slog.Warn("Dropping ticks behind schedule", "dropped", int64(dropped), "fired", fired)
			break
		}
		s.tickAcc -= s.cfg.TickDuration
		s.ticks++
		fired++
		if s.onTick != nil {
			start := s.clock.Now()
			s.onTick(s.ticks)
			s.lastTickDuration = s.clock.Now().Sub(start)
		}
		if s.state != Running {
			return fired
		}
	}

	if s.frameAcc < s.cfg.FrameDuration {
		return fired
	}
	s.frameAcc %= s.cfg.FrameDuration
	dt := s.sinceUpdate
	s.sinceUpdate = 0
	s.fpsFrames++

	if s.onUpdate != nil {
		s.onUpdate(dt, s.TickProgress())
	}
	if s.state == Running && s.onRender != nil {
		s.onRender()
	}
	return fired
}

func (s *Scheduler) measureFPS(delta time.Duration) {
	s.fpsWindow += delta
	if s.fpsWindow < time.Second {
		return
	}
	s.fps = float64(s.fpsFrames) / s.fpsWindow.Seconds()
	s.fpsFrames = 0
	s.fpsWindow = 0
}

// Run calls Step every interval until ctx is done or the scheduler is
// stopped. A non-positive interval uses the frame duration.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.cfg.FrameDuration
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.state == Stopped {
				return nil
			}
			s.Step()
		}
	}
}

func (s *Scheduler) FPS() float64 { return s.fps }

// TickProgress is the fraction of the next tick already accumulated.
func (s *Scheduler) TickProgress() float64 {
	return float64(s.tickAcc) / float64(s.cfg.TickDuration)
}

func (s *Scheduler) FrameProgress() float64 {
	return float64(s.frameAcc) / float64(s.cfg.FrameDuration)
}

func (s *Scheduler) Ticks() uint64 { return s.ticks }

func (s *Scheduler) LastTickDuration() time.Duration { return s.lastTickDuration }

func (s *Scheduler) State() State { return s.state }

func (s *Scheduler) Config() Config { return s.cfg }
