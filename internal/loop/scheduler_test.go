package loop

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newScheduler(t *testing.T, cfg Config) (*Scheduler, *ManualClock) {
	t.Helper()
	clock := NewManualClock(epoch)
	s, err := New(cfg, clock)
	require.NoError(t, err)
	return s, clock
}

func testConfig() Config {
	return Config{TickDuration: 100 * time.Millisecond, FrameDuration: 10 * time.Millisecond}
}

// recorder logs callback order as short strings.
type recorder struct {
	calls []string
	dts   []time.Duration
}

func (r *recorder) wire(s *Scheduler) {
	s.SetCallbacks(
		func(tick uint64) { r.calls = append(r.calls, fmt.Sprintf("t%d", tick)) },
		func(dt time.Duration, _ float64) {
			r.calls = append(r.calls, "u")
			r.dts = append(r.dts, dt)
		},
		func() { r.calls = append(r.calls, "r") },
	)
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero tick", Config{FrameDuration: time.Millisecond}},
		{"zero frame", Config{TickDuration: time.Millisecond}},
		{"negative catch-up", Config{TickDuration: time.Millisecond, FrameDuration: time.Millisecond, MaxCatchUpTicks: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil)
			assert.Error(t, err)
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestStoppedSchedulerIgnoresTime(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	rec := &recorder{}
	rec.wire(s)

	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, s.Advance(time.Second))
	assert.Empty(t, rec.calls)
}

func TestTicksFireBeforeUpdateAndRender(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	rec := &recorder{}
	rec.wire(s)
	s.Start()

	fired := s.Advance(350 * time.Millisecond)

	assert.Equal(t, 3, fired)
	assert.Equal(t, []string{"t1", "t2", "t3", "u", "r"}, rec.calls)
	assert.Equal(t, []time.Duration{350 * time.Millisecond}, rec.dts)
	assert.InDelta(t, 0.5, s.TickProgress(), 1e-9)
	assert.Equal(t, uint64(3), s.Ticks())
}

func TestTickNumbersIncreaseAcrossCycles(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	var ticks []uint64
	s.SetCallbacks(func(n uint64) { ticks = append(ticks, n) }, nil, nil)
	s.Start()

	for i := 0; i < 25; i++ {
		s.Advance(37 * time.Millisecond)
	}

	require.Len(t, ticks, 9)
	for i := 1; i < len(ticks); i++ {
		assert.Equal(t, ticks[i-1]+1, ticks[i])
	}
}

func TestFrameAccumulatorKeepsRemainder(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	rec := &recorder{}
	rec.wire(s)
	s.Start()

	s.Advance(6 * time.Millisecond)
	assert.Empty(t, rec.calls)

	s.Advance(7 * time.Millisecond)
	assert.Equal(t, []string{"u", "r"}, rec.calls)
	assert.Equal(t, []time.Duration{13 * time.Millisecond}, rec.dts)
	assert.InDelta(t, 0.3, s.FrameProgress(), 1e-9)

	s.Advance(7 * time.Millisecond)
	assert.Equal(t, []time.Duration{13 * time.Millisecond, 7 * time.Millisecond}, rec.dts)
}

func TestUpdateReceivesTickProgress(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	var progress []float64
	s.SetCallbacks(nil, func(_ time.Duration, p float64) { progress = append(progress, p) }, nil)
	s.Start()

	s.Advance(40 * time.Millisecond)
	s.Advance(80 * time.Millisecond)

	require.Len(t, progress, 2)
	assert.InDelta(t, 0.4, progress[0], 1e-9)
	assert.InDelta(t, 0.2, progress[1], 1e-9)
}

func TestStopInsideTickHaltsDelivery(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	var calls []string
	s.SetCallbacks(
		func(n uint64) {
			calls = append(calls, fmt.Sprintf("t%d", n))
			if n == 2 {
				s.Stop()
				calls = append(calls, "after-stop")
			}
		},
		func(time.Duration, float64) { calls = append(calls, "u") },
		func() { calls = append(calls, "r") },
	)
	s.Start()

	fired := s.Advance(500 * time.Millisecond)

	assert.Equal(t, 2, fired)
	assert.Equal(t, []string{"t1", "t2", "after-stop"}, calls)
	assert.Equal(t, Stopped, s.State())
}

func TestPauseInsideUpdateSkipsRender(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	rec := &recorder{}
	s.SetCallbacks(nil, func(time.Duration, float64) {
		rec.calls = append(rec.calls, "u")
		s.Pause()
	}, func() { rec.calls = append(rec.calls, "r") })
	s.Start()

	s.Advance(20 * time.Millisecond)

	assert.Equal(t, []string{"u"}, rec.calls)
	assert.Equal(t, Paused, s.State())
}

func TestPauseKeepsAccumulatorsAndSkipsPausedTime(t *testing.T) {
	s, clock := newScheduler(t, testConfig())
	rec := &recorder{}
	rec.wire(s)
	s.Start()

	clock.Advance(50 * time.Millisecond)
	s.Step()
	s.Pause()

	clock.Advance(10 * time.Second)
	assert.Zero(t, s.Step())
	assert.Zero(t, s.Advance(time.Second))

	s.Resume()
	assert.Zero(t, s.Step())
	assert.InDelta(t, 0.5, s.TickProgress(), 1e-9)

	clock.Advance(60 * time.Millisecond)
	assert.Equal(t, 1, s.Step())
}

func TestStartAfterStopUsesFreshAccumulators(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	s.Start()
	s.Advance(250 * time.Millisecond)
	s.Stop()

	s.Start()

	assert.Zero(t, s.TickProgress())
	assert.Zero(t, s.FrameProgress())
	assert.Equal(t, uint64(2), s.Ticks())
	s.Advance(100 * time.Millisecond)
	assert.Equal(t, uint64(3), s.Ticks())
}

func TestStartFromPausedResumes(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	s.Start()
	s.Advance(50 * time.Millisecond)
	s.Pause()

	s.Start()

	assert.Equal(t, Running, s.State())
	assert.InDelta(t, 0.5, s.TickProgress(), 1e-9)
}

func TestMaxCatchUpDropsExcessTicks(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCatchUpTicks = 2
	s, _ := newScheduler(t, cfg)
	s.Start()

	fired := s.Advance(530 * time.Millisecond)

	assert.Equal(t, 2, fired)
	assert.InDelta(t, 0.3, s.TickProgress(), 1e-9)
}

func TestFPSOverOneSecondWindow(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	s.Start()

	for i := 0; i < 99; i++ {
		s.Advance(10 * time.Millisecond)
	}
	assert.Zero(t, s.FPS())

	s.Advance(10 * time.Millisecond)
	assert.InDelta(t, 100, s.FPS(), 1e-9)
}

func TestResetZeroesCounters(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	s.Start()
	s.Advance(time.Second)

	s.Reset()

	assert.Equal(t, Stopped, s.State())
	assert.Zero(t, s.Ticks())
	assert.Zero(t, s.FPS())
	assert.Zero(t, s.TickProgress())
}

// stepClock moves forward a fixed amount on every read.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestRunReturnsWhenStopped(t *testing.T) {
	s, err := New(testConfig(), &stepClock{now: epoch, step: 60 * time.Millisecond})
	require.NoError(t, err)
	s.SetCallbacks(func(uint64) { s.Stop() }, nil, nil)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, s.Run(ctx, time.Millisecond))
	assert.Equal(t, uint64(1), s.Ticks())
}

func TestRunHonoursContext(t *testing.T) {
	s, _ := newScheduler(t, testConfig())
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Run(ctx, time.Millisecond), context.Canceled)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "state(9)", State(9).String())
}
