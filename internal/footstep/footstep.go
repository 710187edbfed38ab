// Package footstep plays a short tone for every tick the entity moves.
package footstep

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/Versifine/tilewalk/internal/event"
)

const sampleRate = beep.SampleRate(44100)

// Tone is a single beep.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var (
	WalkTone    = Tone{Freq: 220, Duration: 60 * time.Millisecond}
	RunTone     = Tone{Freq: 330, Duration: 40 * time.Millisecond}
	ArrivedTone = Tone{Freq: 660, Duration: 120 * time.Millisecond}
)

type Player interface {
	Play(t Tone) error
}

// SpeakerPlayer plays tones on the default audio device.
type SpeakerPlayer struct {
	mu     sync.Mutex
	closed bool
}

// OpenSpeaker initialises the audio device. Callers should treat a failure
// as "run without sound".
func OpenSpeaker() (*SpeakerPlayer, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &SpeakerPlayer{}, nil
}

func (p *SpeakerPlayer) Play(t Tone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	sine, err := generators.SineTone(sampleRate, t.Freq)
	if err != nil {
		return fmt.Errorf("sine tone %.0fHz: %w", t.Freq, err)
	}
	speaker.Play(beep.Take(sampleRate.N(t.Duration), sine))
	return nil
}

func (p *SpeakerPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	speaker.Close()
}

// Footsteps turns movement events into tones.
type Footsteps struct {
	player Player
	played int
}

func New(player Player) *Footsteps {
	return &Footsteps{player: player}
}

// Attach subscribes to step and arrival events on bus.
func (f *Footsteps) Attach(bus *event.Bus) {
	if f == nil || bus == nil {
		return
	}
	bus.Subscribe(event.EventMovementStep, f.onStep)
	bus.Subscribe(event.EventMovementArrived, f.onArrived)
}

func (f *Footsteps) onStep(evt any) {
	step, ok := evt.(*event.StepEvent)
	if !ok {
		return
	}
	tone := WalkTone
	if step.Run {
		tone = RunTone
	}
	f.play(tone)
}

func (f *Footsteps) onArrived(evt any) {
	if _, ok := evt.(*event.ArrivedEvent); !ok {
		return
	}
	f.play(ArrivedTone)
}

func (f *Footsteps) play(t Tone) {
	if f.player == nil {
		return
	}
	if err := f.player.Play(t); err != nil {
		slog.Warn("Footstep tone failed", "freq", t.Freq, "error", err)
		return
	}
	f.played++
}

// Played returns how many tones were handed to the player.
func (f *Footsteps) Played() int {
	return f.played
}
