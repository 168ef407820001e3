// Package cue plays a short tone whenever a companion changes mood.
package cue

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/config"
	"github.com/cory-johannsen/critter/internal/game/behavior"
)

// moodTones are the chirp frequencies of the built-in moods, in Hz.
var moodTones = map[behavior.Mood]float64{
	behavior.Idle:    440,
	behavior.Wander:  523.25,
	behavior.Playful: 880,
	behavior.Sleepy:  220,
}

// Frequency returns the chirp pitch for mood. Configured moods without a
// built-in tone get a stable pitch between 300 and 800 Hz derived from the
// name.
func Frequency(mood behavior.Mood) float64 {
	if f, ok := moodTones[mood]; ok {
		return f
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(mood))
	return 300 + float64(h.Sum32()%500)
}

// Player mixes mood chirps onto the system speaker.
type Player struct {
	rate   beep.SampleRate
	length time.Duration
	logger *zap.Logger

	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewPlayer creates a Player for cfg. The speaker is not touched until Init.
//
// Precondition: logger must be non-nil.
func NewPlayer(cfg config.AudioConfig, logger *zap.Logger) *Player {
	return &Player{
		rate:   beep.SampleRate(cfg.SampleRate),
		length: cfg.Length,
		logger: logger,
		mixer:  &beep.Mixer{},
	}
}

// Init opens the speaker with a 100ms buffer and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("cue: opening speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Streamer returns the finite chirp for mood.
func (p *Player) Streamer(mood behavior.Mood) (beep.Streamer, error) {
	tone, err := generators.SineTone(p.rate, Frequency(mood))
	if err != nil {
		return nil, fmt.Errorf("cue: tone for %q: %w", mood, err)
	}
	return beep.Take(p.rate.N(p.length), tone), nil
}

// Chirp queues the chirp for the mood just entered. It is a no-op before Init.
func (p *Player) Chirp(mood behavior.Mood) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	s, err := p.Streamer(mood)
	if err != nil {
		p.logger.Warn("skipping chirp", zap.Error(err))
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close silences pending chirps and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
