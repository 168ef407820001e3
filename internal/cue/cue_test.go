package cue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/critter/internal/config"
	"github.com/cory-johannsen/critter/internal/cue"
	"github.com/cory-johannsen/critter/internal/game/behavior"
)

func TestFrequency_BuiltInMoodsAreDistinct(t *testing.T) {
	seen := map[float64]behavior.Mood{}
	for _, m := range []behavior.Mood{behavior.Idle, behavior.Wander, behavior.Playful, behavior.Sleepy} {
		f := cue.Frequency(m)
		_, dup := seen[f]
		assert.False(t, dup, "mood %s shares pitch %v", m, f)
		seen[f] = m
	}
	assert.Equal(t, 880.0, cue.Frequency(behavior.Playful))
}

func TestFrequency_CustomMoodIsStableAndInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := behavior.Mood(rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "mood"))
		f := cue.Frequency(m)
		if f != cue.Frequency(m) {
			rt.Fatalf("pitch for %q is not stable", m)
		}
		if _, builtin := map[behavior.Mood]bool{"idle": true, "wander": true, "playful": true, "sleepy": true}[m]; !builtin && (f < 300 || f >= 800) {
			rt.Fatalf("pitch %v for %q out of range", f, m)
		}
	})
}

func TestStreamer_LengthMatchesConfig(t *testing.T) {
	p := cue.NewPlayer(config.AudioConfig{Enabled: true, SampleRate: 8000, Length: 50 * time.Millisecond}, zap.NewNop())
	s, err := p.Streamer(behavior.Wander)
	require.NoError(t, err)

	buf := make([][2]float64, 128)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	assert.Equal(t, 400, total)
}

func TestStreamer_ToneAboveNyquistFails(t *testing.T) {
	// 880 Hz cannot be represented at 1000 samples per second.
	p := cue.NewPlayer(config.AudioConfig{SampleRate: 1000, Length: time.Millisecond}, zap.NewNop())
	_, err := p.Streamer(behavior.Playful)
	assert.Error(t, err)
}

func TestChirp_BeforeInitIsNoOp(t *testing.T) {
	p := cue.NewPlayer(config.AudioConfig{SampleRate: 44100, Length: 80 * time.Millisecond}, zap.NewNop())
	assert.NotPanics(t, func() {
		p.Chirp(behavior.Idle)
		p.Close()
	})
}
