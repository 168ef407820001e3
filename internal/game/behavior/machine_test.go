package behavior_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/critter/internal/game/behavior"
	"github.com/cory-johannsen/critter/internal/game/chance"
	"github.com/cory-johannsen/critter/internal/game/motion"
)

type recordingClips struct {
	tags     []string
	restarts int
}

func (r *recordingClips) SetClip(tag string) { r.tags = append(r.tags, tag) }
func (r *recordingClips) Restart()           { r.restarts++ }

func (r *recordingClips) last() string {
	if len(r.tags) == 0 {
		return ""
	}
	return r.tags[len(r.tags)-1]
}

// seqSource replays Float64 values in order and answers Intn with 0.
type seqSource struct {
	floats []float64
	i      int
}

func (s *seqSource) Float64() float64 {
	if s.i >= len(s.floats) {
		return 0
	}
	f := s.floats[s.i]
	s.i++
	return f
}

func (s *seqSource) Intn(int) int { return 0 }

func calmConfig() behavior.Config {
	cfg := behavior.DefaultConfig()
	cfg.Start = motion.Vec{X: 100, Y: 100}
	cfg.Bounds = motion.Rect(0, 0, 800, 600)
	cfg.DeadlineMin = 100 * time.Second
	cfg.DeadlineMax = 100 * time.Second
	cfg.Profiles[behavior.Wander] = behavior.Profile{Motion: behavior.MotionRoam, Speed: 50}
	return cfg
}

func newMachine(t *testing.T, cfg behavior.Config, src chance.Source) (*behavior.Machine, *recordingClips) {
	t.Helper()
	clips := &recordingClips{}
	m, err := behavior.NewMachine(cfg, src, clips, zap.NewNop())
	require.NoError(t, err)
	return m, clips
}

func TestNewMachine_InitialState(t *testing.T) {
	m, clips := newMachine(t, calmConfig(), chance.NewSeededSource(1))
	st := m.State()
	assert.Equal(t, behavior.Idle, st.Mood)
	assert.Equal(t, time.Duration(0), st.TimeInState)
	assert.Equal(t, 100*time.Second, st.Deadline)
	assert.Equal(t, motion.Vec{X: 100, Y: 100}, st.Position)
	assert.Equal(t, motion.Right, st.Facing)
	assert.Equal(t, "idle", clips.last())
	assert.Equal(t, motion.Still, m.Intent())
}

func TestNewMachine_ClampsStart(t *testing.T) {
	cfg := calmConfig()
	cfg.Start = motion.Vec{X: -50, Y: 9000}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(1))
	assert.Equal(t, motion.Vec{X: 0, Y: 600}, m.State().Position)
}

func TestNewMachine_InvalidConfig(t *testing.T) {
	cfg := calmConfig()
	cfg.Initial = "dancing"
	_, err := behavior.NewMachine(cfg, chance.NewSeededSource(1), &recordingClips{}, zap.NewNop())
	assert.Error(t, err)
}

func TestUpdate_AccruesTimeBeforeDeadline(t *testing.T) {
	m, clips := newMachine(t, calmConfig(), chance.NewSeededSource(1))
	m.Update(time.Second)
	m.Update(2 * time.Second)
	m.Update(-time.Second)
	assert.Equal(t, 3*time.Second, m.State().TimeInState)
	assert.Equal(t, behavior.Idle, m.Mood())
	assert.Len(t, clips.tags, 1)
}

func TestUpdate_DeadlineTriggersWeightedDecision(t *testing.T) {
	cfg := calmConfig()
	cfg.DeadlineMin = time.Second
	cfg.DeadlineMax = 3 * time.Second
	cfg.Transitions = map[behavior.Mood]map[behavior.Mood]float64{
		behavior.Idle: {behavior.Wander: 1, behavior.Playful: 1},
	}
	// 0.5 -> deadline 2s; 0.7 -> second option in sorted order (wander); 0.25 -> next deadline 1.5s.
	src := &seqSource{floats: []float64{0.5, 0.7, 0.25}}
	m, clips := newMachine(t, cfg, src)
	require.Equal(t, 2*time.Second, m.State().Deadline)

	m.Update(1999 * time.Millisecond)
	assert.Equal(t, behavior.Idle, m.Mood())

	m.Update(time.Millisecond)
	st := m.State()
	assert.Equal(t, behavior.Wander, st.Mood)
	assert.Equal(t, time.Duration(0), st.TimeInState)
	assert.Equal(t, 1500*time.Millisecond, st.Deadline)
	assert.Equal(t, "wander", clips.last())
	assert.Equal(t, motion.Intent{Direction: motion.Right, Speed: 50}, m.Intent())
}

func TestUpdate_NoCandidatesStaysAndResamples(t *testing.T) {
	cfg := calmConfig()
	cfg.DeadlineMin = time.Second
	cfg.DeadlineMax = time.Second
	cfg.Transitions = map[behavior.Mood]map[behavior.Mood]float64{}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(3))
	m.Update(time.Second)
	assert.Equal(t, behavior.Idle, m.Mood())
	assert.Equal(t, time.Duration(0), m.State().TimeInState)
}

func TestUpdate_HeldMoodLeavesOnClipFinished(t *testing.T) {
	cfg := calmConfig()
	p := cfg.Profiles[behavior.Sleepy]
	p.Hold = true
	cfg.Profiles[behavior.Sleepy] = p
	cfg.DeadlineMin = 0
	cfg.DeadlineMax = 0

	m, clips := newMachine(t, cfg, chance.NewSeededSource(9))
	require.NoError(t, m.Enter(behavior.Sleepy))
	assert.Equal(t, "sleepy", clips.last())
	assert.Equal(t, 1, clips.restarts)

	// Deadline is zero but the held mood waits for its clip.
	m.Update(time.Minute)
	assert.Equal(t, behavior.Sleepy, m.Mood())
	assert.Equal(t, motion.Still, m.Intent())

	m.NotifyClipFinished()
	m.Update(10 * time.Millisecond)
	assert.Equal(t, behavior.Idle, m.Mood())
	assert.Equal(t, "idle", clips.last())
}

func TestUpdate_ClipFinishedIgnoredOutsideHeldMood(t *testing.T) {
	m, _ := newMachine(t, calmConfig(), chance.NewSeededSource(2))
	require.NoError(t, m.Enter(behavior.Wander))
	m.NotifyClipFinished()
	m.Update(time.Millisecond)
	assert.Equal(t, behavior.Wander, m.Mood())
}

func TestUpdate_BumpForcesDecision(t *testing.T) {
	cfg := calmConfig()
	cfg.Transitions = map[behavior.Mood]map[behavior.Mood]float64{
		behavior.Wander: {behavior.Playful: 1},
	}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(4))
	require.NoError(t, m.Enter(behavior.Wander))

	m.NotifyBump()
	m.Update(time.Millisecond)
	assert.Equal(t, behavior.Playful, m.Mood())
}

func TestUpdate_BumpIgnoredWhenDisabled(t *testing.T) {
	cfg := calmConfig()
	cfg.RedecideOnBump = false
	cfg.Transitions = map[behavior.Mood]map[behavior.Mood]float64{
		behavior.Wander: {behavior.Playful: 1},
	}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(4))
	require.NoError(t, m.Enter(behavior.Wander))

	m.NotifyBump()
	m.Update(time.Millisecond)
	assert.Equal(t, behavior.Wander, m.Mood())

	// The signal does not linger.
	m.Update(time.Millisecond)
	assert.Equal(t, behavior.Wander, m.Mood())
}

func TestUpdate_RoamTurnsWithCertainty(t *testing.T) {
	cfg := calmConfig()
	cfg.Profiles[behavior.Wander] = behavior.Profile{Motion: behavior.MotionRoam, Speed: 50, TurnChance: 1}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(5))
	require.NoError(t, m.Enter(behavior.Wander))

	m.Update(time.Millisecond)
	assert.Equal(t, motion.Left, m.State().Facing)
	m.Update(time.Millisecond)
	assert.Equal(t, motion.Right, m.State().Facing)
}

func TestUpdate_FrolicPicksCardinal(t *testing.T) {
	cfg := calmConfig()
	cfg.Profiles[behavior.Playful] = behavior.Profile{Motion: behavior.MotionFrolic, Speed: 120, TurnChance: 1}
	m, _ := newMachine(t, cfg, &seqSource{floats: []float64{0}})
	require.NoError(t, m.Enter(behavior.Playful))

	m.Update(time.Millisecond)
	// seqSource.Intn always answers 0, the first cardinal.
	assert.Equal(t, motion.Left, m.State().Facing)
	assert.Equal(t, 120.0, m.Intent().Speed)
}

func TestEnter_PicksFacingWhenNone(t *testing.T) {
	cfg := calmConfig()
	cfg.Facing = motion.None
	m, _ := newMachine(t, cfg, &seqSource{})
	assert.Equal(t, motion.None, m.State().Facing)
	require.NoError(t, m.Enter(behavior.Wander))
	assert.Equal(t, motion.Left, m.State().Facing)
}

func TestEnter_UnknownMood(t *testing.T) {
	m, _ := newMachine(t, calmConfig(), chance.NewSeededSource(1))
	assert.Error(t, m.Enter("moonwalk"))
}

func TestHook_RedirectsDecision(t *testing.T) {
	cfg := calmConfig()
	cfg.DeadlineMin = 0
	cfg.DeadlineMax = 0
	cfg.Transitions = map[behavior.Mood]map[behavior.Mood]float64{
		behavior.Idle: {behavior.Wander: 1},
	}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(1))

	var seen [2]behavior.Mood
	m.SetHook(func(from, to behavior.Mood) behavior.Mood {
		seen = [2]behavior.Mood{from, to}
		return behavior.Sleepy
	})
	m.Update(time.Millisecond)
	assert.Equal(t, [2]behavior.Mood{behavior.Idle, behavior.Wander}, seen)
	assert.Equal(t, behavior.Sleepy, m.Mood())
}

func TestHook_UnknownMoodIgnored(t *testing.T) {
	cfg := calmConfig()
	cfg.DeadlineMin = 0
	cfg.DeadlineMax = 0
	cfg.Transitions = map[behavior.Mood]map[behavior.Mood]float64{
		behavior.Idle: {behavior.Wander: 1},
	}
	m, _ := newMachine(t, cfg, chance.NewSeededSource(1))
	m.SetHook(func(_, _ behavior.Mood) behavior.Mood { return "moonwalk" })
	m.Update(time.Millisecond)
	assert.Equal(t, behavior.Wander, m.Mood())
}

func TestIntentFor(t *testing.T) {
	assert.Equal(t, motion.Still, behavior.IntentFor(behavior.Profile{Motion: behavior.MotionStill, Speed: 99}, motion.Right))
	assert.Equal(t, motion.Intent{Direction: motion.Up, Speed: 7},
		behavior.IntentFor(behavior.Profile{Motion: behavior.MotionFrolic, Speed: 7}, motion.Up))
}

// TestMachine_DeterministicReplay: identical seeds and dt sequences produce
// identical mood/facing histories.
func TestMachine_DeterministicReplay(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		dts := rapid.SliceOfN(rapid.Int64Range(0, int64(3*time.Second)), 1, 200).Draw(rt, "dts")
		cfg := behavior.DefaultConfig()

		run := func() []behavior.State {
			m, err := behavior.NewMachine(cfg, chance.NewSeededSource(seed), &recordingClips{}, zap.NewNop())
			require.NoError(rt, err)
			var out []behavior.State
			for _, dt := range dts {
				m.Update(time.Duration(dt))
				out = append(out, m.State())
			}
			return out
		}
		assert.Equal(rt, run(), run())
	})
}

// TestMachine_DeadlineWithinRange: every sampled deadline lies within [min,max].
func TestMachine_DeadlineWithinRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := behavior.DefaultConfig()
		cfg.DeadlineMin = time.Duration(rapid.Int64Range(0, int64(5*time.Second)).Draw(rt, "min"))
		cfg.DeadlineMax = cfg.DeadlineMin + time.Duration(rapid.Int64Range(0, int64(5*time.Second)).Draw(rt, "span"))
		m, err := behavior.NewMachine(cfg, chance.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), &recordingClips{}, zap.NewNop())
		require.NoError(rt, err)
		for i := 0; i < 100; i++ {
			m.Update(500 * time.Millisecond)
			d := m.State().Deadline
			assert.GreaterOrEqual(rt, d, cfg.DeadlineMin)
			assert.LessOrEqual(rt, d, cfg.DeadlineMax)
		}
	})
}
