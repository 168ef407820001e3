package companion_test

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/critter/internal/companion"
	"github.com/cory-johannsen/critter/internal/game/behavior"
	"github.com/cory-johannsen/critter/internal/game/chance"
	"github.com/cory-johannsen/critter/internal/game/clip"
	"github.com/cory-johannsen/critter/internal/game/motion"
	"github.com/cory-johannsen/critter/internal/game/placement"
)

const petYAML = `
sheet:
  image: pet.png
  width: 320
  height: 128
grid:
  cols: 10
  rows: 4
clips:
  - tag: idle
    row: 0
    count: 4
    fps: 10
  - tag: wander
    row: 1
    count: 6
    fps: 12
  - tag: playful
    row: 2
    count: 3
    duration: 90ms
  - tag: sleepy
    row: 3
    count: 1
    fps: 8
    one_shot: true
`

func loadTable(t require.TestingT) *clip.Table {
	desc, err := clip.LoadDescriptionFromBytes([]byte(petYAML))
	require.NoError(t, err)
	table, err := clip.Load(desc)
	require.NoError(t, err)
	return table
}

type published struct {
	x, y  int
	frame placement.Frame
}

type fakeSurface struct {
	log     []published
	x, y    int
	failPos error
}

func (s *fakeSurface) SetWindowPosition(x, y int) error {
	if s.failPos != nil {
		return s.failPos
	}
	s.x, s.y = x, y
	return nil
}

func (s *fakeSurface) SetVisibleFrame(f placement.Frame) error {
	s.log = append(s.log, published{x: s.x, y: s.y, frame: f})
	return nil
}

func (s *fakeSurface) last() published {
	return s.log[len(s.log)-1]
}

func walkConfig() behavior.Config {
	cfg := behavior.DefaultConfig()
	cfg.Initial = behavior.Wander
	cfg.Start = motion.Vec{X: 100, Y: 100}
	cfg.Facing = motion.Right
	cfg.Bounds = motion.Rect(0, 0, 800, 600)
	cfg.DeadlineMin = 100 * time.Second
	cfg.DeadlineMax = 100 * time.Second
	cfg.Profiles[behavior.Wander] = behavior.Profile{Motion: behavior.MotionRoam, Speed: 50}
	cfg.Profiles[behavior.Sleepy] = behavior.Profile{Motion: behavior.MotionStill, Hold: true, ExitTo: behavior.Idle}
	return cfg
}

func newCompanion(t *testing.T, cfg behavior.Config, src chance.Source, s placement.Surface) *companion.Companion {
	t.Helper()
	c, err := companion.New(uuid.New(), cfg, loadTable(t), src, s, placement.AnchorTopLeft, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestTick_WalksAndClampsAtBound(t *testing.T) {
	s := &fakeSurface{}
	cfg := walkConfig()
	cfg.Initial = behavior.Idle
	c := newCompanion(t, cfg, chance.NewSeededSource(1), s)
	require.NoError(t, c.Enter(behavior.Wander))

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Tick(time.Second))
	}
	st := c.State()
	assert.Equal(t, motion.Vec{X: 600, Y: 100}, st.Position)
	assert.Equal(t, behavior.Wander, st.Mood)
	assert.Equal(t, 600, s.last().x)
	assert.Equal(t, 100, s.last().y)
	assert.False(t, s.last().frame.FlipX)

	require.NoError(t, c.Tick(5*time.Second))
	st = c.State()
	assert.Equal(t, motion.Vec{X: 800, Y: 100}, st.Position)
	assert.Equal(t, motion.Left, st.Facing)
	assert.Equal(t, 800, s.last().x)
	assert.True(t, s.last().frame.FlipX)
}

func TestTick_PublishesActiveFrame(t *testing.T) {
	s := &fakeSurface{}
	c := newCompanion(t, walkConfig(), chance.NewSeededSource(1), s)

	// wander runs at 12 fps; 250ms lands on frame 3.
	require.NoError(t, c.Tick(250*time.Millisecond))
	got := s.last().frame
	assert.Equal(t, "wander", got.Tag)
	assert.Equal(t, 3, got.Index)
	assert.Equal(t, image.Rect(96, 32, 128, 64), got.Rect)
	assert.Equal(t, c.FrameIndex(), got.Index)
}

func TestTick_SleepyExitsOnTheTickAfterFinishing(t *testing.T) {
	s := &fakeSurface{}
	c := newCompanion(t, walkConfig(), chance.NewSeededSource(1), s)

	var changes [][2]behavior.Mood
	c.SetMoodListener(func(_ uuid.UUID, from, to behavior.Mood) {
		changes = append(changes, [2]behavior.Mood{from, to})
	})
	require.NoError(t, c.Enter(behavior.Sleepy))
	assert.Equal(t, "sleepy", c.ClipTag())

	// The one-shot clip lasts 125ms. It finishes during this tick, but the
	// machine only sees the signal on the next one.
	require.NoError(t, c.Tick(200*time.Millisecond))
	assert.Equal(t, behavior.Sleepy, c.State().Mood)

	require.NoError(t, c.Tick(0))
	assert.Equal(t, behavior.Idle, c.State().Mood)
	assert.Equal(t, "idle", c.ClipTag())

	assert.Equal(t, [][2]behavior.Mood{
		{behavior.Wander, behavior.Sleepy},
		{behavior.Sleepy, behavior.Idle},
	}, changes)
}

func TestTick_SleepyIgnoresDeadline(t *testing.T) {
	cfg := walkConfig()
	cfg.DeadlineMin = time.Millisecond
	cfg.DeadlineMax = time.Millisecond
	cfg.Initial = behavior.Sleepy
	s := &fakeSurface{}
	c := newCompanion(t, cfg, chance.NewSeededSource(1), s)

	require.NoError(t, c.Tick(50*time.Millisecond))
	assert.Equal(t, behavior.Sleepy, c.State().Mood)
}

func TestTick_TransitionHookRedirects(t *testing.T) {
	cfg := walkConfig()
	cfg.Initial = behavior.Idle
	cfg.DeadlineMin = time.Second
	cfg.DeadlineMax = time.Second
	s := &fakeSurface{}
	c := newCompanion(t, cfg, chance.NewSeededSource(7), s)
	c.SetTransitionHook(func(from, to behavior.Mood) behavior.Mood { return behavior.Playful })

	require.NoError(t, c.Tick(time.Second))
	assert.Equal(t, behavior.Playful, c.State().Mood)
}

func TestTick_SurfaceLost(t *testing.T) {
	s := &fakeSurface{failPos: errors.New("window destroyed")}
	c := newCompanion(t, walkConfig(), chance.NewSeededSource(1), s)

	err := c.Tick(16 * time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrSurfaceLost)
	assert.Contains(t, err.Error(), "window destroyed")
}

func TestNew_MissingInitialClip(t *testing.T) {
	cfg := walkConfig()
	cfg.Profiles[behavior.Wander] = behavior.Profile{Motion: behavior.MotionRoam, Speed: 50, Clip: "run"}
	_, err := companion.New(uuid.New(), cfg, loadTable(t), chance.NewSeededSource(1), &fakeSurface{}, placement.AnchorTopLeft, zap.NewNop())
	var assetErr *clip.AssetError
	require.ErrorAs(t, err, &assetErr)
}

func TestRoster_TicksEveryMember(t *testing.T) {
	a, b := &fakeSurface{}, &fakeSurface{}
	cfgB := walkConfig()
	cfgB.Start = motion.Vec{X: 300, Y: 200}
	r := companion.NewRoster(
		newCompanion(t, walkConfig(), chance.NewSeededSource(1), a),
		newCompanion(t, cfgB, chance.NewSeededSource(2), b),
	)
	require.Equal(t, 2, r.Len())

	require.NoError(t, r.Tick(time.Second))
	assert.Equal(t, 150, a.last().x)
	assert.Equal(t, 350, b.last().x)
	assert.Equal(t, 200, b.last().y)
}

func TestRoster_StopsAtFirstFailure(t *testing.T) {
	bad := &fakeSurface{failPos: errors.New("gone")}
	good := &fakeSurface{}
	first := newCompanion(t, walkConfig(), chance.NewSeededSource(1), bad)
	r := companion.NewRoster(first, newCompanion(t, walkConfig(), chance.NewSeededSource(1), good))

	err := r.Tick(time.Second)
	require.ErrorIs(t, err, placement.ErrSurfaceLost)
	assert.Contains(t, err.Error(), first.ID().String())
	assert.Empty(t, good.log)
}

type sample struct {
	pos   motion.Vec
	index int
}

func replay(t *rapid.T, seed uint64, dts []time.Duration) []sample {
	cfg := behavior.DefaultConfig()
	cfg.Bounds = motion.Rect(0, 0, 640, 480)
	cfg.Profiles[behavior.Sleepy] = behavior.Profile{Motion: behavior.MotionStill, Hold: true, ExitTo: behavior.Idle}
	c, err := companion.New(uuid.New(), cfg, loadTable(t), chance.NewSeededSource(seed), &fakeSurface{}, placement.AnchorCenter, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := make([]sample, 0, len(dts))
	for _, dt := range dts {
		if err := c.Tick(dt); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		out = append(out, sample{pos: c.State().Position, index: c.FrameIndex()})
	}
	return out
}

func TestProperty_ReplayIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		ms := rapid.SliceOfN(rapid.IntRange(0, 500), 1, 200).Draw(rt, "dts")
		dts := make([]time.Duration, len(ms))
		for i, m := range ms {
			dts[i] = time.Duration(m) * time.Millisecond
		}
		a := replay(rt, seed, dts)
		b := replay(rt, seed, dts)
		for i := range a {
			if a[i] != b[i] {
				rt.Fatalf("tick %d diverged: %+v vs %+v", i, a[i], b[i])
			}
		}
	})
}

func TestProperty_PositionStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		ms := rapid.SliceOfN(rapid.IntRange(0, 2000), 1, 100).Draw(rt, "dts")
		dts := make([]time.Duration, len(ms))
		for i, m := range ms {
			dts[i] = time.Duration(m) * time.Millisecond
		}
		b := motion.Rect(0, 0, 640, 480)
		for i, s := range replay(rt, seed, dts) {
			if !b.Contains(s.pos) {
				rt.Fatalf("tick %d: %v outside bounds", i, s.pos)
			}
		}
	})
}
