package behavior

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/game/chance"
	"github.com/cory-johannsen/critter/internal/game/motion"
)

// State is the creature's mutable behavior state.
type State struct {
	Mood        Mood
	TimeInState time.Duration
	Deadline    time.Duration
	Position    motion.Vec
	Facing      motion.Vec
}

// ClipSetter receives clip changes. *anim.Cursor satisfies it.
type ClipSetter interface {
	SetClip(tag string)
	Restart()
}

// TransitionHook may redirect a decision. It receives the current mood and the
// mood the weighted choice picked, and returns the mood to enter.
type TransitionHook func(from, to Mood) Mood

// Machine is the mood state machine for one companion. It is not safe for
// concurrent use; one tick loop owns it.
type Machine struct {
	cfg    Config
	roller *chance.Roller
	clips  ClipSetter
	logger *zap.Logger
	hook   TransitionHook

	state        State
	clipFinished bool
	bumped       bool
}

// NewMachine creates a Machine in cfg.Initial with a freshly sampled deadline.
//
// Precondition: src, clips and logger must be non-nil.
// Postcondition: Returns a Machine whose position lies within cfg.Bounds, or an
// error if cfg is invalid.
func NewMachine(cfg Config, src chance.Source, clips ClipSetter, logger *zap.Logger) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{
		cfg:    cfg,
		roller: chance.NewLoggedRoller(src, logger),
		clips:  clips,
		logger: logger,
		state: State{
			Position: cfg.Bounds.Clamp(cfg.Start),
			Facing:   cfg.Facing,
		},
	}
	m.enter(cfg.Initial, "initial")
	return m, nil
}

// SetHook installs a transition hook. A nil hook disables redirection.
func (m *Machine) SetHook(h TransitionHook) {
	m.hook = h
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// Mood returns the current mood.
func (m *Machine) Mood() Mood {
	return m.state.Mood
}

// Profile returns the current mood's profile.
func (m *Machine) Profile() Profile {
	return m.cfg.Profiles[m.state.Mood]
}

// Bounds returns the rectangle the position is confined to.
func (m *Machine) Bounds() motion.Bounds {
	return m.cfg.Bounds
}

// Has reports whether mood is configured.
func (m *Machine) Has(mood Mood) bool {
	_, ok := m.cfg.Profiles[mood]
	return ok
}

// NotifyClipFinished records that the active one-shot clip has played through.
// The next Update consumes the signal.
func (m *Machine) NotifyClipFinished() {
	m.clipFinished = true
}

// NotifyBump records that motion was clamped at a bound. The next Update
// consumes the signal.
func (m *Machine) NotifyBump() {
	m.bumped = true
}

// Place stores the integrated position and facing.
func (m *Machine) Place(pos, facing motion.Vec) {
	m.state.Position = pos
	m.state.Facing = facing
}

// Enter forces a transition to mood, as if a decision had picked it.
//
// Precondition: mood must be configured.
func (m *Machine) Enter(mood Mood) error {
	if !m.Has(mood) {
		return fmt.Errorf("behavior: unknown mood %q", mood)
	}
	m.enter(mood, "forced")
	return nil
}

// Update advances time in the current mood by dt and makes at most one
// decision: leave a held mood whose clip finished, resample the mood when the
// deadline has passed (or a bound was hit and RedecideOnBump is set), or
// otherwise maybe turn.
//
// Postcondition: pending clip-finished and bump signals are cleared.
func (m *Machine) Update(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	m.state.TimeInState += dt
	p := m.Profile()

	switch {
	case p.Hold:
		if m.clipFinished {
			next := p.ExitTo
			if next == "" {
				next = Idle
			}
			m.enter(next, "clip finished")
		}
	case m.state.TimeInState >= m.state.Deadline:
		m.decide("deadline")
	case m.bumped && m.cfg.RedecideOnBump:
		m.decide("bump")
	default:
		m.maybeTurn(p)
	}

	m.clipFinished = false
	m.bumped = false
}

// Intent derives the motion intent from the current mood and facing.
func (m *Machine) Intent() motion.Intent {
	return IntentFor(m.Profile(), m.state.Facing)
}

// IntentFor is the pure mapping from a mood profile and facing to motion.
func IntentFor(p Profile, facing motion.Vec) motion.Intent {
	if p.Motion == MotionStill {
		return motion.Still
	}
	return motion.Intent{Direction: facing, Speed: p.Speed}
}

func (m *Machine) decide(reason string) {
	from := m.state.Mood
	weights := m.cfg.Transitions[from]
	opts := make([]chance.Option, 0, len(weights))
	for _, to := range sortedTargets(weights) {
		opts = append(opts, chance.Option{Tag: string(to), Weight: weights[to]})
	}

	next := from
	if tag, ok := m.roller.Pick(opts); ok {
		next = Mood(tag)
	}
	if m.hook != nil {
		if redirected := m.hook(from, next); redirected != next {
			if m.Has(redirected) {
				next = redirected
				reason += " (redirected)"
			} else {
				m.logger.Warn("transition hook returned unknown mood",
					zap.String("from", string(from)),
					zap.String("picked", string(next)),
					zap.String("returned", string(redirected)),
				)
			}
		}
	}
	m.enter(next, reason)
}

func (m *Machine) enter(mood Mood, reason string) {
	from := m.state.Mood
	p := m.cfg.Profiles[mood]

	m.state.Mood = mood
	m.state.TimeInState = 0
	m.state.Deadline = m.roller.Between(m.cfg.DeadlineMin, m.cfg.DeadlineMax)

	m.clips.SetClip(p.ClipTag(mood))
	if p.Hold {
		m.clips.Restart()
	}
	if p.Motion != MotionStill && m.state.Facing.IsZero() {
		m.state.Facing = m.randomHorizontal()
	}

	m.logger.Debug("mood transition",
		zap.String("from", string(from)),
		zap.String("to", string(mood)),
		zap.String("reason", reason),
		zap.Duration("deadline", m.state.Deadline),
	)
}

func (m *Machine) maybeTurn(p Profile) {
	switch p.Motion {
	case MotionRoam:
		if m.roller.Chance(p.TurnChance) {
			m.state.Facing = m.state.Facing.Neg()
		}
	case MotionFrolic:
		if m.roller.Chance(p.TurnChance) {
			m.state.Facing = cardinals[m.roller.Intn(len(cardinals))]
		}
	}
}

var cardinals = []motion.Vec{motion.Left, motion.Right, motion.Up, motion.Down}

func (m *Machine) randomHorizontal() motion.Vec {
	if m.roller.Intn(2) == 0 {
		return motion.Left
	}
	return motion.Right
}
