// Package behavior implements the companion's mood state machine: when to
// change mood, which mood comes next, and what motion each mood implies.
package behavior

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cory-johannsen/critter/internal/game/motion"
)

// Mood is a behavior state tag. The four built-in moods always exist in the
// default configuration; configuration may add more.
type Mood string

const (
	Idle    Mood = "idle"
	Wander  Mood = "wander"
	Playful Mood = "playful"
	Sleepy  Mood = "sleepy"
)

// MotionKind selects how a mood moves.
type MotionKind string

const (
	// MotionStill stands in place.
	MotionStill MotionKind = "still"
	// MotionRoam walks along the current facing and occasionally reverses.
	MotionRoam MotionKind = "roam"
	// MotionFrolic moves faster and turns to a random cardinal direction.
	MotionFrolic MotionKind = "frolic"
)

// Profile describes how one mood behaves.
type Profile struct {
	Motion MotionKind
	// Speed is in pixels per second; ignored for MotionStill.
	Speed float64
	// TurnChance is the per-tick probability of changing direction.
	TurnChance float64
	// Clip is the animation tag played in this mood. Empty means the mood tag.
	Clip string
	// Hold makes the mood ignore the decision deadline and leave only when its
	// clip reports it has finished. Set for moods whose clip is one-shot.
	Hold bool
	// ExitTo is the mood entered when a held clip finishes. Empty means Idle.
	ExitTo Mood
}

// ClipTag returns the animation tag for a mood using this profile.
func (p Profile) ClipTag(m Mood) string {
	if p.Clip != "" {
		return p.Clip
	}
	return string(m)
}

// Config parameterizes a Machine.
type Config struct {
	Initial        Mood
	Start          motion.Vec
	Facing         motion.Vec
	Bounds         motion.Bounds
	DeadlineMin    time.Duration
	DeadlineMax    time.Duration
	RedecideOnBump bool
	Profiles       map[Mood]Profile
	// Transitions maps the current mood to candidate next moods and their
	// relative weights.
	Transitions map[Mood]map[Mood]float64
}

// DefaultProfiles returns the built-in mood profiles.
func DefaultProfiles() map[Mood]Profile {
	return map[Mood]Profile{
		Idle:    {Motion: MotionStill},
		Wander:  {Motion: MotionRoam, Speed: 60, TurnChance: 0.005},
		Playful: {Motion: MotionFrolic, Speed: 140, TurnChance: 0.03},
		Sleepy:  {Motion: MotionStill, ExitTo: Idle},
	}
}

// DefaultTransitions returns the built-in transition weights.
func DefaultTransitions() map[Mood]map[Mood]float64 {
	return map[Mood]map[Mood]float64{
		Idle:    {Idle: 1, Wander: 4, Playful: 1, Sleepy: 1},
		Wander:  {Idle: 3, Wander: 2, Playful: 1},
		Playful: {Idle: 2, Wander: 2, Playful: 1},
		Sleepy:  {Idle: 1},
	}
}

// DefaultConfig returns a complete configuration for a 1920x1080 work area.
func DefaultConfig() Config {
	return Config{
		Initial:        Idle,
		Start:          motion.Vec{X: 40, Y: 40},
		Facing:         motion.Right,
		Bounds:         motion.Rect(0, 0, 1920, 1080),
		DeadlineMin:    2 * time.Second,
		DeadlineMax:    6 * time.Second,
		RedecideOnBump: true,
		Profiles:       DefaultProfiles(),
		Transitions:    DefaultTransitions(),
	}
}

// Moods returns every configured mood in sorted order.
func (c Config) Moods() []Mood {
	out := make([]Mood, 0, len(c.Profiles))
	for m := range c.Profiles {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClipTags returns the animation tags the configuration needs, sorted and
// de-duplicated.
func (c Config) ClipTags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.Moods() {
		tag := c.Profiles[m].ClipTag(m)
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if the configuration is usable, or an error
// describing every violation.
func (c Config) Validate() error {
	var errs []string

	if _, ok := c.Profiles[c.Initial]; !ok {
		errs = append(errs, fmt.Sprintf("initial mood %q has no profile", c.Initial))
	}
	if err := c.Bounds.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.DeadlineMin < 0 {
		errs = append(errs, fmt.Sprintf("deadline min must be >= 0, got %v", c.DeadlineMin))
	}
	if c.DeadlineMax < c.DeadlineMin {
		errs = append(errs, fmt.Sprintf("deadline max %v must not be below min %v", c.DeadlineMax, c.DeadlineMin))
	}

	for _, m := range c.Moods() {
		p := c.Profiles[m]
		switch p.Motion {
		case MotionStill, MotionRoam, MotionFrolic:
		default:
			errs = append(errs, fmt.Sprintf("mood %q: unknown motion %q", m, p.Motion))
		}
		switch {
		case math.IsNaN(p.Speed) || math.IsInf(p.Speed, 0):
			errs = append(errs, fmt.Sprintf("mood %q: speed must be finite, got %v", m, p.Speed))
		case p.Speed < 0:
			errs = append(errs, fmt.Sprintf("mood %q: speed must be >= 0, got %v", m, p.Speed))
		}
		if !(p.TurnChance >= 0 && p.TurnChance <= 1) {
			errs = append(errs, fmt.Sprintf("mood %q: turn chance must be in [0,1], got %v", m, p.TurnChance))
		}
		if p.ExitTo != "" {
			if _, ok := c.Profiles[p.ExitTo]; !ok {
				errs = append(errs, fmt.Sprintf("mood %q: exit mood %q has no profile", m, p.ExitTo))
			}
		} else if p.Hold {
			if _, ok := c.Profiles[Idle]; !ok {
				errs = append(errs, fmt.Sprintf("mood %q: held mood needs exit_to when %q is not configured", m, Idle))
			}
		}
	}

	froms := make([]Mood, 0, len(c.Transitions))
	for from := range c.Transitions {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })
	for _, from := range froms {
		if _, ok := c.Profiles[from]; !ok {
			errs = append(errs, fmt.Sprintf("transitions from unknown mood %q", from))
		}
		for _, to := range sortedTargets(c.Transitions[from]) {
			w := c.Transitions[from][to]
			if _, ok := c.Profiles[to]; !ok {
				errs = append(errs, fmt.Sprintf("transition %q -> %q targets unknown mood", from, to))
			}
			if w < 0 {
				errs = append(errs, fmt.Sprintf("transition %q -> %q has negative weight %v", from, to, w))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("behavior config: " + strings.Join(errs, "; "))
	}
	return nil
}

func sortedTargets(weights map[Mood]float64) []Mood {
	out := make([]Mood, 0, len(weights))
	for m := range weights {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
