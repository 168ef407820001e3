package companion

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/config"
	"github.com/cory-johannsen/critter/internal/game/behavior"
	"github.com/cory-johannsen/critter/internal/game/chance"
	"github.com/cory-johannsen/critter/internal/game/clip"
	"github.com/cory-johannsen/critter/internal/game/motion"
	"github.com/cory-johannsen/critter/internal/game/placement"
)

// BehaviorConfig translates creature configuration into a behavior.Config,
// checking every mood's clip against table.
//
// Moods whose clip is one-shot are held until the clip finishes. With
// Bounds.UseWorkArea the roaming rectangle is the work area shrunk by the
// largest frame on the sides anchor requires, so the whole sprite stays on
// screen.
//
// Precondition: table must be non-nil.
// Postcondition: Returns a valid Config, a *clip.AssetError for a missing
// clip, or a configuration error. A non-positive work area is an error when
// Bounds.UseWorkArea is set.
func BehaviorConfig(c config.CreatureConfig, table *clip.Table, anchor placement.Anchor, workW, workH int) (behavior.Config, error) {
	profiles, err := profilesFrom(c.Moods)
	if err != nil {
		return behavior.Config{}, err
	}
	transitions := behavior.DefaultTransitions()
	if len(c.Transitions) > 0 {
		transitions = make(map[behavior.Mood]map[behavior.Mood]float64, len(c.Transitions))
		for from, targets := range c.Transitions {
			row := make(map[behavior.Mood]float64, len(targets))
			for to, w := range targets {
				row[behavior.Mood(to)] = w
			}
			transitions[behavior.Mood(from)] = row
		}
	}

	facing, err := motion.ParseFacing(c.InitialFacing)
	if err != nil {
		return behavior.Config{}, err
	}

	bounds := motion.Rect(c.Bounds.MinX, c.Bounds.MinY, c.Bounds.MaxX, c.Bounds.MaxY)
	if c.Bounds.UseWorkArea {
		if workW <= 0 || workH <= 0 {
			return behavior.Config{}, fmt.Errorf("creature.bounds.use_work_area: host reported work area %dx%d; set explicit bounds", workW, workH)
		}
		bounds = workAreaBounds(table, anchor, workW, workH)
	}

	cfg := behavior.Config{
		Initial:        behavior.Mood(c.InitialMood),
		Start:          motion.Vec{X: c.Start.X, Y: c.Start.Y},
		Facing:         facing,
		Bounds:         bounds,
		DeadlineMin:    c.Deadline.Min,
		DeadlineMax:    c.Deadline.Max,
		RedecideOnBump: c.RedecideOnBump,
		Profiles:       profiles,
		Transitions:    transitions,
	}

	if err := table.Require(cfg.ClipTags()...); err != nil {
		return behavior.Config{}, err
	}
	for m, p := range cfg.Profiles {
		p.Hold = table.Lookup(p.ClipTag(m)).OneShot
		cfg.Profiles[m] = p
	}

	if err := cfg.Validate(); err != nil {
		return behavior.Config{}, err
	}
	return cfg, nil
}

// workAreaBounds returns the positions at which a frame anchored by anchor
// lies fully inside a workW by workH area.
func workAreaBounds(table *clip.Table, anchor placement.Anchor, workW, workH int) motion.Bounds {
	fw, fh := table.MaxFrameSize()
	b := motion.Rect(0, 0, float64(workW), float64(workH)).Inset(float64(fw), float64(fh))
	if anchor == placement.AnchorCenter {
		half := motion.Vec{X: float64(fw) / 2, Y: float64(fh) / 2}
		b.Min = b.Min.Add(half)
		b.Max = b.Max.Add(half)
	}
	return b
}

func profilesFrom(moods map[string]config.MoodConfig) (map[behavior.Mood]behavior.Profile, error) {
	if len(moods) == 0 {
		return behavior.DefaultProfiles(), nil
	}
	out := make(map[behavior.Mood]behavior.Profile, len(moods))
	for name, mc := range moods {
		kind := behavior.MotionKind(mc.Motion)
		switch kind {
		case behavior.MotionStill, behavior.MotionRoam, behavior.MotionFrolic:
		case "":
			kind = behavior.MotionStill
		default:
			return nil, fmt.Errorf("creature.moods.%s.motion: unknown motion %q", name, mc.Motion)
		}
		out[behavior.Mood(name)] = behavior.Profile{
			Motion:     kind,
			Speed:      mc.Speed,
			TurnChance: mc.TurnChance,
			Clip:       mc.Clip,
			ExitTo:     behavior.Mood(mc.ExitTo),
		}
	}
	return out, nil
}

// SourceFor returns the random source for the i-th companion. A configured
// seed yields a reproducible source per index; otherwise crypto/rand is used.
func SourceFor(seed *uint64, i int) chance.Source {
	if seed == nil {
		return chance.NewCryptoSource()
	}
	return chance.NewSeededSource(*seed + uint64(i))
}

// Capabilities returns the overlay request for the window configuration,
// sized to the largest frame in table.
func Capabilities(w config.WindowConfig, table *clip.Table) placement.Capabilities {
	fw, fh := table.MaxFrameSize()
	return placement.Capabilities{
		Title:            w.Title,
		Width:            fw,
		Height:           fh,
		AlwaysOnTop:      w.AlwaysOnTop,
		Borderless:       w.Borderless,
		NonFocusable:     w.NonFocusable,
		Sticky:           w.Sticky,
		SkipTaskbar:      w.SkipTaskbar,
		Transparent:      w.Transparent,
		MousePassthrough: w.MousePassthrough,
	}
}

// Hooks are optional callbacks attached to every spawned companion.
type Hooks struct {
	// Transition, when set, builds a per-companion transition hook.
	Transition func(id uuid.UUID) behavior.TransitionHook
	// MoodChange is told about every mood change.
	MoodChange MoodListener
}

// Spawn creates cfg.Creature.Count companions, each on its own overlay
// surface from host, sharing table. Each starts one frame width to the right
// of the previous one.
//
// Precondition: cfg must be valid; table, host and logger must be non-nil.
// Postcondition: Returns a Roster with Count members, or the first error.
// Surface creation failures wrap placement.ErrSurfaceLost.
func Spawn(cfg config.Config, table *clip.Table, host placement.Host, hooks Hooks, logger *zap.Logger) (*Roster, error) {
	anchor, err := placement.ParseAnchor(cfg.Window.Anchor)
	if err != nil {
		return nil, err
	}
	workW, workH := host.WorkArea()
	bcfg, err := BehaviorConfig(cfg.Creature, table, anchor, workW, workH)
	if err != nil {
		return nil, fmt.Errorf("building behavior config: %w", err)
	}
	caps := Capabilities(cfg.Window, table)

	members := make([]*Companion, 0, cfg.Creature.Count)
	for i := 0; i < cfg.Creature.Count; i++ {
		surface, err := host.CreateOverlay(caps)
		if err != nil {
			return nil, fmt.Errorf("%w: creating overlay %d: %w", placement.ErrSurfaceLost, i, err)
		}
		own := bcfg
		own.Start.X += float64(i * caps.Width)
		id := uuid.New()
		c, err := New(id, own, table, SourceFor(cfg.Creature.Seed, i), surface, anchor, logger)
		if err != nil {
			return nil, err
		}
		if hooks.Transition != nil {
			c.SetTransitionHook(hooks.Transition(id))
		}
		c.SetMoodListener(hooks.MoodChange)
		members = append(members, c)
		logger.Info("companion spawned",
			zap.String("companion", id.String()),
			zap.String("mood", string(c.State().Mood)),
			zap.Stringer("position", c.State().Position),
		)
	}
	return NewRoster(members...), nil
}
