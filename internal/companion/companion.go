// Package companion drives one or more creatures through the fixed per-tick
// pipeline: behavior, motion, frame, placement.
package companion

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/game/anim"
	"github.com/cory-johannsen/critter/internal/game/behavior"
	"github.com/cory-johannsen/critter/internal/game/chance"
	"github.com/cory-johannsen/critter/internal/game/clip"
	"github.com/cory-johannsen/critter/internal/game/motion"
	"github.com/cory-johannsen/critter/internal/game/placement"
)

// MoodListener is told about every mood change after it happens.
type MoodListener func(id uuid.UUID, from, to behavior.Mood)

// Companion is one creature instance. It owns its behavior machine and frame
// cursor; the clip table behind the cursor is shared and read-only.
//
// A Companion is not safe for concurrent use. One goroutine calls Tick.
type Companion struct {
	id       uuid.UUID
	machine  *behavior.Machine
	cursor   *anim.Cursor
	bridge   *placement.Bridge
	listener MoodListener
	logger   *zap.Logger
}

// New builds a companion in cfg.Initial that publishes to surface.
//
// Precondition: cfg must reference only clip tags present in table; src,
// surface and logger must be non-nil.
// Postcondition: Returns a ready Companion or the configuration error.
func New(id uuid.UUID, cfg behavior.Config, table *clip.Table, src chance.Source, surface placement.Surface, anchor placement.Anchor, logger *zap.Logger) (*Companion, error) {
	logger = logger.With(zap.String("companion", id.String()))

	initial := cfg.Profiles[cfg.Initial].ClipTag(cfg.Initial)
	if !table.Has(initial) {
		return nil, fmt.Errorf("companion: initial clip: %w", table.Require(initial))
	}
	cursor := anim.NewCursor(table, initial)

	m, err := behavior.NewMachine(cfg, src, cursor, logger)
	if err != nil {
		return nil, fmt.Errorf("companion: %w", err)
	}
	return &Companion{
		id:      id,
		machine: m,
		cursor:  cursor,
		bridge:  placement.NewBridge(surface, anchor),
		logger:  logger,
	}, nil
}

// ID returns the companion's identity.
func (c *Companion) ID() uuid.UUID { return c.id }

// State returns a copy of the behavior state.
func (c *Companion) State() behavior.State { return c.machine.State() }

// FrameIndex returns the index of the visible frame in the active clip.
func (c *Companion) FrameIndex() int { return c.cursor.Index() }

// ClipTag returns the active animation tag.
func (c *Companion) ClipTag() string { return c.cursor.Tag() }

// SetTransitionHook installs a hook that may redirect mood decisions.
func (c *Companion) SetTransitionHook(h behavior.TransitionHook) { c.machine.SetHook(h) }

// SetMoodListener installs a listener for mood changes. Nil removes it.
func (c *Companion) SetMoodListener(l MoodListener) { c.listener = l }

// Enter forces the companion into mood.
func (c *Companion) Enter(mood behavior.Mood) error {
	from := c.machine.Mood()
	if err := c.machine.Enter(mood); err != nil {
		return err
	}
	c.notify(from)
	return nil
}

// Tick advances the companion by dt and publishes the result.
//
// The order is fixed: behavior update, motion step, frame advance, publish.
// Bump and clip-finished signals raised here are consumed by the next Tick.
//
// Postcondition: Returns an error wrapping placement.ErrSurfaceLost if the
// surface failed; the caller must stop ticking.
func (c *Companion) Tick(dt time.Duration) error {
	from := c.machine.Mood()
	c.machine.Update(dt)
	c.notify(from)

	st := c.machine.State()
	pos, facing, bumped := motion.Step(st.Position, st.Facing, c.machine.Intent(), dt, c.machine.Bounds())
	c.machine.Place(pos, facing)
	if bumped {
		c.machine.NotifyBump()
	}

	if c.cursor.Advance(dt) {
		c.machine.NotifyClipFinished()
	}

	f := c.cursor.Frame()
	err := c.bridge.Publish(pos, placement.Frame{
		Tag:   c.cursor.Tag(),
		Index: c.cursor.Index(),
		Rect:  f.Rect,
		FlipX: facing.X < 0,
	})
	if err != nil {
		c.logger.Error("publishing frame", zap.Error(err))
		return err
	}
	return nil
}

func (c *Companion) notify(from behavior.Mood) {
	to := c.machine.Mood()
	if c.listener != nil && to != from {
		c.listener(c.id, from, to)
	}
}
