// Package anim drives sprite animation: it turns elapsed time into the frame
// index of whichever clip is active.
package anim

import (
	"time"

	"github.com/cory-johannsen/critter/internal/game/clip"
)

// Cursor tracks playback of one clip for one companion. The clip itself is
// owned by the shared clip.Table; the cursor only references it.
//
// Invariant: 0 <= Index() < Clip().Len().
// Invariant: 0 <= Elapsed() < Clip().Total().
type Cursor struct {
	table   *clip.Table
	clip    *clip.Clip
	elapsed time.Duration
	index   int
	done    bool
}

// NewCursor creates a cursor playing tag from frame 0.
//
// Precondition: table must be non-nil and contain tag; Lookup panics otherwise.
func NewCursor(table *clip.Table, tag string) *Cursor {
	return &Cursor{table: table, clip: table.Lookup(tag)}
}

// SetClip switches to tag. Switching to a different tag always restarts at
// frame 0; requesting the active tag changes nothing.
//
// Precondition: tag must be present in the table.
// Postcondition: Tag() == tag.
func (c *Cursor) SetClip(tag string) {
	if c.clip.Tag == tag {
		return
	}
	c.clip = c.table.Lookup(tag)
	c.Restart()
}

// Restart rewinds the active clip to frame 0 and re-arms its finished signal.
func (c *Cursor) Restart() {
	c.elapsed = 0
	c.index = 0
	c.done = false
}

// Advance moves playback forward by dt. Looping clips wrap; one-shot clips stop
// on their last frame.
//
// Postcondition: returns true exactly once per play-through of a one-shot clip,
// on the call where cumulative time first reaches the clip's total duration;
// returns false for looping clips and for dt <= 0.
func (c *Cursor) Advance(dt time.Duration) bool {
	if dt <= 0 || c.done {
		return false
	}
	c.elapsed += dt

	// A full cycle returns a looping clip to the same frame.
	if !c.clip.OneShot {
		if total := c.clip.Total(); c.elapsed >= total {
			c.elapsed %= total
		}
	}

	last := len(c.clip.Frames) - 1
	for c.elapsed >= c.clip.Frames[c.index].Duration {
		if c.clip.OneShot && c.index == last {
			c.elapsed = 0
			c.done = true
			return true
		}
		c.elapsed -= c.clip.Frames[c.index].Duration
		c.index = (c.index + 1) % len(c.clip.Frames)
	}
	return false
}

// Tag returns the active clip's tag.
func (c *Cursor) Tag() string {
	return c.clip.Tag
}

// Clip returns the active clip.
func (c *Cursor) Clip() *clip.Clip {
	return c.clip
}

// Index returns the current frame index.
func (c *Cursor) Index() int {
	return c.index
}

// Elapsed returns the time spent so far in the current frame.
func (c *Cursor) Elapsed() time.Duration {
	return c.elapsed
}

// Finished reports whether a one-shot clip has played through.
func (c *Cursor) Finished() bool {
	return c.done
}

// Frame returns the frame currently showing.
func (c *Cursor) Frame() clip.Frame {
	return c.clip.Frames[c.index]
}
