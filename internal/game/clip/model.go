// Package clip provides the animation clip table: named, ordered sprite-frame
// sequences loaded once from a sprite-sheet description and shared read-only by
// every companion in the process.
package clip

import (
	"fmt"
	"image"
	"sort"
	"time"
)

// Frame is one rectangle of the sprite sheet shown for Duration.
//
// Invariant: Rect is non-empty and lies within the sheet; Duration > 0.
type Frame struct {
	Rect     image.Rectangle
	Duration time.Duration
}

// Clip is a named ordered sequence of frames.
//
// Invariant: len(Frames) >= 1.
type Clip struct {
	Tag     string
	Frames  []Frame
	OneShot bool
}

// Len returns the number of frames in the clip.
func (c *Clip) Len() int {
	return len(c.Frames)
}

// Total returns the sum of all frame durations.
//
// Postcondition: Total() > 0 for any clip produced by Load.
func (c *Clip) Total() time.Duration {
	var total time.Duration
	for _, f := range c.Frames {
		total += f.Duration
	}
	return total
}

// Table maps clip tags to clips. A Table is immutable once built.
//
// Invariant: every clip in the table satisfies the Clip invariants.
type Table struct {
	sheet  Sheet
	clips  map[string]*Clip
	sorted []string
}

// Sheet identifies the image the frame rectangles refer to.
type Sheet struct {
	Image  string
	Width  int
	Height int
}

// Sheet returns the sheet the table's rectangles index into.
func (t *Table) Sheet() Sheet {
	return t.sheet
}

// Has reports whether tag names a clip in the table.
func (t *Table) Has(tag string) bool {
	_, ok := t.clips[tag]
	return ok
}

// Lookup returns the clip for tag.
//
// Precondition: tag must be present in the table. A missing tag means the
// behavior configuration and the sprite description disagree, which is a
// programming error: Lookup panics with an UnknownClipError.
func (t *Table) Lookup(tag string) *Clip {
	c, ok := t.clips[tag]
	if !ok {
		panic(UnknownClipError{Tag: tag})
	}
	return c
}

// Tags returns all clip tags in sorted order.
func (t *Table) Tags() []string {
	out := make([]string, len(t.sorted))
	copy(out, t.sorted)
	return out
}

// MaxFrameSize returns the largest frame width and height across all clips.
// The overlay window is sized to this so every frame fits.
func (t *Table) MaxFrameSize() (int, int) {
	var w, h int
	for _, c := range t.clips {
		for _, f := range c.Frames {
			w = max(w, f.Rect.Dx())
			h = max(h, f.Rect.Dy())
		}
	}
	return w, h
}

// Require checks that every tag is present.
//
// Postcondition: Returns nil iff all tags are present; otherwise an *AssetError
// naming the first missing tag.
func (t *Table) Require(tags ...string) error {
	for _, tag := range tags {
		if !t.Has(tag) {
			return &AssetError{Clip: tag, Reason: "clip required by behavior configuration is not defined"}
		}
	}
	return nil
}

func newTable(sheet Sheet, clips []*Clip) *Table {
	t := &Table{sheet: sheet, clips: make(map[string]*Clip, len(clips))}
	for _, c := range clips {
		t.clips[c.Tag] = c
		t.sorted = append(t.sorted, c.Tag)
	}
	sort.Strings(t.sorted)
	return t
}

// AssetError reports a malformed or out-of-range sprite-sheet description.
type AssetError struct {
	// Clip is the offending clip tag; empty for sheet-level problems.
	Clip   string
	Reason string
}

// Error implements error.
func (e *AssetError) Error() string {
	if e.Clip == "" {
		return "sprite asset: " + e.Reason
	}
	return fmt.Sprintf("sprite asset: clip %q: %s", e.Clip, e.Reason)
}

// UnknownClipError is the panic value raised by Lookup for an absent tag.
type UnknownClipError struct {
	Tag string
}

// Error implements error.
func (e UnknownClipError) Error() string {
	return fmt.Sprintf("clip: unknown clip %q", e.Tag)
}
