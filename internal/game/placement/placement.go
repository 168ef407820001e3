// Package placement is the boundary between the simulation and the host
// window system. It converts a logical position into window coordinates and
// pushes the visible sprite frame to the rendering surface.
package placement

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/cory-johannsen/critter/internal/game/motion"
)

// ErrSurfaceLost reports that the host can no longer position or draw the
// overlay, e.g. because the window was destroyed. It is fatal and never retried.
var ErrSurfaceLost = errors.New("placement: surface lost")

// Capabilities is the set of window properties the overlay asks the host to
// honor. Hosts apply what they support and ignore the rest. Sticky shows the
// window on every workspace; SkipTaskbar keeps it out of the taskbar.
type Capabilities struct {
	Title            string
	Width            int
	Height           int
	AlwaysOnTop      bool
	Borderless       bool
	NonFocusable     bool
	Sticky           bool
	SkipTaskbar      bool
	Transparent      bool
	MousePassthrough bool
}

// OverlayCapabilities returns the capability set for a desktop companion
// window of the given size.
func OverlayCapabilities(title string, w, h int) Capabilities {
	return Capabilities{
		Title:        title,
		Width:        w,
		Height:       h,
		AlwaysOnTop:  true,
		Borderless:   true,
		NonFocusable: true,
		Sticky:       true,
		SkipTaskbar:  true,
		Transparent:  true,
	}
}

// Frame is what the surface should show.
type Frame struct {
	Tag   string
	Index int
	// Rect is the frame's rectangle within the sprite sheet.
	Rect image.Rectangle
	// FlipX mirrors the frame horizontally.
	FlipX bool
}

// Surface is one overlay window provided by the host.
type Surface interface {
	SetWindowPosition(x, y int) error
	SetVisibleFrame(f Frame) error
}

// Host creates overlay surfaces.
type Host interface {
	CreateOverlay(caps Capabilities) (Surface, error)
	// WorkArea returns the usable size of the primary display in pixels.
	WorkArea() (w, h int)
}

// Anchor selects which point of the frame the logical position refers to.
type Anchor string

const (
	AnchorTopLeft Anchor = "top_left"
	AnchorCenter  Anchor = "center"
)

// ParseAnchor validates an anchor name.
func ParseAnchor(s string) (Anchor, error) {
	switch Anchor(s) {
	case AnchorTopLeft, AnchorCenter:
		return Anchor(s), nil
	case "":
		return AnchorTopLeft, nil
	}
	return "", fmt.Errorf("unknown anchor %q", s)
}

// Bridge publishes simulation output to a Surface. It holds no simulation
// state.
type Bridge struct {
	surface Surface
	anchor  Anchor
}

// NewBridge creates a Bridge writing to surface.
//
// Precondition: surface must be non-nil.
func NewBridge(surface Surface, anchor Anchor) *Bridge {
	if surface == nil {
		panic("placement.NewBridge: surface must not be nil")
	}
	return &Bridge{surface: surface, anchor: anchor}
}

// Origin converts a logical position into the window's top-left screen
// coordinate for frame f.
func (b *Bridge) Origin(pos motion.Vec, f Frame) (int, int) {
	x, y := pos.X, pos.Y
	if b.anchor == AnchorCenter {
		x -= float64(f.Rect.Dx()) / 2
		y -= float64(f.Rect.Dy()) / 2
	}
	return int(math.Round(x)), int(math.Round(y))
}

// Publish moves the window to pos and shows frame f.
//
// Postcondition: any surface failure is returned wrapped in ErrSurfaceLost.
func (b *Bridge) Publish(pos motion.Vec, f Frame) error {
	x, y := b.Origin(pos, f)
	if err := b.surface.SetWindowPosition(x, y); err != nil {
		return fmt.Errorf("%w: setting window position: %w", ErrSurfaceLost, err)
	}
	if err := b.surface.SetVisibleFrame(f); err != nil {
		return fmt.Errorf("%w: setting visible frame: %w", ErrSurfaceLost, err)
	}
	return nil
}
