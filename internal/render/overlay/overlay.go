// Package overlay is the desktop backend: a single borderless, transparent,
// always-on-top ebiten window that shows one sprite frame at a time.
package overlay

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/game/placement"
)

var (
	// ErrWindowClosed is returned by the surface once the window is closing.
	ErrWindowClosed = errors.New("overlay: window closed")
	// ErrSingleWindow is returned when a second overlay is requested; ebiten
	// drives exactly one window per process.
	ErrSingleWindow = errors.New("overlay: only one window per process")
)

// LoadSheet reads the sprite-sheet image from path.
func LoadSheet(path string) (*ebiten.Image, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("overlay: loading sheet %q: %w", path, err)
	}
	return img, nil
}

// Host creates the overlay window from a loaded sprite sheet.
type Host struct {
	sheet  *ebiten.Image
	logger *zap.Logger

	surface *Surface
	caps    placement.Capabilities
}

// NewHost returns a host drawing frames from sheet.
//
// Precondition: sheet and logger must be non-nil.
func NewHost(sheet *ebiten.Image, logger *zap.Logger) *Host {
	return &Host{sheet: sheet, logger: logger}
}

// WorkArea returns the size of the monitor the window is on.
func (h *Host) WorkArea() (int, int) {
	if m := ebiten.Monitor(); m != nil {
		return m.Size()
	}
	return 0, 0
}

// CreateOverlay applies caps to the ebiten window and returns its surface.
// It must be called before Run.
func (h *Host) CreateOverlay(caps placement.Capabilities) (placement.Surface, error) {
	if h.surface != nil {
		return nil, ErrSingleWindow
	}
	if caps.Width <= 0 || caps.Height <= 0 {
		return nil, fmt.Errorf("overlay: window size %dx%d", caps.Width, caps.Height)
	}
	ebiten.SetWindowTitle(caps.Title)
	ebiten.SetWindowSize(caps.Width, caps.Height)
	ebiten.SetWindowDecorated(!caps.Borderless)
	ebiten.SetWindowFloating(caps.AlwaysOnTop)
	ebiten.SetWindowMousePassthrough(caps.MousePassthrough)
	ebiten.SetWindowClosingHandled(true)

	h.caps = caps
	h.surface = newSurface(h.sheet, h.sheet.Bounds(), ebiten.SetWindowPosition)
	h.logger.Info("overlay window configured",
		zap.String("title", caps.Title),
		zap.Int("width", caps.Width),
		zap.Int("height", caps.Height),
		zap.Bool("always_on_top", caps.AlwaysOnTop),
		zap.Bool("borderless", caps.Borderless),
		zap.Bool("transparent", caps.Transparent),
	)
	return h.surface, nil
}

// RunOptions translates the capabilities ebiten only accepts at start-up.
func RunOptions(caps placement.Capabilities) *ebiten.RunGameOptions {
	return &ebiten.RunGameOptions{
		ScreenTransparent: caps.Transparent,
		InitUnfocused:     caps.NonFocusable,
		SkipTaskbar:       caps.SkipTaskbar,
	}
}

// Surface is the overlay window seen by the placement bridge.
type Surface struct {
	sheet  *ebiten.Image
	bounds image.Rectangle
	move   func(x, y int)

	mu     sync.Mutex
	frame  placement.Frame
	shown  bool
	closed bool
}

func newSurface(sheet *ebiten.Image, bounds image.Rectangle, move func(x, y int)) *Surface {
	return &Surface{sheet: sheet, bounds: bounds, move: move}
}

// SetWindowPosition moves the window's top-left corner to (x, y).
func (s *Surface) SetWindowPosition(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrWindowClosed
	}
	s.move(x, y)
	return nil
}

// SetVisibleFrame selects the sheet rectangle drawn on the next frame.
func (s *Surface) SetVisibleFrame(f placement.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrWindowClosed
	}
	if f.Rect.Empty() || !f.Rect.In(s.bounds) {
		return fmt.Errorf("overlay: frame %s[%d] rect %v outside sheet %v", f.Tag, f.Index, f.Rect, s.bounds)
	}
	s.frame, s.shown = f, true
	return nil
}

func (s *Surface) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Surface) current() (placement.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.shown
}

// FrameGeoM positions a frame at the window origin, mirrored around its
// vertical center line when FlipX is set.
func FrameGeoM(f placement.Frame) ebiten.GeoM {
	var m ebiten.GeoM
	if f.FlipX {
		m.Scale(-1, 1)
		m.Translate(float64(f.Rect.Dx()), 0)
	}
	return m
}

func (s *Surface) draw(screen *ebiten.Image) {
	f, ok := s.current()
	if !ok {
		return
	}
	img := s.sheet.SubImage(f.Rect).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{GeoM: FrameGeoM(f)}
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(img, op)
}
