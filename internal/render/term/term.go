// Package term renders companions into a terminal with tcell. Each overlay
// is a small block of cells; screen pixels are mapped onto cells by a fixed
// cell size.
package term

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/game/placement"
)

// ErrScreenClosed is returned by surfaces after the host has been closed.
var ErrScreenClosed = errors.New("term: screen closed")

// Cell size in pixels used to map positions and frame sizes onto the grid.
const (
	CellWidth  = 8
	CellHeight = 16
)

// glyphs holds the two-frame look of each built-in clip, facing right.
var glyphs = map[string][2]string{
	"idle":    {"(o.o)", "(-.-)"},
	"wander":  {"(o.o)>", "(o_o)>"},
	"playful": {"\\(^o^)/", "/(^o^)\\"},
	"sleepy":  {"(-.-)z", "(-.-)Z"},
}

// Host owns the terminal screen and draws every surface it created.
type Host struct {
	screen tcell.Screen
	logger *zap.Logger

	mu       sync.Mutex
	surfaces []*Surface
	closed   bool
}

// NewHost wraps an initialized screen.
//
// Precondition: screen must be non-nil and initialized; logger must be non-nil.
func NewHost(screen tcell.Screen, logger *zap.Logger) *Host {
	return &Host{screen: screen, logger: logger}
}

// OpenHost creates and initializes the real terminal screen.
func OpenHost(logger *zap.Logger) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("term: creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("term: initializing screen: %w", err)
	}
	screen.HideCursor()
	return NewHost(screen, logger), nil
}

// Screen returns the underlying tcell screen.
func (h *Host) Screen() tcell.Screen { return h.screen }

// WorkArea returns the terminal size in pixels.
func (h *Host) WorkArea() (int, int) {
	cols, rows := h.screen.Size()
	return cols * CellWidth, rows * CellHeight
}

// CreateOverlay adds a surface. The terminal has no window manager, so the
// capability flags are only logged.
func (h *Host) CreateOverlay(caps placement.Capabilities) (placement.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrScreenClosed
	}
	s := &Surface{host: h, style: palette[len(h.surfaces)%len(palette)]}
	h.surfaces = append(h.surfaces, s)
	h.logger.Debug("terminal overlay created",
		zap.String("title", caps.Title),
		zap.Int("width", caps.Width),
		zap.Int("height", caps.Height),
		zap.Int("surfaces", len(h.surfaces)),
	)
	return s, nil
}

var palette = []tcell.Style{
	tcell.StyleDefault.Foreground(tcell.ColorGreen),
	tcell.StyleDefault.Foreground(tcell.ColorYellow),
	tcell.StyleDefault.Foreground(tcell.ColorAqua),
	tcell.StyleDefault.Foreground(tcell.ColorFuchsia),
}

// Flush redraws every surface and shows the result.
func (h *Host) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrScreenClosed
	}
	h.screen.Clear()
	for _, s := range h.surfaces {
		s.draw(h.screen)
	}
	h.screen.Show()
	return nil
}

// Close finalizes the screen. Surfaces fail with ErrScreenClosed afterwards.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.screen.Fini()
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Surface is one companion's block of cells.
type Surface struct {
	host  *Host
	style tcell.Style

	col, row int
	frame    placement.Frame
	shown    bool
}

// SetWindowPosition moves the surface to the cell holding pixel (x, y).
func (s *Surface) SetWindowPosition(x, y int) error {
	if s.host.isClosed() {
		return ErrScreenClosed
	}
	s.host.mu.Lock()
	s.col, s.row = x/CellWidth, y/CellHeight
	s.host.mu.Unlock()
	return nil
}

// SetVisibleFrame records the frame drawn on the next Flush.
func (s *Surface) SetVisibleFrame(f placement.Frame) error {
	if s.host.isClosed() {
		return ErrScreenClosed
	}
	s.host.mu.Lock()
	s.frame, s.shown = f, true
	s.host.mu.Unlock()
	return nil
}

// Label returns the text drawn for f.
func Label(f placement.Frame) string {
	g, ok := glyphs[f.Tag]
	if !ok {
		return fmt.Sprintf("[%s %d]", f.Tag, f.Index)
	}
	text := g[f.Index%2]
	if f.FlipX {
		text = mirror(text)
	}
	return text
}

var mirrored = map[rune]rune{
	'(': ')', ')': '(', '<': '>', '>': '<', '/': '\\', '\\': '/', '[': ']', ']': '[',
}

func mirror(s string) string {
	in := []rune(s)
	out := make([]rune, len(in))
	for i, r := range in {
		if m, ok := mirrored[r]; ok {
			r = m
		}
		out[len(in)-1-i] = r
	}
	return string(out)
}

func (s *Surface) draw(screen tcell.Screen) {
	if !s.shown {
		return
	}
	for i, r := range []rune(Label(s.frame)) {
		screen.SetContent(s.col+i, s.row, r, nil, s.style)
	}
}
