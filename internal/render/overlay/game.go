package overlay

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Game adapts a tick function to ebiten's fixed-step loop. Update advances
// the simulation by one step; Draw shows the surface's current frame.
type Game struct {
	surface *Surface
	tick    func(dt time.Duration) error
	step    time.Duration
	width   int
	height  int
	logger  *zap.Logger
}

// Run hands the calling goroutine to ebiten and calls tick tps times per
// second with a fixed step. It returns nil when the window is closed and the
// tick error otherwise.
//
// Precondition: CreateOverlay has succeeded; tps > 0; must be called from
// the main goroutine.
func (h *Host) Run(tps int, tick func(dt time.Duration) error) error {
	if h.surface == nil {
		return errors.New("overlay: Run before CreateOverlay")
	}
	g := NewGame(h.surface, h.caps.Width, h.caps.Height, tps, tick, h.logger)
	ebiten.SetTPS(tps)
	err := ebiten.RunGameWithOptions(g, RunOptions(h.caps))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// NewGame returns a Game for surface sized w by h.
func NewGame(surface *Surface, w, h, tps int, tick func(dt time.Duration) error, logger *zap.Logger) *Game {
	return &Game{
		surface: surface,
		tick:    tick,
		step:    time.Second / time.Duration(tps),
		width:   w,
		height:  h,
		logger:  logger,
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.surface.markClosed()
		g.logger.Info("overlay window closing")
		return ebiten.Termination
	}
	return g.tick(g.step)
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Clear()
	g.surface.draw(screen)
}

// Layout implements ebiten.Game. The logical screen is the frame size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
