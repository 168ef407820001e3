package term

import (
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// Input polls terminal events until the user quits. It satisfies the
// server.Service contract.
type Input struct {
	host    *Host
	onRune  func(r rune)
	stopped atomic.Bool
}

// NewInput returns an input loop for host. onRune, when non-nil, receives
// every printable key other than the quit keys.
func NewInput(host *Host, onRune func(r rune)) *Input {
	return &Input{host: host, onRune: onRune}
}

// Start blocks until Escape, Ctrl-C or q is pressed, or Stop is called.
func (in *Input) Start() error {
	screen := in.host.Screen()
	for !in.stopped.Load() {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if isQuit(ev) {
				return nil
			}
			if ev.Key() == tcell.KeyRune && in.onRune != nil {
				in.onRune(ev.Rune())
			}
		}
	}
	return nil
}

// Stop wakes the poll loop and ends it.
func (in *Input) Stop() {
	in.stopped.Store(true)
	_ = in.host.Screen().PostEvent(tcell.NewEventInterrupt(nil))
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
