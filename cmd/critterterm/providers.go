package main

import (
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/app"
	"github.com/cory-johannsen/critter/internal/companion"
	"github.com/cory-johannsen/critter/internal/config"
	"github.com/cory-johannsen/critter/internal/cue"
	"github.com/cory-johannsen/critter/internal/game/behavior"
	"github.com/cory-johannsen/critter/internal/game/clip"
	"github.com/cory-johannsen/critter/internal/observability"
	"github.com/cory-johannsen/critter/internal/render/term"
	"github.com/cory-johannsen/critter/internal/scripting"
	"github.com/cory-johannsen/critter/internal/server"
)

// ConfigPath is the configuration file given on the command line.
type ConfigPath string

// Preview is the assembled terminal preview.
type Preview struct {
	Logger    *zap.Logger
	Lifecycle *server.Lifecycle
	Roster    *companion.Roster
}

// ProviderSet lists every constructor the injector may use.
var ProviderSet = wire.NewSet(
	provideConfig,
	provideLogger,
	provideTable,
	provideHost,
	provideScripts,
	provideCue,
	provideRoster,
	provideLifecycle,
	wire.Struct(new(Preview), "*"),
)

func provideConfig(path ConfigPath) (config.Config, error) {
	return config.Load(string(path))
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideTable(cfg config.Config) (*clip.Table, error) {
	return clip.LoadFile(cfg.Sheet.Description)
}

func provideHost(logger *zap.Logger) (*term.Host, func(), error) {
	host, err := term.OpenHost(logger)
	if err != nil {
		return nil, nil, err
	}
	return host, host.Close, nil
}

func provideScripts(cfg config.Config, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr, err := app.LoadScripts(cfg.Scripting, logger)
	if err != nil {
		return nil, nil, err
	}
	return mgr, func() {
		if mgr != nil {
			mgr.Close()
		}
	}, nil
}

func provideCue(cfg config.Config, logger *zap.Logger) (*cue.Player, func()) {
	p := app.OpenCue(cfg.Audio, logger)
	return p, func() {
		if p != nil {
			p.Close()
		}
	}
}

func provideRoster(cfg config.Config, table *clip.Table, host *term.Host, scripts *scripting.Manager, player *cue.Player, logger *zap.Logger) (*companion.Roster, error) {
	return companion.Spawn(cfg, table, host, app.Hooks(scripts, player, logger), logger)
}

// moodKeys maps preview keys to the mood they force on every companion.
var moodKeys = map[rune]behavior.Mood{
	'i': behavior.Idle,
	'w': behavior.Wander,
	'p': behavior.Playful,
	's': behavior.Sleepy,
}

func provideLifecycle(cfg config.Config, host *term.Host, roster *companion.Roster, logger *zap.Logger) *server.Lifecycle {
	// Key presses arrive on the input goroutine; the ticker goroutine owns
	// the companions, so forced moods are handed over through a channel.
	forced := make(chan behavior.Mood, 8)

	tick := func(dt time.Duration) error {
		for drained := false; !drained; {
			select {
			case mood := <-forced:
				for _, c := range roster.Members() {
					if err := c.Enter(mood); err != nil {
						logger.Warn("forcing mood", zap.String("mood", string(mood)), zap.Error(err))
					}
				}
			default:
				drained = true
			}
		}
		if err := roster.Tick(dt); err != nil {
			return err
		}
		return host.Flush()
	}
	onRune := func(r rune) {
		if mood, ok := moodKeys[r]; ok {
			select {
			case forced <- mood:
			default:
			}
		}
	}

	lc := server.NewLifecycle(logger)
	lc.Add("ticker", server.NewTicker(cfg.Window.TickInterval(), tick, logger))
	lc.Add("input", term.NewInput(host, onRune))
	return lc
}
