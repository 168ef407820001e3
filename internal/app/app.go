// Package app assembles the optional collaborators shared by the desktop and
// terminal binaries: Lua transition hooks and the mood chirp.
package app

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/companion"
	"github.com/cory-johannsen/critter/internal/config"
	"github.com/cory-johannsen/critter/internal/cue"
	"github.com/cory-johannsen/critter/internal/game/behavior"
	"github.com/cory-johannsen/critter/internal/scripting"
)

// TransitionHookName is the Lua global called on every mood decision as
// on_transition(from, to). Returning a mood name redirects the decision.
const TransitionHookName = "on_transition"

// LoadScripts loads cfg.Dir into a shared VM.
//
// Postcondition: Returns (nil, nil) when scripting is disabled.
func LoadScripts(cfg config.ScriptingConfig, logger *zap.Logger) (*scripting.Manager, error) {
	if cfg.Dir == "" {
		return nil, nil
	}
	mgr := scripting.NewManager(cfg.InstructionLimit, logger)
	if err := mgr.LoadShared(cfg.Dir); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("loading behavior scripts: %w", err)
	}
	return mgr, nil
}

// OpenCue opens the speaker for mood chirps. Audio is optional: a speaker
// that cannot be opened is logged and nil is returned.
func OpenCue(cfg config.AudioConfig, logger *zap.Logger) *cue.Player {
	if !cfg.Enabled {
		return nil
	}
	p := cue.NewPlayer(cfg, logger)
	if err := p.Init(); err != nil {
		logger.Warn("audio disabled", zap.Error(err))
		return nil
	}
	return p
}

// ScriptHook returns a per-companion hook that asks mgr's on_transition.
// A missing, failing or non-string hook keeps the weighted choice.
func ScriptHook(mgr *scripting.Manager) func(id uuid.UUID) behavior.TransitionHook {
	return func(id uuid.UUID) behavior.TransitionHook {
		key := id.String()
		return func(from, to behavior.Mood) behavior.Mood {
			if next, ok := mgr.CallHook(key, TransitionHookName, string(from), string(to)); ok {
				return behavior.Mood(next)
			}
			return to
		}
	}
}

// Hooks builds the companion hooks for whichever collaborators are present.
func Hooks(scripts *scripting.Manager, player *cue.Player, logger *zap.Logger) companion.Hooks {
	var h companion.Hooks
	if scripts != nil {
		h.Transition = ScriptHook(scripts)
	}
	h.MoodChange = func(id uuid.UUID, from, to behavior.Mood) {
		logger.Info("mood changed",
			zap.String("companion", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		if player != nil {
			player.Chirp(to)
		}
	}
	return h
}
