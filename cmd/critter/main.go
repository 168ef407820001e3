// Package main runs the desktop companion: one borderless, transparent,
// always-on-top window that wanders around the primary display.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/critter/internal/app"
	"github.com/cory-johannsen/critter/internal/companion"
	"github.com/cory-johannsen/critter/internal/config"
	"github.com/cory-johannsen/critter/internal/game/clip"
	"github.com/cory-johannsen/critter/internal/observability"
	"github.com/cory-johannsen/critter/internal/render/overlay"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	table, err := clip.LoadFile(cfg.Sheet.Description)
	if err != nil {
		logger.Fatal("loading sprite sheet description", zap.Error(err))
	}
	sheet, err := overlay.LoadSheet(table.Sheet().Image)
	if err != nil {
		logger.Fatal("loading sprite sheet image", zap.Error(err))
	}
	logger.Info("sprite sheet loaded",
		zap.String("image", table.Sheet().Image),
		zap.Strings("clips", table.Tags()),
	)

	if cfg.Creature.Count > 1 {
		logger.Warn("desktop overlay drives a single window; spawning one companion",
			zap.Int("requested", cfg.Creature.Count),
		)
		cfg.Creature.Count = 1
	}

	scripts, err := app.LoadScripts(cfg.Scripting, logger)
	if err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}
	if scripts != nil {
		defer scripts.Close()
	}
	player := app.OpenCue(cfg.Audio, logger)
	if player != nil {
		defer player.Close()
	}

	host := overlay.NewHost(sheet, logger)
	roster, err := companion.Spawn(cfg, table, host, app.Hooks(scripts, player, logger), logger)
	if err != nil {
		logger.Fatal("spawning companion", zap.Error(err))
	}

	logger.Info("companion ready",
		zap.Int("tps", cfg.Window.TPS),
		zap.Duration("startup", time.Since(start)),
	)
	if err := host.Run(cfg.Window.TPS, roster.Tick); err != nil {
		logger.Fatal("overlay stopped", zap.Error(err))
	}
	logger.Info("overlay closed")
}
