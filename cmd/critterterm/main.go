// Package main runs the terminal preview: the same companions, drawn as text
// in a tcell screen. Keys i, w, p and s force a mood; q or Escape quits.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/term.yaml", "path to configuration file")
	flag.Parse()

	preview, cleanup, err := initializePreview(ConfigPath(*configPath))
	if err != nil {
		log.Fatalf("starting preview: %v", err)
	}

	preview.Logger.Info("terminal preview ready",
		zap.Int("companions", preview.Roster.Len()),
		zap.Duration("startup", time.Since(start)),
	)
	runErr := preview.Lifecycle.Run(context.Background())
	cleanup()
	if runErr != nil {
		log.Fatalf("preview stopped: %v", runErr)
	}
}
