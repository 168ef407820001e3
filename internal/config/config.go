// Package config provides Viper-based configuration loading for the companion.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is where log lines go: "stderr", "stdout" or a file path. The
	// terminal preview owns the screen, so it logs to a file.
	Output string `mapstructure:"output"`
}

// WindowConfig holds the overlay window request and frame pacing.
type WindowConfig struct {
	Title string `mapstructure:"title"`
	// TPS is the number of simulation ticks per second.
	TPS int `mapstructure:"tps"`
	// Anchor is "top_left" or "center": which point of the sprite the
	// creature's position names.
	Anchor           string `mapstructure:"anchor"`
	AlwaysOnTop      bool   `mapstructure:"always_on_top"`
	Borderless       bool   `mapstructure:"borderless"`
	NonFocusable     bool   `mapstructure:"non_focusable"`
	Sticky           bool   `mapstructure:"sticky"`
	SkipTaskbar      bool   `mapstructure:"skip_taskbar"`
	Transparent      bool   `mapstructure:"transparent"`
	MousePassthrough bool   `mapstructure:"mouse_passthrough"`
}

// TickInterval returns the wall-clock duration of one tick.
//
// Precondition: TPS > 0.
func (w WindowConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(w.TPS)
}

// SheetConfig locates the sprite-sheet description.
type SheetConfig struct {
	// Description is the path of the YAML sprite-sheet description. The sheet
	// image path inside it is resolved relative to this file.
	Description string `mapstructure:"description"`
}

// PointConfig is a screen coordinate.
type PointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

// BoundsConfig is the rectangle the creature roams in.
type BoundsConfig struct {
	// UseWorkArea takes the primary display's size from the host instead of
	// the explicit rectangle below.
	UseWorkArea bool    `mapstructure:"use_work_area"`
	MinX        float64 `mapstructure:"min_x"`
	MinY        float64 `mapstructure:"min_y"`
	MaxX        float64 `mapstructure:"max_x"`
	MaxY        float64 `mapstructure:"max_y"`
}

// DeadlineConfig is the range decision deadlines are sampled from.
type DeadlineConfig struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

// MoodConfig overrides one mood's behavior profile.
type MoodConfig struct {
	// Motion is "still", "roam" or "frolic".
	Motion     string  `mapstructure:"motion"`
	Speed      float64 `mapstructure:"speed"`
	TurnChance float64 `mapstructure:"turn_chance"`
	Clip       string  `mapstructure:"clip"`
	ExitTo     string  `mapstructure:"exit_to"`
}

// CreatureConfig configures every companion spawned by the process.
type CreatureConfig struct {
	Count         int            `mapstructure:"count"`
	InitialMood   string         `mapstructure:"initial_mood"`
	InitialFacing string         `mapstructure:"initial_facing"`
	Start         PointConfig    `mapstructure:"start"`
	Bounds        BoundsConfig   `mapstructure:"bounds"`
	Deadline      DeadlineConfig `mapstructure:"deadline"`
	// Seed makes behavior reproducible. Nil draws from crypto/rand.
	Seed           *uint64 `mapstructure:"seed"`
	RedecideOnBump bool    `mapstructure:"redecide_on_bump"`
	// Moods and Transitions replace the built-in tables when non-empty.
	Moods       map[string]MoodConfig         `mapstructure:"moods"`
	Transitions map[string]map[string]float64 `mapstructure:"transitions"`
}

// ScriptingConfig holds Lua behavior hook settings.
type ScriptingConfig struct {
	// Dir holds *.lua files defining hooks; empty disables scripting.
	Dir              string `mapstructure:"dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// AudioConfig holds the mood-change chirp settings.
type AudioConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SampleRate int           `mapstructure:"sample_rate"`
	Length     time.Duration `mapstructure:"length"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Window    WindowConfig    `mapstructure:"window"`
	Sheet     SheetConfig     `mapstructure:"sheet"`
	Creature  CreatureConfig  `mapstructure:"creature"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Audio     AudioConfig     `mapstructure:"audio"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWindow(c.Window); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Sheet.Description == "" {
		errs = append(errs, "sheet.description must not be empty")
	}
	if err := validateCreature(c.Creature); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := validateAudio(c.Audio); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateWindow(w WindowConfig) error {
	var errs []string
	if w.TPS < 1 || w.TPS > 240 {
		errs = append(errs, fmt.Sprintf("window.tps must be 1-240, got %d", w.TPS))
	}
	validAnchors := map[string]bool{"top_left": true, "center": true}
	if !validAnchors[w.Anchor] {
		errs = append(errs, fmt.Sprintf("window.anchor must be one of [top_left, center], got %q", w.Anchor))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCreature(c CreatureConfig) error {
	var errs []string
	if c.Count < 1 {
		errs = append(errs, fmt.Sprintf("creature.count must be >= 1, got %d", c.Count))
	}
	if c.InitialMood == "" {
		errs = append(errs, "creature.initial_mood must not be empty")
	}
	validFacings := map[string]bool{"left": true, "right": true, "up": true, "down": true, "none": true}
	if !validFacings[c.InitialFacing] {
		errs = append(errs, fmt.Sprintf("creature.initial_facing must be one of [left, right, up, down, none], got %q", c.InitialFacing))
	}
	if !c.Bounds.UseWorkArea && (c.Bounds.MaxX < c.Bounds.MinX || c.Bounds.MaxY < c.Bounds.MinY) {
		errs = append(errs, "creature.bounds max must not be below min")
	}
	if c.Deadline.Min < 0 {
		errs = append(errs, "creature.deadline.min must not be negative")
	}
	if c.Deadline.Max < c.Deadline.Min {
		errs = append(errs, "creature.deadline.max must not be below creature.deadline.min")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAudio(a AudioConfig) error {
	if !a.Enabled {
		return nil
	}
	var errs []string
	if a.SampleRate < 8000 {
		errs = append(errs, fmt.Sprintf("audio.sample_rate must be >= 8000, got %d", a.SampleRate))
	}
	if a.Length <= 0 {
		errs = append(errs, "audio.length must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CRITTER_ prefix
	v.SetEnvPrefix("CRITTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults installs the default value of every scalar option on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("window.title", "critter")
	v.SetDefault("window.tps", 60)
	v.SetDefault("window.anchor", "top_left")
	v.SetDefault("window.always_on_top", true)
	v.SetDefault("window.borderless", true)
	v.SetDefault("window.non_focusable", true)
	v.SetDefault("window.sticky", true)
	v.SetDefault("window.skip_taskbar", true)
	v.SetDefault("window.transparent", true)
	v.SetDefault("window.mouse_passthrough", false)

	v.SetDefault("sheet.description", "assets/pet.yaml")

	v.SetDefault("creature.count", 1)
	v.SetDefault("creature.initial_mood", "idle")
	v.SetDefault("creature.initial_facing", "right")
	v.SetDefault("creature.start.x", 40)
	v.SetDefault("creature.start.y", 40)
	v.SetDefault("creature.bounds.use_work_area", true)
	v.SetDefault("creature.deadline.min", "2s")
	v.SetDefault("creature.deadline.max", "6s")
	v.SetDefault("creature.redecide_on_bump", true)

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("audio.enabled", false)
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.length", "80ms")
}
