// Package config assembles the exporter settings from flags, environment,
// an optional JSON file and the default game install locations.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/setanarut/iconcomposer"
	"github.com/setanarut/iconcomposer/utils"
)

const (
	envGame = "ICONCOMPOSER_GAME"
	envMods = "ICONCOMPOSER_MODS"
)

var ErrUsage = errors.New("usage")

type Config struct {
	GameDir    string `json:"game_dir"`
	ModsDir    string `json:"mods_dir"`
	OutputDir  string `json:"output_dir"`
	Lang       string `json:"lang"`
	OutputSize int    `json:"output_size"`
	MaxSlack   int    `json:"max_slack"`
	SlackMode  string `json:"slack_mode"`
	Workers    int    `json:"workers"`
	Palette    string `json:"palette"`
	Verbose    bool   `json:"verbose"`
}

func Default() Config {
	opt := iconcomposer.DefaultOptions()
	return Config{
		OutputDir:  ".",
		Lang:       "en",
		OutputSize: opt.OutputSize,
		MaxSlack:   opt.MaxSlack,
		SlackMode:  "crop",
		Workers:    runtime.NumCPU(),
		Palette:    utils.PaletteMethodDominantColor.String(),
	}
}

// Load builds the configuration from, in increasing precedence, defaults,
// the JSON file named by -config, the environment and explicit flags. The
// single positional argument is the output directory. Load does not touch
// the file system beyond reading the settings file; call Resolve for that.
func Load(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	c := Default()

	fs := flag.NewFlagSet("iconcomposer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: iconcomposer [flags] [output-dir]")
		fs.PrintDefaults()
	}
	var fl Config
	file := fs.String("config", "", "JSON settings file")
	fs.StringVar(&fl.GameDir, "game", "", "game install directory (default: auto-detect, $"+envGame+")")
	fs.StringVar(&fl.ModsDir, "mods", "", "mods directory (default: auto-detect, $"+envMods+")")
	fs.StringVar(&fl.Lang, "lang", c.Lang, "locale to export")
	fs.IntVar(&fl.OutputSize, "size", c.OutputSize, "icon output size in pixels")
	fs.IntVar(&fl.MaxSlack, "max-slack", c.MaxSlack, "largest overflow corrected without clipping")
	fs.StringVar(&fl.SlackMode, "slack", c.SlackMode, "how slack is removed: crop or fit")
	fs.IntVar(&fl.Workers, "workers", c.Workers, "icons rendered in parallel")
	fs.StringVar(&fl.Palette, "palette", c.Palette, "dominant colour method: dominantcolor or kmeans")
	fs.BoolVar(&fl.Verbose, "v", false, "development logging")
	if err := fs.Parse(args); err != nil {
		return c, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return c, fmt.Errorf("%w: more than one output directory", ErrUsage)
	}

	if *file != "" {
		if err := c.loadFile(*file); err != nil {
			return c, err
		}
	}
	if v := getenv(envGame); v != "" {
		c.GameDir = v
	}
	if v := getenv(envMods); v != "" {
		c.ModsDir = v
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "game":
			c.GameDir = fl.GameDir
		case "mods":
			c.ModsDir = fl.ModsDir
		case "lang":
			c.Lang = fl.Lang
		case "size":
			c.OutputSize = fl.OutputSize
		case "max-slack":
			c.MaxSlack = fl.MaxSlack
		case "slack":
			c.SlackMode = fl.SlackMode
		case "workers":
			c.Workers = fl.Workers
		case "palette":
			c.Palette = fl.Palette
		case "v":
			c.Verbose = fl.Verbose
		}
	})
	if fs.NArg() == 1 {
		c.OutputDir = fs.Arg(0)
	}
	return c, c.Validate()
}

// loadFile overlays the fields present in a JSON settings file.
func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.OutputSize <= 0:
		return fmt.Errorf("%w: size must be positive, got %d", ErrUsage, c.OutputSize)
	case c.MaxSlack < 0:
		return fmt.Errorf("%w: max-slack must not be negative, got %d", ErrUsage, c.MaxSlack)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrUsage, c.Workers)
	case c.SlackMode != "fit" && c.SlackMode != "crop":
		return fmt.Errorf("%w: unknown slack mode %q", ErrUsage, c.SlackMode)
	case c.Palette != utils.PaletteMethodDominantColor.String() && c.Palette != utils.PaletteMethodKMeans.String():
		return fmt.Errorf("%w: unknown palette method %q", ErrUsage, c.Palette)
	case strings.TrimSpace(c.Lang) == "":
		return fmt.Errorf("%w: empty lang", ErrUsage)
	}
	return nil
}

// Resolve fills in missing game and mods directories from the default
// install locations and checks that all directories exist.
func (c *Config) Resolve(log *zap.Logger) error {
	home, _ := os.UserHomeDir()
	if c.GameDir == "" {
		c.GameDir = firstMatch(GameDirCandidates(runtime.GOOS, home, os.Getenv), IsGameDir)
		if c.GameDir == "" {
			return errors.New("config: unable to find the game install, use -game")
		}
	}
	if c.ModsDir == "" {
		c.ModsDir = firstMatch(ModsDirCandidates(runtime.GOOS, home, os.Getenv), IsModsDir)
		if c.ModsDir == "" {
			return errors.New("config: unable to find the mods directory, use -mods")
		}
	}
	if !IsGameDir(c.GameDir) {
		return fmt.Errorf("config: invalid game path %s", c.GameDir)
	}
	if !IsModsDir(c.ModsDir) {
		return fmt.Errorf("config: invalid mods path %s", c.ModsDir)
	}
	if fi, err := os.Stat(c.OutputDir); err != nil || !fi.IsDir() {
		return fmt.Errorf("config: output path %s is not a directory", c.OutputDir)
	}
	log.Info("using directories",
		zap.String("game", c.GameDir),
		zap.String("mods", c.ModsDir),
		zap.String("output", c.OutputDir))
	return nil
}

// IconsDir is where rendered icons are written.
func (c Config) IconsDir() string {
	return filepath.Join(c.OutputDir, "icons")
}

func (c Config) EngineOptions(log *zap.Logger) iconcomposer.Options {
	mode := iconcomposer.SlackCrop
	if c.SlackMode == "fit" {
		mode = iconcomposer.SlackFit
	}
	return iconcomposer.Options{
		OutputSize: c.OutputSize,
		MaxSlack:   c.MaxSlack,
		SlackMode:  mode,
		Logger:     log,
	}
}

func (c Config) PaletteMethod() utils.PaletteMethod {
	return utils.ParsePaletteMethod(c.Palette)
}
