// Command iconcomposer post-processes a game data export: it renders every
// item, fluid, recipe, entity and item-group icon to PNG and writes the
// localised records to output.json.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/setanarut/iconcomposer"
	"github.com/setanarut/iconcomposer/assets"
	"github.com/setanarut/iconcomposer/batch"
	"github.com/setanarut/iconcomposer/export"
	"github.com/setanarut/iconcomposer/internal/config"
	"github.com/setanarut/iconcomposer/internal/logger"
	"github.com/setanarut/iconcomposer/locale"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintln(os.Stderr, "iconcomposer:", err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "iconcomposer: logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	undo := zap.ReplaceGlobals(log)
	defer undo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	if err := run(ctx, cfg); err != nil {
		log.Error("export failed", zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.L(ctx)
	if err := cfg.Resolve(log); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.IconsDir(), 0o755); err != nil {
		return err
	}

	dump, err := export.LoadDump(cfg.GameDir, cfg.ModsDir)
	if err != nil {
		return err
	}
	table, err := locale.Load(cfg.GameDir, cfg.ModsDir, cfg.Lang, log.Named("locale"))
	if err != nil {
		return err
	}

	resolver := assets.NewResolver(cfg.GameDir, cfg.ModsDir, log.Named("assets"))
	defer resolver.Close()
	engine := iconcomposer.NewEngine(assets.NewCache(resolver), cfg.EngineOptions(log.Named("engine")))

	report := new(batch.Report)
	p := &export.Processor{
		Locale: table,
		Runner: &batch.Runner{
			Renderer: engine,
			OutDir:   cfg.IconsDir(),
			Workers:  cfg.Workers,
			Palette:  cfg.PaletteMethod(),
			Report:   report,
			Progress: batch.Bars(os.Stdout),
			Logger:   log.Named("batch"),
		},
		Logger: log.Named("export"),
	}
	out, err := p.Process(ctx, dump)
	if err != nil {
		return err
	}
	report.AddAmbiguous(len(resolver.Ambiguous()))
	report.Summary().Log(log)

	path, err := export.Write(cfg.OutputDir, out)
	if err != nil {
		return err
	}
	log.Info("done", zap.String("output", path))
	return nil
}
