// Package app wires the generation pass together: it loads the composition
// and settings, merges the overlay, runs the allocators through the report
// generator, and writes the result.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/componentry/capgen/internal/adl"
	"github.com/componentry/capgen/internal/arch"
	"github.com/componentry/capgen/internal/ctxlog"
	"github.com/componentry/capgen/internal/report"
	"github.com/componentry/capgen/internal/settings"
)

// App encapsulates one configured generation pass.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// New constructs an App with its own isolated logger. Logs go to errW so
// the report can be piped from stdout.
func New(outW, errW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		errW:   errW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, errW),
		config: cfg,
	}
}

// Run executes the generation pass: load, merge, allocate, emit. Any error
// aborts the pass with no partial output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Generation pass started.", "adl_path", a.config.ADLPath, "arch", a.config.Arch)

	target, err := arch.Lookup(a.config.Arch)
	if err != nil {
		return err
	}

	comp, store, err := adl.NewLoader().Load(ctx, a.config.ADLPath)
	if err != nil {
		return fmt.Errorf("failed to load composition: %w", err)
	}
	a.logger.Debug("Composition loaded.", "instances", len(comp.Instances), "connections", len(comp.Connections))

	if a.config.OverlayPath != "" {
		overlay, err := settings.LoadOverlay(a.config.OverlayPath)
		if err != nil {
			return err
		}
		store.Merge(overlay)
		a.logger.Debug("Settings overlay merged.", "path", a.config.OverlayPath)
	}

	rep, err := report.Generate(comp, store, report.Options{
		Arch:               target,
		DefaultStackSize:   a.config.DefaultStackSize,
		DebugFaultHandlers: a.config.DebugFaultHandlers,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	data, err := rep.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	data = append(data, '\n')

	if a.config.OutPath != "" {
		if err := os.WriteFile(a.config.OutPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		a.logger.Info("Report written.", "path", a.config.OutPath)
		return nil
	}
	if _, err := a.outW.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
