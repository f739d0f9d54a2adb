package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epics-go/dbtools/internal/codegen/generator"
	"github.com/epics-go/dbtools/internal/watch"
	"github.com/epics-go/dbtools/paramdefs"
)

type Paramdefs struct {
	Input    string        `arg:"" help:"Template, model file or directory of templates" type:"path"`
	Output   string        `arg:"" help:"Output directory, or a .h path for a single input" default:"." type:"path"`
	Filename string        `short:"f" help:"Identifier prefix, defaults to the input's base name" env:"DBTOOLS_PARAMDEFS_FILENAME"`
	Prefix   string        `short:"p" help:"Only keep parameters whose name starts with this prefix" env:"DBTOOLS_PARAMDEFS_PREFIX"`
	Macros   []string      `short:"m" help:"Macro definitions, e.g. PORT=L0,ADDR=1" sep:"none"`
	Cpp      bool          `help:"Also write <Base>ParamDefs.cpp with createAllParams()" env:"DBTOOLS_PARAMDEFS_CPP"`
	Watch    bool          `short:"w" help:"Regenerate whenever an input changes"`
	Debounce time.Duration `help:"Quiet period before regenerating in watch mode" default:"250ms" env:"DBTOOLS_PARAMDEFS_DEBOUNCE"`
}

// Run is called by Kong when the paramdefs command is executed.
func (p *Paramdefs) Run(logger *slog.Logger) error {
	gen, err := p.generator(logger)
	if err != nil {
		return err
	}
	if !p.Watch {
		return gen.GenAll(p.Input)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.WatchInputs(ctx, logger, gen)
}

func (p *Paramdefs) generator(logger *slog.Logger) (*generator.Generator, error) {
	macros, err := parseMacros(p.Macros)
	if err != nil {
		return nil, err
	}
	logger.Info("Generating parameter definitions", "input", p.Input, "output", p.Output)
	return generator.New(p.Output, logger, generator.Options{
		Mixed:  p.Filename,
		Filter: p.Prefix,
		Macros: macros,
		Cpp:    p.Cpp,
	}), nil
}

// WatchInputs generates once, then regenerates changed inputs until ctx is
// done. Failures are logged and leave the previous output in place.
func (p *Paramdefs) WatchInputs(ctx context.Context, logger *slog.Logger, gen *generator.Generator) error {
	if err := gen.GenAll(p.Input); err != nil {
		logger.Error("Initial generation failed", "error", err)
	}
	w, err := watch.New(logger, p.Debounce, paramdefs.TemplateExt, p.Input)
	if err != nil {
		return err
	}
	logger.Info("Watching for changes", "input", p.Input)
	return w.Run(ctx, func(changed []string) {
		for _, f := range changed {
			if _, err := os.Stat(f); err != nil {
				logger.Debug("Changed input is gone, skipping", "file", f)
				continue
			}
			if err := gen.GenerateFile(f); err != nil {
				logger.Error("Regeneration failed", "input", f, "error", err)
			}
		}
	})
}
