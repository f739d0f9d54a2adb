package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	cgen "github.com/epics-go/dbtools/internal/codegen/generator/c"
	"github.com/epics-go/dbtools/paramdefs"
)

// ErrNoInputs is returned when an input directory holds no templates.
var ErrNoInputs = errors.New("no input templates")

// Options tune how inputs become tables and which files are written.
type Options struct {
	// Mixed overrides the identifier prefix taken from the input name.
	Mixed  string
	Filter string
	Macros map[string]string
	// Cpp also writes <Mixed>ParamDefs.cpp next to the header.
	Cpp bool
}

type Generator struct {
	output string
	logger *slog.Logger
	opts   Options
}

// New returns a generator writing to output, a directory or, for a single
// input, a path ending in ".h".
func New(output string, logger *slog.Logger, opts Options) *Generator {
	return &Generator{
		output: output,
		logger: logger,
		opts:   opts,
	}
}

// GenAll generates headers for input, a template, a model file or a
// directory of templates. A failing input does not stop the others; all
// failures are returned together.
func (g *Generator) GenAll(input string) error {
	files, err := paramdefs.Inputs(input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoInputs, input)
	}
	if g.headerPath() && len(files) > 1 {
		return fmt.Errorf("output %s names a single header but %s holds %d templates", g.output, input, len(files))
	}

	var errs error
	for _, f := range files {
		if err := g.GenerateFile(f); err != nil {
			g.logger.Error("Failed to generate parameter definitions", "input", f, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", f, err))
		}
	}
	return errs
}

// GenerateFile generates the header (and source) for one input file.
func (g *Generator) GenerateFile(input string) error {
	g.logger.Debug("Loading parameter table", "input", input)
	t, err := paramdefs.Load(input, paramdefs.TemplateOptions{
		Mixed:  g.opts.Mixed,
		Macros: g.opts.Macros,
		Filter: g.opts.Filter,
		Logger: g.logger,
	})
	if err != nil {
		return err
	}
	for _, d := range t.Descriptors {
		p := t.Prefix.Expand(d)
		g.logger.Debug("Param", "name", p.Identifier, "type", d.Interface.DTYP(), "literal", p.Literal)
	}

	out, err := g.outputs(t)
	if err != nil {
		return err
	}
	return cgen.Generate(g.logger, out, t)
}

func (g *Generator) headerPath() bool {
	return strings.HasSuffix(g.output, ".h")
}

func (g *Generator) outputs(t *paramdefs.Table) (cgen.Output, error) {
	var out cgen.Output
	dir := g.output
	if g.headerPath() {
		dir = filepath.Dir(g.output)
		out.Header = g.output
	} else {
		out.Header = filepath.Join(dir, cgen.HeaderName(t))
	}
	if g.opts.Cpp {
		if g.headerPath() {
			out.Source = strings.TrimSuffix(g.output, ".h") + ".cpp"
		} else {
			out.Source = filepath.Join(dir, cgen.SourceName(t))
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return out, fmt.Errorf("failed to create output directory: %w", err)
	}
	return out, nil
}
