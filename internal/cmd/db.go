package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/epics-go/dbtools/database"
	"github.com/epics-go/dbtools/internal/util"
)

type Db struct {
	Files             []string `arg:"" help:"Database or template files, merged in order" type:"path"`
	Macros            []string `short:"m" help:"Macro definitions, e.g. P=IOC:,R=m1" sep:"none"`
	Include           []string `short:"I" help:"Directories searched for relative file names and includes" type:"path" env:"DBTOOLS_DB_INCLUDE"`
	Includes          string   `help:"How include statements are handled" enum:"self,new,ignore" default:"self" env:"DBTOOLS_DB_INCLUDES"`
	DisallowUnmatched bool     `help:"Fail when a macro stays undefined" env:"DBTOOLS_DB_DISALLOW_UNMATCHED"`
	Output            string   `short:"o" help:"Write the database to this file instead of stdout" type:"path"`
}

// Run is called by Kong when the db command is executed.
func (d *Db) Run(logger *slog.Logger) error {
	return d.render(logger, os.Stdout)
}

func (d *Db) load(logger *slog.Logger) (*database.Database, error) {
	opts := database.Options{
		SearchPath:        d.Include,
		Includes:          database.IncludeStrategy(d.Includes),
		DisallowUnmatched: d.DisallowUnmatched,
		Logger:            logger,
	}
	if len(d.Macros) > 0 {
		macros, err := parseMacros(d.Macros)
		if err != nil {
			return nil, err
		}
		opts.Macros = macros
	}

	combined := database.New()
	for _, f := range d.Files {
		db, err := database.Load(f, opts)
		if err != nil {
			return nil, err
		}
		if err := combined.Merge(db); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		for _, path := range db.IncludedPaths() {
			inc, _ := db.Included(path)
			combined.AddIncluded(path, inc)
		}
	}
	return combined, nil
}

func (d *Db) render(logger *slog.Logger, stdout io.Writer) error {
	db, err := d.load(logger)
	if err != nil {
		return err
	}
	text := renderDatabase(db)
	if d.Output == "" {
		_, err = io.WriteString(stdout, text)
		return err
	}
	if err := util.WriteFileAtomic(d.Output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	logger.Info("Wrote database", "file", d.Output, "records", db.Len())
	return nil
}

// renderDatabase prints db followed by every separately loaded include,
// each under a comment naming its path.
func renderDatabase(db *database.Database) string {
	var b strings.Builder
	b.WriteString(db.String())
	for _, path := range db.IncludedPaths() {
		inc, _ := db.Included(path)
		if inc == nil {
			continue
		}
		fmt.Fprintf(&b, "\n# include %q\n", path)
		b.WriteString(inc.String())
	}
	return b.String()
}
