package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/epics-go/dbtools/database"
	"github.com/epics-go/dbtools/internal/util"
	"github.com/epics-go/dbtools/substitution"
)

type Subst struct {
	Files             []string `arg:"" help:"Substitution files, expanded in order" type:"path"`
	Include           []string `short:"I" help:"Directories searched for templates after the substitution file's directory" type:"path" env:"DBTOOLS_SUBST_INCLUDE"`
	DisallowUnmatched bool     `help:"Fail when a macro stays undefined" env:"DBTOOLS_SUBST_DISALLOW_UNMATCHED"`
	Output            string   `short:"o" help:"Write the database to this file instead of stdout" type:"path"`
}

// Run is called by Kong when the subst command is executed.
func (s *Subst) Run(logger *slog.Logger) error {
	return s.render(logger, os.Stdout)
}

func (s *Subst) render(logger *slog.Logger, stdout io.Writer) error {
	combined := database.New()
	for _, f := range s.Files {
		db, err := substitution.Expand(f, substitution.Options{
			IncludePaths:      s.Include,
			DisallowUnmatched: s.DisallowUnmatched,
			Logger:            logger,
		})
		if err != nil {
			return err
		}
		if err := combined.Merge(db); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	text := combined.String()
	if s.Output == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := util.WriteFileAtomic(s.Output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	logger.Info("Wrote database", "file", s.Output, "records", combined.Len())
	return nil
}
