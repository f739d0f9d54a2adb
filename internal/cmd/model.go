package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/epics-go/dbtools/internal/util"
	"github.com/epics-go/dbtools/paramdefs"
)

type Model struct {
	Input    string   `arg:"" help:"Template or model file" type:"path"`
	Filename string   `short:"f" help:"Identifier prefix, defaults to the input's base name"`
	Prefix   string   `short:"p" help:"Only keep parameters whose name starts with this prefix"`
	Macros   []string `short:"m" help:"Macro definitions, e.g. PORT=L0,ADDR=1" sep:"none"`
	Format   string   `help:"Output format" enum:"yaml,toml,json,table" default:"yaml" env:"DBTOOLS_MODEL_FORMAT"`
	Output   string   `short:"o" help:"Write the model to this file instead of stdout" type:"path"`
}

// Run is called by Kong when the model command is executed.
func (m *Model) Run(logger *slog.Logger) error {
	return m.render(logger, os.Stdout)
}

func (m *Model) render(logger *slog.Logger, stdout io.Writer) error {
	macros, err := parseMacros(m.Macros)
	if err != nil {
		return err
	}
	t, err := paramdefs.Load(m.Input, paramdefs.TemplateOptions{
		Mixed:  m.Filename,
		Macros: macros,
		Filter: m.Prefix,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	var data []byte
	if m.Format == "table" {
		s, err := renderTable(t)
		if err != nil {
			return err
		}
		data = []byte(s)
	} else {
		data, err = paramdefs.EncodeModel(t, m.Format)
		if err != nil {
			return err
		}
	}

	if m.Output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := util.WriteFileAtomic(m.Output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	logger.Info("Wrote parameter model", "file", m.Output, "params", t.Len(), "format", m.Format)
	return nil
}

func renderTable(t *paramdefs.Table) (string, error) {
	params, err := t.Params()
	if err != nil {
		return "", err
	}
	rows := pterm.TableData{{"#", "Identifier", "Literal", "Record", "DTYP", "Param type"}}
	for i, p := range params {
		rows = append(rows, []string{
			strconv.Itoa(i),
			p.Identifier,
			p.Literal,
			p.Record.RecordType(),
			p.Interface.DTYP(),
			p.ParamType,
		})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return "", err
	}
	return s + "\n", nil
}
