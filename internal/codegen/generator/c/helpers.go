package cgen

import (
	"fmt"
	"text/template"

	"github.com/epics-go/dbtools/paramdefs"
)

// tableData is the view of a table the templates render.
type tableData struct {
	Mixed  string
	Guard  string
	Source string
	Params []paramdefs.Param
	First  paramdefs.Param
	Last   paramdefs.Param
}

func newTableData(t *paramdefs.Table) (*tableData, error) {
	params, err := t.Params()
	if err != nil {
		return nil, err
	}
	d := &tableData{
		Mixed:  t.Prefix.Mixed,
		Guard:  t.Prefix.Guard(),
		Source: t.SourceName(),
		Params: params,
	}
	if len(params) > 0 {
		d.First, d.Last = params[0], params[len(params)-1]
	}
	return d, nil
}

// preamble is the comment block opening every generated file.
func preamble(source string) string {
	return fmt.Sprintf("// This file is auto-generated. Do not edit directly.\n// Generated from %s\n", source)
}

func tplFuncs() template.FuncMap {
	return template.FuncMap{
		"preamble": preamble,
	}
}
