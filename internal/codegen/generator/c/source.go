package cgen

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/epics-go/dbtools/paramdefs"
)

var sourceTmpl = template.Must(template.New("paramdefs.cpp").Funcs(tplFuncs()).Parse(`{{preamble .Source}}
#include "{{.Mixed}}.h"

void {{.Mixed}}::createAllParams() {
{{range .Params}}    createParam({{.StringMacro}}, {{.ParamType}}, &{{.Identifier}});
{{end}}}
`))

// SourceName is the file name of the C++ source generated for t.
func SourceName(t *paramdefs.Table) string {
	return t.Prefix.Mixed + "ParamDefs.cpp"
}

// RenderSource renders a createAllParams() definition for the driver class
// named after the table's mixed prefix.
func RenderSource(t *paramdefs.Table) ([]byte, error) {
	data, err := newTableData(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := sourceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("exec source tmpl: %w", err)
	}
	return buf.Bytes(), nil
}
