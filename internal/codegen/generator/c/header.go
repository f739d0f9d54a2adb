package cgen

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/epics-go/dbtools/paramdefs"
)

// An empty table has no first or last parameter, so it gets a literal
// zero count instead of the pointer difference.
var headerTmpl = template.Must(template.New("paramdefs.h").Funcs(tplFuncs()).Parse(`#ifndef {{.Guard}}_PARAM_DEFS_H
#define {{.Guard}}_PARAM_DEFS_H

{{preamble .Source}}
// String definitions for parameters
{{range .Params}}#define {{.StringMacro}} "{{.Literal}}"
{{end}}
// Parameter index definitions
{{range .Params}}int {{.Identifier}};
{{end}}{{if .Params}}
#define {{.Guard}}_FIRST_PARAM {{.First.Identifier}}
#define {{.Guard}}_LAST_PARAM {{.Last.Identifier}}

#define NUM_{{.Guard}}_PARAMS ((int)(&{{.Guard}}_LAST_PARAM - &{{.Guard}}_FIRST_PARAM + 1))
{{else}}
#define NUM_{{.Guard}}_PARAMS 0
{{end}}
#endif
`))

// HeaderName is the file name of the header generated for t.
func HeaderName(t *paramdefs.Table) string {
	return t.Prefix.Mixed + "ParamDefs.h"
}

// RenderHeader renders the parameter definition header for t. Identical
// tables render identical bytes.
func RenderHeader(t *paramdefs.Table) ([]byte, error) {
	data, err := newTableData(t)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := headerTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("exec header tmpl: %w", err)
	}
	return buf.Bytes(), nil
}
