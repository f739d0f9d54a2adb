// Package macro implements EPICS-style $(NAME) and $(NAME=default) macro
// substitution.
package macro

import (
	"regexp"
	"sort"

	"github.com/epics-go/dbtools/tokenizer"
)

var macroRe = regexp.MustCompile(`\$\(([^)=]+)(=([^)]*))?\)`)

// maxPasses bounds expansion of self-referencing definitions such as A=$(A).
const maxPasses = 64

// Expand substitutes macros in source until the text stops changing.
// Undefined macros without a default are left verbatim; their names are
// returned sorted and de-duplicated.
func Expand(source string, macros map[string]string) (string, []string) {
	unmatched := map[string]struct{}{}
	replace := func(m string) string {
		sub := macroRe.FindStringSubmatch(m)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]
		if v, ok := macros[name]; ok {
			return v
		}
		if hasDefault {
			return def
		}
		unmatched[name] = struct{}{}
		return m
	}

	expanded := source
	for i := 0; i < maxPasses; i++ {
		next := macroRe.ReplaceAllStringFunc(expanded, replace)
		if next == expanded {
			break
		}
		expanded = next
	}

	var names []string
	for n := range unmatched {
		// A name may be unmatched in an early pass and resolved later via a
		// default, e.g. $(A=$(B=2)).
		if containsMacro(expanded, n) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return expanded, names
}

func containsMacro(s, name string) bool {
	for _, sub := range macroRe.FindAllStringSubmatch(s, -1) {
		if sub[1] == name && sub[2] == "" {
			return true
		}
	}
	return false
}

// Split parses a macro definition string such as `a=1,b="2",c`.
// Names without a value are dropped.
func Split(s string) (map[string]string, error) {
	toks, err := tokenizer.TokenizeString(s, "<macros>")
	if err != nil {
		return nil, err
	}
	macros := map[string]string{}
	name := ""
	for _, t := range toks {
		switch {
		case t.Is("="):
		case t.Is(","):
			name = ""
		case name != "":
			macros[name] = t.Text
		default:
			name = t.Text
		}
	}
	return macros, nil
}

// Merge returns a new map holding every definition of each argument, later
// arguments taking precedence.
func Merge(sets ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}
