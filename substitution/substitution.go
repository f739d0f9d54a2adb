// Package substitution parses EPICS substitution files and expands them
// into databases.
//
// A substitution file names templates and the macro sets they are loaded
// with:
//
//	global { P=TST: }
//	file "motor.template" {
//	    pattern { R, PORT }
//	    { M1, MC1 }
//	    { M2, MC1 }
//	}
//	file other.template {
//	    global { PORT=MC2 }
//	    { R=X1 }
//	}
package substitution

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/epics-go/dbtools/database"
	"github.com/epics-go/dbtools/tokenizer"
)

// ErrMissingFile is returned when a file block has no template name.
var ErrMissingFile = errors.New("substitution without template file")

// Substitution is one template instantiation: a file and the macros it is
// loaded with, in definition order.
type Substitution struct {
	File   string
	Macros *orderedmap.OrderedMap[string, string]
}

// MacroMap returns the macros as a plain map.
func (s Substitution) MacroMap() map[string]string {
	out := make(map[string]string, s.Macros.Len())
	for p := s.Macros.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value
	}
	return out
}

// Keys returns the macro names in definition order.
func (s Substitution) Keys() []string {
	out := make([]string, 0, s.Macros.Len())
	for p := s.Macros.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

type macroSet = orderedmap.OrderedMap[string, string]

type parser struct {
	s *tokenizer.Stream

	global     *macroSet
	fileGlobal *macroSet
	pattern    []string
	hasPattern bool
	file       string
	out        []Substitution
}

// Parse parses substitution file text. filename is used in error
// positions only.
func Parse(text, filename string) ([]Substitution, error) {
	toks, err := tokenizer.TokenizeString(text, filename)
	if err != nil {
		return nil, err
	}
	p := &parser{
		s:      tokenizer.NewStream(toks, filename),
		global: orderedmap.New[string, string](),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.out, nil
}

// Load reads and parses a substitution file.
func Load(path string) ([]Substitution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read substitution file: %w", err)
	}
	return Parse(string(data), path)
}

func (p *parser) parse() error {
	for {
		t, ok := p.s.Next()
		if !ok {
			return nil
		}
		switch {
		case t.Is("file"):
			if err := p.parseFile(t); err != nil {
				return err
			}
		case t.Is("global"):
			if err := p.parseGlobal(p.global); err != nil {
				return err
			}
		default:
			return p.s.Errorf(t, "unexpected token %s", t)
		}
	}
}

// parseFile handles everything after a "file" keyword up to the closing
// brace of its block.
func (p *parser) parseFile(kw tokenizer.Token) error {
	p.file = ""
	p.pattern = nil
	p.hasPattern = false
	p.fileGlobal = orderedmap.New[string, string]()

	for {
		t, err := p.s.Must()
		if err != nil {
			return err
		}
		if t.Is("{") {
			break
		}
		p.file = t.Text
	}
	if p.file == "" {
		return fmt.Errorf("%w: %s", ErrMissingFile, p.s.Errorf(kw, "file block without name"))
	}

	for {
		t, err := p.s.Must()
		if err != nil {
			return err
		}
		switch {
		case t.Is("}"):
			return nil
		case t.Is("global"):
			if err := p.parseGlobal(p.fileGlobal); err != nil {
				return err
			}
		case t.Is("pattern"):
			if _, err := p.s.Expect("{"); err != nil {
				return err
			}
			names, err := p.parseList()
			if err != nil {
				return err
			}
			p.pattern, p.hasPattern = names, true
		case t.Is("{"):
			if err := p.parseRow(); err != nil {
				return err
			}
		default:
			return p.s.Errorf(t, "unexpected token %s in file block '%s'", t, p.file)
		}
	}
}

func (p *parser) parseGlobal(into *macroSet) error {
	if _, err := p.s.Expect("{"); err != nil {
		return err
	}
	names, values, err := p.parseAssignments()
	if err != nil {
		return err
	}
	for i := range names {
		into.Set(names[i], values[i])
	}
	return nil
}

func (p *parser) parseRow() error {
	var names, values []string
	var err error
	if p.hasPattern {
		names = p.pattern
		values, err = p.parseList()
	} else {
		names, values, err = p.parseAssignments()
	}
	if err != nil {
		return err
	}

	macros := orderedmap.New[string, string]()
	for _, set := range []*macroSet{p.global, p.fileGlobal} {
		for pair := set.Oldest(); pair != nil; pair = pair.Next() {
			macros.Set(pair.Key, pair.Value)
		}
	}
	for i := 0; i < len(names) && i < len(values); i++ {
		macros.Set(names[i], values[i])
	}
	p.out = append(p.out, Substitution{File: p.file, Macros: macros})
	return nil
}

// parseList reads comma-separated items up to the closing brace.
func (p *parser) parseList() ([]string, error) {
	var items []string
	for {
		t, err := p.s.Must()
		if err != nil {
			return nil, err
		}
		switch {
		case t.Is("}"):
			return items, nil
		case t.Is(","):
		default:
			items = append(items, t.Text)
		}
	}
}

// parseAssignments reads "A=1, B=2" up to the closing brace. Names are
// returned only when they have a value.
func (p *parser) parseAssignments() (names, values []string, err error) {
	name := ""
	equal := false
	for {
		t, err := p.s.Must()
		if err != nil {
			return nil, nil, err
		}
		switch {
		case t.Is("}"):
			return names, values, nil
		case t.Is("="):
			equal = true
		case t.Is(","):
			equal = false
		case equal:
			names = append(names, name)
			values = append(values, t.Text)
			equal = false
		default:
			name = t.Text
		}
	}
}

// Options controls Expand.
type Options struct {
	// IncludePaths are searched for templates after the substitution
	// file's own directory.
	IncludePaths      []string
	DisallowUnmatched bool
	Logger            *slog.Logger
}

// Expand loads every template referenced by the substitution file at path
// with its macros and merges the results into one database.
func Expand(path string, opts Options) (*database.Database, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	subs, err := Load(path)
	if err != nil {
		return nil, err
	}
	searchPath := append([]string{filepath.Dir(path)}, opts.IncludePaths...)

	db := database.New()
	for _, sub := range subs {
		logger.Debug("Expanding template", "file", sub.File, "macros", sub.Keys())
		loaded, err := database.Load(sub.File, database.Options{
			Macros:            sub.MacroMap(),
			SearchPath:        searchPath,
			Includes:          database.IncludeSelf,
			DisallowUnmatched: opts.DisallowUnmatched,
			Logger:            logger,
		})
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", path, err)
		}
		if err := db.Merge(loaded); err != nil {
			return nil, fmt.Errorf("expand %s: %w", path, err)
		}
	}
	logger.Info("Expanded substitution file", "file", path, "templates", len(subs), "records", db.Len())
	return db, nil
}
