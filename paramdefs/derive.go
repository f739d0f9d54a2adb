package paramdefs

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/epics-go/dbtools/database"
)

// linkFields are checked in this order on every record.
var linkFields = []string{"OUT", "INP"}

// DeriveOptions controls FromDatabase.
type DeriveOptions struct {
	// Mixed is the identifier prefix, usually the template base name.
	Mixed string
	// Source is recorded in the generated preamble.
	Source string
	// Filter keeps only parameter names starting with it when set.
	Filter string
	Logger *slog.Logger
}

// FromDatabase builds a table from the asyn links of db. Every record with
// an INP or OUT link of the form "@asyn(...)NAME" contributes NAME once,
// in record order.
func FromDatabase(db *database.Database, opts DeriveOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := &Table{
		Prefix: Prefix{Mixed: opts.Mixed},
		Source: opts.Source,
	}
	seen := map[string]bool{}

	for _, r := range db.Records() {
		for _, field := range linkFields {
			link, ok := r.Field(field)
			if !ok {
				continue
			}
			name, ok := asynParamName(link)
			if !ok {
				logger.Debug("Skipping non-asyn link", "record", r.Name, "field", field, "link", link)
				continue
			}
			if opts.Filter != "" && !strings.HasPrefix(name, opts.Filter) {
				logger.Info("Skipping parameter outside prefix filter", "param", name, "prefix", opts.Filter)
				continue
			}
			if seen[name] {
				logger.Debug("Parameter already defined, skipping duplicate", "param", name, "record", r.Name)
				continue
			}

			d, upper, err := describe(r, name)
			if err != nil {
				return nil, err
			}
			if t.Prefix.Upper == "" {
				t.Prefix.Upper = upper
			} else if t.Prefix.Upper != upper {
				return nil, fmt.Errorf("%w: '%s' in record '%s', expected prefix '%s'",
					ErrMixedUpperPrefix, name, r.Name, t.Prefix.Upper)
			}
			seen[name] = true
			t.Descriptors = append(t.Descriptors, d)
			logger.Debug("Found parameter", "param", name, "dtyp", d.Interface.DTYP(), "record", r.Name)
		}
	}
	if t.Prefix.Upper == "" {
		t.Prefix.Upper = t.Prefix.Guard()
	}
	return t, nil
}

// asynParamName extracts NAME from asyn links such as "@asyn(PORT,0,1)NAME"
// or "@asynMask(PORT,0,0xFF,1)NAME".
func asynParamName(link string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(link), "@asyn")
	if !ok {
		return "", false
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 || strings.IndexFunc(rest[:open], func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return "", false
	}
	end := strings.LastIndexByte(rest, ')')
	if end < open {
		return "", false
	}
	name := strings.TrimSpace(rest[end+1:])
	return name, name != ""
}

// describe maps a record and its parameter name to a descriptor and the
// name prefix in front of the "_{RECORD}_{INTERFACE}" suffix.
func describe(r *database.Record, name string) (Descriptor, string, error) {
	rk, err := ParseRecordKind(string(r.Type))
	if err != nil {
		return Descriptor{}, "", fmt.Errorf("record '%s': %w", r.Name, err)
	}
	dtyp, _ := r.Field("DTYP")
	ik, err := ParseInterfaceKind(dtyp)
	if err != nil {
		return Descriptor{}, "", fmt.Errorf("record '%s': %w", r.Name, err)
	}
	d := Descriptor{Record: rk, Interface: ik}

	suffix := "_" + rk.Upper() + "_" + ik.Upper()
	upper, ok := strings.CutSuffix(name, suffix)
	if !ok {
		return Descriptor{}, "", fmt.Errorf("%w: record '%s' (%s, %s) names '%s', expected '<PREFIX>%s'",
			ErrLiteralMismatch, r.Name, r.Type, dtyp, name, suffix)
	}
	if upper == "" {
		return Descriptor{}, "", fmt.Errorf("%w: '%s' in record '%s' has no name prefix", ErrLiteralMismatch, name, r.Name)
	}
	return d, upper, nil
}

// TemplateOptions controls LoadTemplate.
type TemplateOptions struct {
	// Mixed overrides the identifier prefix taken from the file name.
	Mixed  string
	Macros map[string]string
	Filter string
	Logger *slog.Logger
}

// LoadTemplate loads an EPICS template, ignoring includes, and derives its
// table. The identifier prefix defaults to the file's base name.
func LoadTemplate(path string, opts TemplateOptions) (*Table, error) {
	db, err := database.Load(path, database.Options{
		Macros:   opts.Macros,
		Includes: database.IncludeIgnore,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	mixed := opts.Mixed
	if mixed == "" {
		mixed = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return FromDatabase(db, DeriveOptions{
		Mixed:  mixed,
		Source: base,
		Filter: opts.Filter,
		Logger: opts.Logger,
	})
}
