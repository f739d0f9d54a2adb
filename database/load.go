package database

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/epics-go/dbtools/macro"
	"github.com/epics-go/dbtools/tokenizer"
)

// IncludeStrategy selects what Load does with include statements.
type IncludeStrategy string

const (
	// IncludeSelf merges included records into the including database.
	IncludeSelf IncludeStrategy = "self"
	// IncludeNew loads included files as separate databases, see Database.Included.
	IncludeNew IncludeStrategy = "new"
	// IncludeIgnore only records the include statement.
	IncludeIgnore IncludeStrategy = "ignore"
)

// Options controls Load. The zero value loads without macro expansion,
// merges includes, and allows unmatched macros.
type Options struct {
	// Macros, when non-nil, are expanded line by line before parsing.
	Macros map[string]string
	// SearchPath lists directories tried, in order, for relative paths
	// that do not exist relative to the working directory.
	SearchPath []string
	Includes   IncludeStrategy
	// DisallowUnmatched fails the load when a macro stays undefined.
	DisallowUnmatched bool
	Logger            *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Find resolves filename to an absolute path, trying searchPath for
// relative names that do not exist as given.
func Find(filename string, searchPath []string) (string, error) {
	if isFile(filename) {
		return filepath.Abs(filename)
	}
	if !filepath.IsAbs(filename) {
		for _, dir := range searchPath {
			candidate := filepath.Join(dir, filename)
			if isFile(candidate) {
				return filepath.Abs(candidate)
			}
		}
	}
	return "", fmt.Errorf("%w: '%s' (search path %v)", ErrNotFound, filename, searchPath)
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// Load reads and parses a database file.
func Load(filename string, opts Options) (*Database, error) {
	if opts.Includes == "" {
		opts.Includes = IncludeSelf
	}
	l := &loader{opts: opts, logger: opts.logger(), active: map[string]bool{}}
	return l.load(filename, opts.SearchPath)
}

// Parse parses database text that needs no include resolution. Include
// statements are recorded but not followed.
func Parse(text, filename string, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &loader{opts: Options{Includes: IncludeIgnore}, logger: logger, active: map[string]bool{}}
	db := New()
	if err := l.parseInto(db, text, filename, nil); err != nil {
		return nil, err
	}
	return db, nil
}

type loader struct {
	opts   Options
	logger *slog.Logger
	// active holds files on the current include chain.
	active map[string]bool
}

func (l *loader) load(filename string, searchPath []string) (*Database, error) {
	path, err := Find(filename, searchPath)
	if err != nil {
		return nil, err
	}
	if l.active[path] {
		return nil, fmt.Errorf("%w: '%s'", ErrIncludeCycle, path)
	}
	l.active[path] = true
	defer delete(l.active, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database file: %w", err)
	}
	text, err := l.expand(data, path)
	if err != nil {
		return nil, err
	}

	db := New()
	extended := append([]string{filepath.Dir(path)}, searchPath...)
	if err := l.parseInto(db, text, path, extended); err != nil {
		return nil, err
	}
	l.logger.Info("Loaded database", "file", path, "records", db.Len())
	return db, nil
}

// expand applies macros line by line.
func (l *loader) expand(data []byte, path string) (string, error) {
	if l.opts.Macros == nil {
		return string(data), nil
	}
	var out strings.Builder
	var undefined []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		expanded, unmatched := macro.Expand(sc.Text(), l.opts.Macros)
		if len(unmatched) > 0 {
			if l.opts.DisallowUnmatched {
				l.logger.Error("Undefined macros", "file", path, "line", lineno, "macros", unmatched)
				undefined = append(undefined, fmt.Sprintf("%d:%s", lineno, strings.Join(unmatched, ",")))
			} else {
				l.logger.Debug("Undefined macros", "file", path, "line", lineno, "macros", unmatched)
			}
		}
		out.WriteString(expanded)
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(undefined) > 0 {
		return "", fmt.Errorf("%w in '%s' at %s", ErrUndefinedMacros, path, strings.Join(undefined, " "))
	}
	return out.String(), nil
}

func (l *loader) parseInto(db *Database, text, path string, searchPath []string) error {
	toks, err := tokenizer.TokenizeString(text, path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	s := tokenizer.NewStream(toks, path)
	for {
		t, ok := s.Next()
		if !ok {
			return nil
		}
		switch {
		case t.Is("record"), t.Is("grecord"):
			r, err := parseRecord(s, l.logger)
			if err != nil {
				return err
			}
			merged, err := db.AddRecord(r)
			if err != nil {
				return err
			}
			if merged {
				l.logger.Warn("Merging into existing record", "record", r.Name)
			} else {
				l.logger.Debug("Adding record", "record", r.Name)
			}
		case t.Is("alias"):
			p, ok, err := parsePair(s)
			if err != nil {
				return err
			}
			if !ok || !p.hasValue {
				return fmt.Errorf("%w: %s", ErrSyntax, s.Errorf(t, "failed to parse record alias"))
			}
			r, found := db.Get(p.key)
			if !found {
				return fmt.Errorf("%w: %s", ErrSyntax, s.Errorf(t, "alias '%s' for unknown record '%s'", p.value, p.key))
			}
			l.logger.Debug("Adding alias", "alias", p.value, "record", p.key)
			r.Aliases = append(r.Aliases, p.value)
		case t.Is("include"):
			inc, err := s.Must()
			if err != nil {
				return err
			}
			if err := l.include(db, inc.Text, path, searchPath); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrSyntax, s.Errorf(t, "unexpected token %s", t))
		}
	}
}

func (l *loader) include(db *Database, inclusion, from string, searchPath []string) error {
	db.AddIncluded(inclusion, nil)
	switch l.opts.Includes {
	case IncludeIgnore:
		return nil
	case IncludeSelf:
		included, err := l.load(inclusion, searchPath)
		if err != nil {
			return fmt.Errorf("include from %s: %w", from, err)
		}
		l.logger.Debug("Merging included database", "include", inclusion, "into", from)
		return db.Merge(included)
	case IncludeNew:
		included, err := l.load(inclusion, searchPath)
		if err != nil {
			return fmt.Errorf("include from %s: %w", from, err)
		}
		l.logger.Debug("Adding included database as separate template", "include", inclusion)
		db.AddIncluded(inclusion, included)
		return nil
	default:
		return fmt.Errorf("unknown include strategy %q", l.opts.Includes)
	}
}
