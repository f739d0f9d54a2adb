// Package database parses EPICS database (.db) and template (.template)
// files into ordered record sets.
package database

import (
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrNotFound is returned when a database file cannot be located.
	ErrNotFound = errors.New("database file not found")
	// ErrInvalidRecordType is returned for record types EPICS base does not define.
	ErrInvalidRecordType = errors.New("invalid record type")
	// ErrConflictingRecord is returned when a record reappears with another type.
	ErrConflictingRecord = errors.New("conflicting record definition")
	// ErrUndefinedMacros is returned when macros stay unexpanded and that is not allowed.
	ErrUndefinedMacros = errors.New("undefined macros")
	// ErrIncludeCycle is returned when a file includes itself, directly or not.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrSyntax wraps malformed database input.
	ErrSyntax = errors.New("syntax error")
)

// Database is an insertion-ordered set of records keyed by record name.
type Database struct {
	records  *orderedmap.OrderedMap[string, *Record]
	included *orderedmap.OrderedMap[string, *Database]
}

func New() *Database {
	return &Database{
		records:  orderedmap.New[string, *Record](),
		included: orderedmap.New[string, *Database](),
	}
}

// Len returns the number of records.
func (db *Database) Len() int { return db.records.Len() }

// Get returns the record called name.
func (db *Database) Get(name string) (*Record, bool) {
	return db.records.Get(name)
}

// Records returns all records in definition order.
func (db *Database) Records() []*Record {
	out := make([]*Record, 0, db.records.Len())
	for p := db.records.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// AddRecord inserts r. A record that already exists with the same type is
// merged into the existing definition and merged is true.
func (db *Database) AddRecord(r *Record) (merged bool, err error) {
	existing, ok := db.records.Get(r.Name)
	if !ok {
		db.records.Set(r.Name, r)
		return false, nil
	}
	if existing.Type != r.Type {
		return false, fmt.Errorf("%w: reappearing record '%s' with conflicting record type '%s'",
			ErrConflictingRecord, r.Name, r.Type)
	}
	if err := existing.Merge(r); err != nil {
		return false, err
	}
	return true, nil
}

// Merge adds every record of other to db.
func (db *Database) Merge(other *Database) error {
	for p := other.records.Oldest(); p != nil; p = p.Next() {
		if _, err := db.AddRecord(p.Value); err != nil {
			return err
		}
	}
	return nil
}

// AddIncluded records an include statement. included is nil when the file
// was not loaded or was merged into db.
func (db *Database) AddIncluded(path string, included *Database) {
	db.included.Set(path, included)
}

// Included returns the separately loaded database for an include path.
func (db *Database) Included(path string) (*Database, bool) {
	return db.included.Get(path)
}

// IncludedPaths lists include statements in the order they appeared.
func (db *Database) IncludedPaths() []string {
	out := make([]string, 0, db.included.Len())
	for p := db.included.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Equal reports whether both databases hold equal records in the same order.
func (db *Database) Equal(other *Database) bool {
	if other == nil || db.Len() != other.Len() {
		return false
	}
	a, b := db.records.Oldest(), other.records.Oldest()
	for a != nil && b != nil {
		if !a.Value.Equal(b.Value) {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return true
}

// String renders all records in canonical syntax, separated by blank lines.
func (db *Database) String() string {
	parts := make([]string, 0, db.Len())
	for _, r := range db.Records() {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, "\n")
}
