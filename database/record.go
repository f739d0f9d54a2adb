package database

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is a single record instance. Fields and infos keep their
// definition order.
type Record struct {
	Name    string
	Type    RecordType
	Fields  *orderedmap.OrderedMap[string, string]
	Infos   *orderedmap.OrderedMap[string, string]
	Aliases []string
}

func NewRecord(name string, rtype RecordType) *Record {
	return &Record{
		Name:   name,
		Type:   rtype,
		Fields: orderedmap.New[string, string](),
		Infos:  orderedmap.New[string, string](),
	}
}

// Field returns the value of field name.
func (r *Record) Field(name string) (string, bool) {
	return r.Fields.Get(name)
}

// SetField sets field name, keeping its original position if it exists.
func (r *Record) SetField(name, value string) {
	r.Fields.Set(name, value)
}

func (r *Record) SetInfo(name, value string) {
	r.Infos.Set(name, value)
}

// Merge copies fields, infos and aliases of another definition of the same
// record into r. Values from other win.
func (r *Record) Merge(other *Record) error {
	if r.Name != other.Name || r.Type != other.Type {
		return fmt.Errorf("%w: '%s' (%s) vs '%s' (%s)",
			ErrConflictingRecord, r.Name, r.Type, other.Name, other.Type)
	}
	for p := other.Fields.Oldest(); p != nil; p = p.Next() {
		r.Fields.Set(p.Key, p.Value)
	}
	for p := other.Infos.Oldest(); p != nil; p = p.Next() {
		r.Infos.Set(p.Key, p.Value)
	}
	r.Aliases = append(r.Aliases, other.Aliases...)
	return nil
}

// Equal compares name, type, ordered fields and infos, and aliases.
func (r *Record) Equal(other *Record) bool {
	if other == nil || r.Name != other.Name || r.Type != other.Type {
		return false
	}
	if !equalOrdered(r.Fields, other.Fields) || !equalOrdered(r.Infos, other.Infos) {
		return false
	}
	if len(r.Aliases) != len(other.Aliases) {
		return false
	}
	for i := range r.Aliases {
		if r.Aliases[i] != other.Aliases[i] {
			return false
		}
	}
	return true
}

func equalOrdered(a, b *orderedmap.OrderedMap[string, string]) bool {
	if a.Len() != b.Len() {
		return false
	}
	pa, pb := a.Oldest(), b.Oldest()
	for pa != nil && pb != nil {
		if pa.Key != pb.Key || pa.Value != pb.Value {
			return false
		}
		pa, pb = pa.Next(), pb.Next()
	}
	return true
}

// String renders the record in canonical database syntax. The output
// parses back into an equal record.
func (r *Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "record (%s, \"%s\") {\n", r.Type, r.Name)
	for p := r.Fields.Oldest(); p != nil; p = p.Next() {
		fmt.Fprintf(&b, "    field(%-4s, \"%s\")\n", p.Key, p.Value)
	}
	for p := r.Infos.Oldest(); p != nil; p = p.Next() {
		fmt.Fprintf(&b, "    info(%s, \"%s\")\n", p.Key, p.Value)
	}
	for _, a := range r.Aliases {
		fmt.Fprintf(&b, "    alias(\"%s\")\n", a)
	}
	b.WriteString("}\n")
	return b.String()
}
