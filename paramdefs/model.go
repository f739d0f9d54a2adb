// Package paramdefs builds asyn parameter tables from EPICS templates or
// declarative model files.
//
// A table is an ordered list of (record kind, interface kind) descriptors
// under a prefix pair. The mixed-case prefix names the C identifiers and,
// uppercased, the include guard and sentinels. The upper prefix is used in
// the parameter name strings only:
//
//	Prefix{Mixed: "Test", Upper: "TST"}, (Bo, Asynint32)
//	    identifier  Test_BoAsynint32
//	    macro       Test_BoAsynint32String
//	    literal     "TST_BO_ASYNINT32"
package paramdefs

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/epics-go/dbtools/internal/codegen/common"
)

var (
	ErrUnknownRecordKind    = errors.New("unknown record kind")
	ErrUnknownInterfaceKind = errors.New("unknown interface kind")
	ErrDuplicateIdentifier  = errors.New("duplicate parameter identifier")
	ErrInvalidPrefix        = errors.New("invalid prefix")
	// ErrLiteralMismatch is returned when an asyn link names a parameter
	// that does not match its record type and DTYP.
	ErrLiteralMismatch = errors.New("parameter name does not match record")
	// ErrMixedUpperPrefix is returned when one template uses several
	// parameter name prefixes.
	ErrMixedUpperPrefix  = errors.New("parameters use different name prefixes")
	ErrUnsupportedFormat = errors.New("unsupported model file format")
)

// Prefix is the naming pair of a table.
type Prefix struct {
	// Mixed is used in identifiers, e.g. "Test".
	Mixed string
	// Upper is used in literals, e.g. "TST".
	Upper string
}

// Guard is UPPER(Mixed), used by the include guard and the sentinels.
func (p Prefix) Guard() string { return strings.ToUpper(p.Mixed) }

func (p Prefix) Validate() error {
	if !common.IsCIdentifier(p.Mixed) {
		return fmt.Errorf("%w: %q is not a C identifier", ErrInvalidPrefix, p.Mixed)
	}
	if p.Upper == "" || strings.IndexFunc(p.Upper, func(r rune) bool { return !common.IsIdentRune(r) }) >= 0 {
		return fmt.Errorf("%w: name prefix %q may only hold letters, digits and '_'", ErrInvalidPrefix, p.Upper)
	}
	return nil
}

// Descriptor is one parameter of a table.
type Descriptor struct {
	Record    RecordKind
	Interface InterfaceKind
}

func (d Descriptor) String() string {
	return fmt.Sprintf("(%s, %s)", d.Record, d.Interface)
}

// Param is a descriptor expanded under a prefix.
type Param struct {
	Descriptor
	Identifier  string
	StringMacro string
	Literal     string
	// ParamType is the asynParamType passed to createParam.
	ParamType string
}

// Expand names d under p.
func (p Prefix) Expand(d Descriptor) Param {
	id := fmt.Sprintf("%s_%s%s", p.Mixed, d.Record, d.Interface)
	return Param{
		Descriptor:  d,
		Identifier:  id,
		StringMacro: id + "String",
		Literal:     fmt.Sprintf("%s_%s_%s", p.Upper, d.Record.Upper(), d.Interface.Upper()),
		ParamType:   d.Interface.ParamType(),
	}
}

// Table is an ordered parameter table. Order is preserved as given.
type Table struct {
	Prefix Prefix
	// Source names the file the table was generated from.
	Source      string
	Descriptors []Descriptor
}

// Len returns the number of descriptors.
func (t *Table) Len() int { return len(t.Descriptors) }

// Params validates the table and expands every descriptor in order.
func (t *Table) Params() ([]Param, error) {
	if err := t.Prefix.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(t.Descriptors))
	params := make([]Param, 0, len(t.Descriptors))
	for i, d := range t.Descriptors {
		if _, ok := interfaceKinds[d.Interface]; !ok {
			return nil, fmt.Errorf("%w: %q at index %d", ErrUnknownInterfaceKind, d.Interface, i)
		}
		if !slices.Contains(recordKinds, d.Record) {
			return nil, fmt.Errorf("%w: %q at index %d", ErrUnknownRecordKind, d.Record, i)
		}
		p := t.Prefix.Expand(d)
		if prev, ok := seen[p.Identifier]; ok {
			return nil, fmt.Errorf("%w: %s at index %d and %d", ErrDuplicateIdentifier, p.Identifier, prev, i)
		}
		seen[p.Identifier] = i
		params = append(params, p)
	}
	return params, nil
}

// SourceName returns Source, defaulting to "{Mixed}.template".
func (t *Table) SourceName() string {
	if t.Source != "" {
		return t.Source
	}
	return t.Prefix.Mixed + ".template"
}
