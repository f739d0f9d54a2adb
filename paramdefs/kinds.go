package paramdefs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/epics-go/dbtools/internal/codegen/common"
)

// RecordKind is a record type that can carry an asyn parameter, spelled
// the way it appears in generated identifiers.
type RecordKind string

const (
	RecordBo        RecordKind = "Bo"
	RecordBi        RecordKind = "Bi"
	RecordLongin    RecordKind = "Longin"
	RecordLongout   RecordKind = "Longout"
	RecordMbbi      RecordKind = "Mbbi"
	RecordMbbo      RecordKind = "Mbbo"
	RecordAo        RecordKind = "Ao"
	RecordAi        RecordKind = "Ai"
	RecordStringin  RecordKind = "Stringin"
	RecordStringout RecordKind = "Stringout"
	RecordWaveform  RecordKind = "Waveform"
)

var recordKinds = []RecordKind{
	RecordBo, RecordBi, RecordLongin, RecordLongout, RecordMbbi, RecordMbbo,
	RecordAo, RecordAi, RecordStringin, RecordStringout, RecordWaveform,
}

// ParseRecordKind accepts a record kind in any case, e.g. "bo", "Bo" or "BO".
func ParseRecordKind(s string) (RecordKind, error) {
	k := RecordKind(common.ToPascalCase(s))
	if !slices.Contains(recordKinds, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRecordKind, s)
	}
	return k, nil
}

// Upper is the spelling used in parameter literals.
func (k RecordKind) Upper() string { return strings.ToUpper(string(k)) }

// RecordType is the database record type name, e.g. "stringin".
func (k RecordKind) RecordType() string { return strings.ToLower(string(k)) }

// InterfaceKind is an asyn interface, spelled the way it appears in
// generated identifiers.
type InterfaceKind string

const (
	InterfaceInt32         InterfaceKind = "Asynint32"
	InterfaceFloat64       InterfaceKind = "Asynfloat64"
	InterfaceOctetRead     InterfaceKind = "Asynoctetread"
	InterfaceOctetWrite    InterfaceKind = "Asynoctetwrite"
	InterfaceUInt32Digital InterfaceKind = "Asynuint32digital"
)

type interfaceInfo struct {
	dtyp      string
	paramType string
}

var interfaceKinds = map[InterfaceKind]interfaceInfo{
	InterfaceInt32:         {"asynInt32", "asynParamInt32"},
	InterfaceFloat64:       {"asynFloat64", "asynParamFloat64"},
	InterfaceOctetRead:     {"asynOctetRead", "asynParamOctet"},
	InterfaceOctetWrite:    {"asynOctetWrite", "asynParamOctet"},
	InterfaceUInt32Digital: {"asynUInt32Digital", "asynParamUInt32Digital"},
}

// ParseInterfaceKind accepts an interface kind in any case, e.g.
// "asynInt32" (a DTYP value) or "Asynint32".
func ParseInterfaceKind(s string) (InterfaceKind, error) {
	k := InterfaceKind(common.ToPascalCase(s))
	if _, ok := interfaceKinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownInterfaceKind, s)
	}
	return k, nil
}

// Upper is the spelling used in parameter literals, keeping the ASYN prefix.
func (k InterfaceKind) Upper() string { return strings.ToUpper(string(k)) }

// DTYP returns the device type name used in database files.
func (k InterfaceKind) DTYP() string { return interfaceKinds[k].dtyp }

// ParamType returns the asynParamType used when creating the parameter.
// Both octet directions share asynParamOctet.
func (k InterfaceKind) ParamType() string { return interfaceKinds[k].paramType }
