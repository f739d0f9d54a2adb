package database

import "fmt"

// RecordType is an EPICS base record type name as written in a database
// file, e.g. "ai" or "mbbiDirect".
//
// See https://epics-base.github.io/epics-base/recordrefmanual.html
type RecordType string

const (
	AAI        RecordType = "aai"        // Analog Array Input
	AAO        RecordType = "aao"        // Analog Array Output
	AI         RecordType = "ai"         // Analog Input
	AO         RecordType = "ao"         // Analog Output
	ASub       RecordType = "aSub"       // Array Subroutine
	BI         RecordType = "bi"         // Binary Input
	BO         RecordType = "bo"         // Binary Output
	Calcout    RecordType = "calcout"    // Calculation Output
	Calc       RecordType = "calc"       // Calculation
	Compress   RecordType = "compress"   // Compression
	Dfanout    RecordType = "dfanout"    // Data Fanout
	Event      RecordType = "event"      // Event
	Fanout     RecordType = "fanout"     // Fanout
	Histogram  RecordType = "histogram"  // Histogram
	Int64in    RecordType = "int64in"    // 64bit Integer Input
	Int64out   RecordType = "int64out"   // 64bit Integer Output
	Longin     RecordType = "longin"     // Long Input
	Longout    RecordType = "longout"    // Long Output
	LSI        RecordType = "lsi"        // Long String Input
	LSO        RecordType = "lso"        // Long String Output
	MbbiDirect RecordType = "mbbiDirect" // Multi-Bit Binary Input Direct
	Mbbi       RecordType = "mbbi"       // Multi-Bit Binary Input
	MbboDirect RecordType = "mbboDirect" // Multi-Bit Binary Output Direct
	Mbbo       RecordType = "mbbo"       // Multi-Bit Binary Output
	Permissive RecordType = "permissive" // Permissive
	Printf     RecordType = "printf"     // Printf
	Sel        RecordType = "sel"        // Select
	Seq        RecordType = "seq"        // Sequence
	State      RecordType = "state"      // State
	Stringin   RecordType = "stringin"   // String Input
	Stringout  RecordType = "stringout"  // String Output
	SubArray   RecordType = "subArray"   // Sub-Array
	Sub        RecordType = "sub"        // Subroutine
	Waveform   RecordType = "waveform"   // Waveform
)

var recordTypes = map[RecordType]struct{}{
	AAI: {}, AAO: {}, AI: {}, AO: {}, ASub: {}, BI: {}, BO: {}, Calcout: {}, Calc: {},
	Compress: {}, Dfanout: {}, Event: {}, Fanout: {}, Histogram: {}, Int64in: {},
	Int64out: {}, Longin: {}, Longout: {}, LSI: {}, LSO: {}, MbbiDirect: {}, Mbbi: {},
	MbboDirect: {}, Mbbo: {}, Permissive: {}, Printf: {}, Sel: {}, Seq: {}, State: {},
	Stringin: {}, Stringout: {}, SubArray: {}, Sub: {}, Waveform: {},
}

// ParseRecordType validates s against the known record types. Matching is
// case-sensitive, as in EPICS base.
func ParseRecordType(s string) (RecordType, error) {
	rt := RecordType(s)
	if _, ok := recordTypes[rt]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecordType, s)
	}
	return rt, nil
}
