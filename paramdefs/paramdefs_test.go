package paramdefs

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epics-go/dbtools/database"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixture = []Descriptor{
	{RecordBo, InterfaceInt32}, {RecordBi, InterfaceInt32}, {RecordLongin, InterfaceInt32}, {RecordLongout, InterfaceInt32},
	{RecordMbbi, InterfaceInt32}, {RecordMbbo, InterfaceInt32}, {RecordAo, InterfaceInt32}, {RecordAi, InterfaceInt32},
	{RecordAi, InterfaceFloat64}, {RecordAo, InterfaceFloat64}, {RecordLongin, InterfaceFloat64}, {RecordLongout, InterfaceFloat64},
	{RecordStringin, InterfaceOctetRead}, {RecordStringout, InterfaceOctetRead}, {RecordWaveform, InterfaceOctetRead},
	{RecordStringout, InterfaceOctetWrite}, {RecordStringin, InterfaceOctetWrite}, {RecordWaveform, InterfaceOctetWrite},
}

func TestParseRecordKind(t *testing.T) {
	for in, want := range map[string]RecordKind{
		"bo": RecordBo, "BO": RecordBo, "Bo": RecordBo, "stringin": RecordStringin, "WAVEFORM": RecordWaveform,
	} {
		got, err := ParseRecordKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "calc", "mbbiDirect", "string_in"} {
		_, err := ParseRecordKind(in)
		assert.ErrorIs(t, err, ErrUnknownRecordKind, in)
	}
}

func TestParseInterfaceKind(t *testing.T) {
	for in, want := range map[string]InterfaceKind{
		"asynInt32":         InterfaceInt32,
		"ASYNINT32":         InterfaceInt32,
		"Asynfloat64":       InterfaceFloat64,
		"asynOctetRead":     InterfaceOctetRead,
		"asynOctetWrite":    InterfaceOctetWrite,
		"asynUInt32Digital": InterfaceUInt32Digital,
	} {
		got, err := ParseInterfaceKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "asynInt64", "Soft Channel", "asyn_int32"} {
		_, err := ParseInterfaceKind(in)
		assert.ErrorIs(t, err, ErrUnknownInterfaceKind, in)
	}
}

func TestInterfaceParamType(t *testing.T) {
	assert.Equal(t, "asynParamInt32", InterfaceInt32.ParamType())
	assert.Equal(t, "asynParamFloat64", InterfaceFloat64.ParamType())
	assert.Equal(t, "asynParamOctet", InterfaceOctetRead.ParamType())
	assert.Equal(t, "asynParamOctet", InterfaceOctetWrite.ParamType())
	assert.Equal(t, "asynParamUInt32Digital", InterfaceUInt32Digital.ParamType())
	assert.Equal(t, "asynUInt32Digital", InterfaceUInt32Digital.DTYP())
}

func TestExpand(t *testing.T) {
	p := Prefix{Mixed: "Test", Upper: "TST"}.Expand(Descriptor{RecordBo, InterfaceInt32})
	assert.Equal(t, "Test_BoAsynint32", p.Identifier)
	assert.Equal(t, "Test_BoAsynint32String", p.StringMacro)
	assert.Equal(t, "TST_BO_ASYNINT32", p.Literal)
	assert.Equal(t, "asynParamInt32", p.ParamType)

	motor := Prefix{Mixed: "Motor", Upper: "MOT"}
	assert.Equal(t, "MOTOR", motor.Guard())
	assert.Equal(t, "MOT_STRINGOUT_ASYNOCTETWRITE", motor.Expand(Descriptor{RecordStringout, InterfaceOctetWrite}).Literal)
}

func TestParams(t *testing.T) {
	tbl := &Table{Prefix: Prefix{Mixed: "Test", Upper: "TST"}, Descriptors: fixture}
	params, err := tbl.Params()
	require.NoError(t, err)
	require.Len(t, params, len(fixture))
	assert.Equal(t, "Test_BoAsynint32", params[0].Identifier)
	assert.Equal(t, "Test_WaveformAsynoctetwrite", params[len(params)-1].Identifier)
	for i, p := range params {
		assert.Equal(t, fixture[i], p.Descriptor)
		assert.Equal(t, p.Identifier+"String", p.StringMacro)
	}
}

func TestParamsSameRecordDifferentInterface(t *testing.T) {
	tbl := &Table{
		Prefix:      Prefix{Mixed: "Test", Upper: "TST"},
		Descriptors: []Descriptor{{RecordAi, InterfaceInt32}, {RecordAi, InterfaceFloat64}},
	}
	params, err := tbl.Params()
	require.NoError(t, err)
	assert.NotEqual(t, params[0].Identifier, params[1].Identifier)
}

func TestParamsErrors(t *testing.T) {
	tests := []struct {
		name string
		tbl  Table
		want error
	}{
		{
			name: "duplicate",
			tbl:  Table{Prefix: Prefix{"Test", "TST"}, Descriptors: []Descriptor{{RecordBo, InterfaceInt32}, {RecordBo, InterfaceInt32}}},
			want: ErrDuplicateIdentifier,
		},
		{
			name: "unknown record",
			tbl:  Table{Prefix: Prefix{"Test", "TST"}, Descriptors: []Descriptor{{"Calc", InterfaceInt32}}},
			want: ErrUnknownRecordKind,
		},
		{
			name: "unknown interface",
			tbl:  Table{Prefix: Prefix{"Test", "TST"}, Descriptors: []Descriptor{{RecordBo, "Asynint64"}}},
			want: ErrUnknownInterfaceKind,
		},
		{
			name: "bad mixed prefix",
			tbl:  Table{Prefix: Prefix{"my-driver", "TST"}},
			want: ErrInvalidPrefix,
		},
		{
			name: "empty upper prefix",
			tbl:  Table{Prefix: Prefix{"Test", ""}},
			want: ErrInvalidPrefix,
		},
		{
			name: "newline in upper prefix",
			tbl:  Table{Prefix: Prefix{"Test", "T\nX"}, Descriptors: []Descriptor{{RecordBo, InterfaceInt32}}},
			want: ErrInvalidPrefix,
		},
		{
			name: "quote in upper prefix",
			tbl:  Table{Prefix: Prefix{"Test", `T"X`}},
			want: ErrInvalidPrefix,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tbl.Params()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	tbl, err := LoadTemplate(filepath.Join("testdata", "Test.template"), TemplateOptions{Logger: discard})
	require.NoError(t, err)

	assert.Equal(t, Prefix{Mixed: "Test", Upper: "TST"}, tbl.Prefix)
	assert.Equal(t, "Test.template", tbl.Source)
	assert.Equal(t, fixture, tbl.Descriptors)
}

func TestLoadTemplateOverrides(t *testing.T) {
	tbl, err := LoadTemplate(filepath.Join("testdata", "Test.template"), TemplateOptions{
		Mixed:  "Tester",
		Filter: "TST_MB",
		Macros: map[string]string{"P": "X:", "R": "Y:", "PORT": "P1"},
		Logger: discard,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tester", tbl.Prefix.Mixed)
	assert.Equal(t, "Test.template", tbl.Source)
	assert.Equal(t, []Descriptor{{RecordMbbi, InterfaceInt32}, {RecordMbbo, InterfaceInt32}}, tbl.Descriptors)
}

func TestLoadTemplateMissing(t *testing.T) {
	_, err := LoadTemplate(filepath.Join("testdata", "Missing.template"), TemplateOptions{Logger: discard})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.Contains(t, err.Error(), "Missing.template")
}

func asynRecord(t *testing.T, db *database.Database, rtype database.RecordType, name, dtyp, field, link string) {
	t.Helper()
	r := database.NewRecord(name, rtype)
	r.SetField("DTYP", dtyp)
	r.SetField(field, link)
	_, err := db.AddRecord(r)
	require.NoError(t, err)
}

func TestFromDatabase(t *testing.T) {
	db := database.New()
	asynRecord(t, db, database.Mbbi, "A", "asynUInt32Digital", "INP", "@asyn(PORT,0,1)DRV_MBBI_ASYNUINT32DIGITAL")
	asynRecord(t, db, database.BO, "B", "asynUInt32Digital", "OUT", "@asyn(PORT, 0, 1) DRV_BO_ASYNUINT32DIGITAL")
	asynRecord(t, db, database.BO, "C", "Soft Channel", "OUT", "A PP")

	tbl, err := FromDatabase(db, DeriveOptions{Mixed: "Driver", Logger: discard})
	require.NoError(t, err)
	assert.Equal(t, Prefix{Mixed: "Driver", Upper: "DRV"}, tbl.Prefix)
	assert.Equal(t, []Descriptor{{RecordMbbi, InterfaceUInt32Digital}, {RecordBo, InterfaceUInt32Digital}}, tbl.Descriptors)
	assert.Equal(t, "Driver.template", tbl.SourceName())
}

func TestFromDatabaseMaskLink(t *testing.T) {
	db := database.New()
	asynRecord(t, db, database.Mbbi, "A", "asynUInt32Digital", "INP", "@asynMask(PORT,0,0xFF,1)DRV_MBBI_ASYNUINT32DIGITAL")
	asynRecord(t, db, database.BO, "B", "asynUInt32Digital", "OUT", "@asynMask(PORT, 0, 0x1, 1) DRV_BO_ASYNUINT32DIGITAL")

	tbl, err := FromDatabase(db, DeriveOptions{Mixed: "Driver", Logger: discard})
	require.NoError(t, err)
	assert.Equal(t, []Descriptor{{RecordMbbi, InterfaceUInt32Digital}, {RecordBo, InterfaceUInt32Digital}}, tbl.Descriptors)
}

func TestAsynParamName(t *testing.T) {
	tests := []struct {
		link string
		name string
		ok   bool
	}{
		{"@asyn(PORT,0,1)TST_BO_ASYNINT32", "TST_BO_ASYNINT32", true},
		{" @asynMask(PORT,0,0xFF,1) DRV_MBBI_ASYNUINT32DIGITAL ", "DRV_MBBI_ASYNUINT32DIGITAL", true},
		{"@asyn(PORT,0,1)", "", false},
		{"@asyn PORT", "", false},
		{"@asyn2(PORT)X", "", false},
		{"A.VAL PP", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		name, ok := asynParamName(tt.link)
		assert.Equal(t, tt.ok, ok, tt.link)
		assert.Equal(t, tt.name, name, tt.link)
	}
}

func TestFromDatabaseMultiWordUpperPrefix(t *testing.T) {
	db := database.New()
	asynRecord(t, db, database.BO, "A", "asynInt32", "OUT", "@asyn(PORT,0,1)MY_DEV_BO_ASYNINT32")
	asynRecord(t, db, database.AI, "B", "asynFloat64", "INP", "@asyn(PORT,0,1)MY_DEV_AI_ASYNFLOAT64")

	tbl, err := FromDatabase(db, DeriveOptions{Mixed: "MyDev", Logger: discard})
	require.NoError(t, err)
	assert.Equal(t, Prefix{Mixed: "MyDev", Upper: "MY_DEV"}, tbl.Prefix)

	params, err := tbl.Params()
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "MY_DEV_BO_ASYNINT32", params[0].Literal)
	assert.Equal(t, "MY_DEV_AI_ASYNFLOAT64", params[1].Literal)
}

func TestFromDatabaseEmpty(t *testing.T) {
	tbl, err := FromDatabase(database.New(), DeriveOptions{Mixed: "EmptyTest", Logger: discard})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, "EMPTYTEST", tbl.Prefix.Upper)
}

func TestFromDatabaseErrors(t *testing.T) {
	tests := []struct {
		name  string
		rtype database.RecordType
		dtyp  string
		link  string
		want  error
	}{
		{"literal mismatch", database.AI, "asynInt32", "@asyn(P,0)TST_AO_ASYNINT32", ErrLiteralMismatch},
		{"no name prefix", database.AI, "asynInt32", "@asyn(P,0)AIASYNINT32", ErrLiteralMismatch},
		{"empty name prefix", database.AI, "asynInt32", "@asyn(P,0)_AI_ASYNINT32", ErrLiteralMismatch},
		{"wrong interface suffix", database.AI, "asynInt32", "@asyn(P,0)MY_DEV_AI_ASYNFLOAT64", ErrLiteralMismatch},
		{"unknown dtyp", database.AI, "asynInt64", "@asyn(P,0)TST_AI_ASYNINT64", ErrUnknownInterfaceKind},
		{"unknown record kind", database.Calc, "asynFloat64", "@asyn(P,0)TST_CALC_ASYNFLOAT64", ErrUnknownRecordKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := database.New()
			asynRecord(t, db, tt.rtype, "REC", tt.dtyp, "INP", tt.link)
			_, err := FromDatabase(db, DeriveOptions{Mixed: "Test", Logger: discard})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromDatabaseMixedUpperPrefix(t *testing.T) {
	db := database.New()
	asynRecord(t, db, database.AI, "A", "asynInt32", "INP", "@asyn(P,0)TST_AI_ASYNINT32")
	asynRecord(t, db, database.AO, "B", "asynInt32", "OUT", "@asyn(P,0)OTH_AO_ASYNINT32")

	_, err := FromDatabase(db, DeriveOptions{Mixed: "Test", Logger: discard})
	assert.ErrorIs(t, err, ErrMixedUpperPrefix)
}

func TestDecodeModel(t *testing.T) {
	want := &Table{
		Prefix:      Prefix{Mixed: "Motor", Upper: "MOT"},
		Source:      "Motor.template",
		Descriptors: []Descriptor{{RecordAo, InterfaceFloat64}, {RecordBi, InterfaceUInt32Digital}},
	}
	inputs := map[string]string{
		"yaml": `prefix: Motor
upper: MOT
source: Motor.template
params:
  - record: ao
    interface: asynFloat64
  - record: BI
    interface: asynUInt32Digital
`,
		"toml": `prefix = "Motor"
upper = "MOT"
source = "Motor.template"

[[params]]
record = "ao"
interface = "asynFloat64"

[[params]]
record = "BI"
interface = "asynUInt32Digital"
`,
		"json": `{"prefix": "Motor", "upper": "MOT", "source": "Motor.template",
 "params": [{"record": "ao", "interface": "asynFloat64"}, {"record": "BI", "interface": "asynUInt32Digital"}]}`,
	}
	for format, data := range inputs {
		t.Run(format, func(t *testing.T) {
			got, err := DecodeModel([]byte(data), format)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeModelErrors(t *testing.T) {
	_, err := DecodeModel([]byte("prefix: X\nparams:\n  - record: calc\n    interface: asynInt32\n"), "yaml")
	assert.ErrorIs(t, err, ErrUnknownRecordKind)

	_, err = DecodeModel([]byte("{}"), "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = DecodeModel([]byte("prefix: [unclosed"), "yaml")
	assert.Error(t, err)
}

func TestEncodeModelYAML(t *testing.T) {
	tbl := &Table{
		Prefix:      Prefix{Mixed: "Foo", Upper: "FOO"},
		Descriptors: []Descriptor{{RecordBo, InterfaceInt32}},
	}
	data, err := EncodeModel(tbl, "yaml")
	require.NoError(t, err)
	assert.Equal(t, "prefix: Foo\nupper: FOO\nparams:\n    - record: bo\n      interface: asynInt32\n", string(data))

	back, err := DecodeModel(data, "yaml")
	require.NoError(t, err)
	assert.Equal(t, tbl, back)
}

func TestLoadModelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.yml")
	require.NoError(t, os.WriteFile(path, []byte("prefix: Foo\nparams:\n  - record: bo\n    interface: asynInt32\n"), 0o644))

	tbl, err := LoadModelFile(path)
	require.NoError(t, err)
	assert.Equal(t, Prefix{Mixed: "Foo", Upper: "FOO"}, tbl.Prefix)
	assert.Equal(t, "Foo.yml", tbl.Source)

	_, err = LoadModelFile(filepath.Join(dir, "Foo.xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadModelWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"prefix": "Test", "upper": "TST", "params": [
		{"record": "mbbi", "interface": "asynInt32"},
		{"record": "bo", "interface": "asynInt32"}]}`), 0o644))

	tbl, err := Load(path, TemplateOptions{Mixed: "Other", Filter: "TST_MB"})
	require.NoError(t, err)
	assert.Equal(t, "Other", tbl.Prefix.Mixed)
	assert.Equal(t, []Descriptor{{RecordMbbi, InterfaceInt32}}, tbl.Descriptors)
}

func TestInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.template", "a.template", "notes.txt", "model.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.template"), 0o755))

	files, err := Inputs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.template"), filepath.Join(dir, "b.template")}, files)

	single := filepath.Join(dir, "model.yaml")
	files, err = Inputs(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)

	_, err = Inputs(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
