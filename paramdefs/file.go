package paramdefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ModelFile is the on-disk form of a table:
//
//	prefix: Test
//	upper: TST
//	source: Test.template
//	params:
//	  - record: bo
//	    interface: asynInt32
type ModelFile struct {
	Prefix string       `yaml:"prefix" toml:"prefix" json:"prefix"`
	Upper  string       `yaml:"upper,omitempty" toml:"upper,omitempty" json:"upper,omitempty"`
	Source string       `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
	Params []ParamEntry `yaml:"params" toml:"params" json:"params"`
}

type ParamEntry struct {
	Record    string `yaml:"record" toml:"record" json:"record"`
	Interface string `yaml:"interface" toml:"interface" json:"interface"`
}

// Formats lists the model file formats by extension.
var Formats = []string{"yaml", "toml", "json"}

// FormatOf maps a file extension to a model format, "" if unsupported.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	}
	return ""
}

// IsModelFile reports whether path has a model file extension.
func IsModelFile(path string) bool { return FormatOf(path) != "" }

// LoadModelFile reads a YAML, TOML or JSON model file. Upper defaults to
// UPPER(prefix) and source to the model file's name.
func LoadModelFile(path string) (*Table, error) {
	format := FormatOf(path)
	if format == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	t, err := DecodeModel(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if t.Source == "" {
		t.Source = filepath.Base(path)
	}
	return t, nil
}

// DecodeModel parses model data in the given format.
func DecodeModel(data []byte, format string) (*Table, error) {
	var mf ModelFile
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &mf)
	case "toml":
		err = toml.Unmarshal(data, &mf)
	case "json":
		err = json.Unmarshal(data, &mf)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s model: %w", format, err)
	}
	return mf.Table()
}

// Table converts the file form, resolving kind names.
func (mf ModelFile) Table() (*Table, error) {
	t := &Table{
		Prefix: Prefix{Mixed: mf.Prefix, Upper: mf.Upper},
		Source: mf.Source,
	}
	if t.Prefix.Upper == "" {
		t.Prefix.Upper = t.Prefix.Guard()
	}
	for i, p := range mf.Params {
		rk, err := ParseRecordKind(p.Record)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		ik, err := ParseInterfaceKind(p.Interface)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		t.Descriptors = append(t.Descriptors, Descriptor{Record: rk, Interface: ik})
	}
	return t, nil
}

// ModelFile returns the file form of t, using database spellings for the
// kinds ("bo", "asynInt32").
func (t *Table) ModelFile() ModelFile {
	mf := ModelFile{
		Prefix: t.Prefix.Mixed,
		Upper:  t.Prefix.Upper,
		Source: t.Source,
		Params: make([]ParamEntry, 0, len(t.Descriptors)),
	}
	for _, d := range t.Descriptors {
		mf.Params = append(mf.Params, ParamEntry{
			Record:    d.Record.RecordType(),
			Interface: d.Interface.DTYP(),
		})
	}
	return mf
}

// EncodeModel renders t as a model file in the given format.
func EncodeModel(t *Table, format string) ([]byte, error) {
	mf := t.ModelFile()
	switch format {
	case "yaml":
		return yaml.Marshal(mf)
	case "toml":
		return toml.Marshal(mf)
	case "json":
		data, err := json.MarshalIndent(mf, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
