package paramdefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TemplateExt is the extension of EPICS templates picked up from
// directories.
const TemplateExt = ".template"

// Load builds a table from a model file or an EPICS template, chosen by
// extension. Mixed and Filter apply to both kinds of input.
func Load(path string, opts TemplateOptions) (*Table, error) {
	if !IsModelFile(path) {
		return LoadTemplate(path, opts)
	}
	t, err := LoadModelFile(path)
	if err != nil {
		return nil, err
	}
	if opts.Mixed != "" {
		t.Prefix.Mixed = opts.Mixed
	}
	if opts.Filter != "" {
		t.Descriptors = filterDescriptors(t, opts.Filter)
	}
	return t, nil
}

func filterDescriptors(t *Table, prefix string) []Descriptor {
	var kept []Descriptor
	for _, d := range t.Descriptors {
		if strings.HasPrefix(t.Prefix.Expand(d).Literal, prefix) {
			kept = append(kept, d)
		}
	}
	return kept
}

// Inputs expands path to the files Load accepts: the path itself for a
// file, or every template in a directory, sorted by name.
func Inputs(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if !st.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == TemplateExt {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
