package cmd

import (
	"fmt"

	"github.com/epics-go/dbtools/macro"
)

// parseMacros merges every -m definition string, later ones winning.
func parseMacros(defs []string) (map[string]string, error) {
	sets := make([]map[string]string, 0, len(defs))
	for _, d := range defs {
		m, err := macro.Split(d)
		if err != nil {
			return nil, fmt.Errorf("invalid macro definition %q: %w", d, err)
		}
		sets = append(sets, m)
	}
	return macro.Merge(sets...), nil
}
