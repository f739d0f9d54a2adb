package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/epics-go/dbtools/internal/codegen/common"
)

type Version struct {
	JSON bool `help:"Print the version and its components as JSON"`
}

type versionInfo struct {
	Version string `json:"version"`
	Major   int    `json:"major"`
	Minor   int    `json:"minor"`
	Patch   int    `json:"patch"`
}

// Run is called by Kong when the version command is executed.
func (v *Version) Run() error {
	return v.print(os.Stdout)
}

func (v *Version) print(w io.Writer) error {
	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	if !v.JSON {
		_, err = fmt.Fprintf(w, "dbtools %s\n", version)
		return err
	}
	info := versionInfo{Version: version}
	info.Major, info.Minor, info.Patch = common.ParseVersion(version)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
