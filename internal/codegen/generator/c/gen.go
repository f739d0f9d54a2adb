package cgen

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/epics-go/dbtools/internal/util"
	"github.com/epics-go/dbtools/paramdefs"
)

// Output names the files Generate writes.
type Output struct {
	Header string
	// Source is skipped when empty.
	Source string
}

// Generate renders t and writes the header, and the C++ source when
// requested. Both files are rendered and staged before either replaces its
// target, so a failure leaves the previous pair in place.
func Generate(logger *slog.Logger, out Output, t *paramdefs.Table) error {
	header, err := RenderHeader(t)
	if err != nil {
		return fmt.Errorf("render %s: %w", out.Header, err)
	}
	var source []byte
	if out.Source != "" {
		if source, err = RenderSource(t); err != nil {
			return fmt.Errorf("render %s: %w", out.Source, err)
		}
	}

	pendingHeader, err := util.StageFile(out.Header, header, 0o644)
	if err != nil {
		return err
	}
	var pendingSource *util.PendingFile
	if out.Source != "" {
		if pendingSource, err = util.StageFile(out.Source, source, 0o644); err != nil {
			pendingHeader.Discard()
			return err
		}
	}

	if err := pendingHeader.Commit(); err != nil {
		if pendingSource != nil {
			pendingSource.Discard()
		}
		return err
	}
	logger.Info("Generated C header", "file", out.Header, "params", t.Len(), "size", humanize.Bytes(uint64(len(header))))

	if pendingSource != nil {
		if err := pendingSource.Commit(); err != nil {
			return err
		}
		logger.Info("Generated C++ source", "file", out.Source, "size", humanize.Bytes(uint64(len(source))))
	}
	return nil
}
