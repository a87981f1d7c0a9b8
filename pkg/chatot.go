// Package pkg is the top-level API: load a character map once, then run
// decode or encode batches over archive/text file sets.
package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/YakoSWG/chatot/internal/fileset"
	"github.com/YakoSWG/chatot/pkg/batch"
	"github.com/YakoSWG/chatot/pkg/charmap"
)

// FileSet selects inputs or outputs: an explicit file list or a directory.
type FileSet struct {
	Files []string
	Dir   string
}

// DecodeArchives converts binary text archives to text/JSON documents.
func DecodeArchives(charmapPath string, src, dst FileSet, settings batch.Settings, logger hclog.Logger) error {
	cm, err := charmap.Load(charmapPath, logger)
	if err != nil {
		return err
	}

	inputs, err := fileset.Expand(src.Files, src.Dir)
	if err != nil {
		return fmt.Errorf("archive source: %w", err)
	}

	ext := "txt"
	if settings.JSON {
		ext = "json"
	}
	pairs, err := fileset.Pairs(inputs, dst.Files, dst.Dir, ext)
	if err != nil {
		return fmt.Errorf("text destination: %w", err)
	}

	runner := &batch.Runner{Charmap: cm, Settings: settings, Logger: logger}
	return runner.Decode(pairs)
}

// EncodeTexts converts text/JSON documents back to binary text archives.
func EncodeTexts(charmapPath string, src, dst FileSet, settings batch.Settings, logger hclog.Logger) error {
	cm, err := charmap.Load(charmapPath, logger)
	if err != nil {
		return err
	}

	inputs, err := fileset.Expand(src.Files, src.Dir)
	if err != nil {
		return fmt.Errorf("text source: %w", err)
	}

	// Archives are conventionally extension-less.
	pairs, err := fileset.Pairs(inputs, dst.Files, dst.Dir, "")
	if err != nil {
		return fmt.Errorf("archive destination: %w", err)
	}

	runner := &batch.Runner{Charmap: cm, Settings: settings, Logger: logger}
	return runner.Encode(pairs)
}
