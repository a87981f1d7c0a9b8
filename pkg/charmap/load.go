package charmap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// File is the on-disk charmap configuration.
type File struct {
	Header  Header  `json:"header"`
	Entries []Entry `json:"entries"`
}

// Header carries free-form provenance for the map file.
type Header struct {
	Description string `json:"description"`
	Version     string `json:"version"`
}

// NewSourceReader wraps a text input so UTF-8 BOMs and UTF-16 files from
// Windows editors decode transparently to plain UTF-8.
func NewSourceReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// Load reads and compiles a charmap configuration file.
func Load(path string, logger hclog.Logger) (*Charmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open charmap: %w", err)
	}
	defer f.Close()

	var file File
	if err := json.NewDecoder(NewSourceReader(f)).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse charmap %s: %w", path, err)
	}

	cm, err := Compile(file.Entries, logger)
	if err != nil {
		return nil, fmt.Errorf("charmap %s: %w", path, err)
	}

	if logger != nil {
		logger.Debug("charmap loaded",
			"path", path,
			"version", file.Header.Version,
			"chars", cm.Len())
	}
	return cm, nil
}
