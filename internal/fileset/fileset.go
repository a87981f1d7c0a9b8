// Package fileset pairs batch inputs with their outputs: explicit file
// lists or whole directories in, derived paths out, with the "only newer"
// bookkeeping that keeps repeated runs incremental.
package fileset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Pair is one conversion job.
type Pair struct {
	In  string
	Out string
}

// Expand resolves a source set: an explicit file list wins, otherwise every
// regular file of dir in sorted order.
func Expand(files []string, dir string) ([]string, error) {
	if len(files) > 0 {
		return files, nil
	}
	if dir == "" {
		return nil, fmt.Errorf("no input files or directory given")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Stem returns the file name without directory or extension; it names the
// archive in message ids and derived outputs.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Pairs matches inputs with outputs. An explicit output list must match the
// input count; otherwise outputs land in outDir as the input's stem plus
// ext ("" for extension-less archive outputs).
func Pairs(inputs, outputs []string, outDir, ext string) ([]Pair, error) {
	if len(outputs) > 0 {
		if len(outputs) != len(inputs) {
			return nil, fmt.Errorf("%d inputs but %d outputs", len(inputs), len(outputs))
		}
		pairs := make([]Pair, len(inputs))
		for i := range inputs {
			pairs[i] = Pair{In: inputs[i], Out: outputs[i]}
		}
		return pairs, nil
	}

	if outDir == "" {
		return nil, fmt.Errorf("no output files or directory given")
	}
	pairs := make([]Pair, len(inputs))
	for i, in := range inputs {
		name := Stem(in)
		if ext != "" {
			name += "." + ext
		}
		pairs[i] = Pair{In: in, Out: filepath.Join(outDir, name)}
	}
	return pairs, nil
}

// UpToDate reports whether out already reflects in: both exist and out is at
// least as fresh. Missing files simply mean "convert".
func UpToDate(in, out string) bool {
	inInfo, err := os.Stat(in)
	if err != nil {
		return false
	}
	outInfo, err := os.Stat(out)
	if err != nil {
		return false
	}
	return !outInfo.ModTime().Before(inInfo.ModTime())
}

// SyncTimes stamps in's times from out so the pair compares clean on the
// next incremental run.
func SyncTimes(in, out string) error {
	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	return os.Chtimes(in, info.ModTime(), info.ModTime())
}
