// Package batch fans decode/encode pipelines across many archive files.
// Files are independent and share only the read-only character map, so the
// pool needs no coordination beyond collecting per-file results; one bad
// file never stops the rest.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/YakoSWG/chatot/internal/fileset"
	"github.com/YakoSWG/chatot/pkg/charmap"
	"github.com/YakoSWG/chatot/pkg/msg"
)

// ErrBatch reports that at least one file in a batch failed.
var ErrBatch = errors.New("batch finished with failures")

// Settings is the per-invocation configuration shared by every file.
type Settings struct {
	JSON       bool   // read/write the JSON document form
	Lang       string // language tag for JSON documents
	Msgenc     bool   // legacy msgenc text rendering
	BestEffort bool   // lossy handling of unmappable input
	NewerOnly  bool   // skip files whose output is already fresh
	Workers    int    // pool size; <=0 means GOMAXPROCS-ish default
}

// Runner drives a batch. The charmap is never mutated after construction, so
// workers read it without locks.
type Runner struct {
	Charmap  *charmap.Charmap
	Settings Settings
	Logger   hclog.Logger
}

func (r *Runner) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

func (r *Runner) options() msg.Options {
	return msg.Options{
		Msgenc:     r.Settings.Msgenc,
		BestEffort: r.Settings.BestEffort,
		Logger:     r.Logger,
	}
}

// Decode converts binary archives to text or JSON documents.
func (r *Runner) Decode(pairs []fileset.Pair) error {
	return r.run(pairs, r.decodeFile)
}

// Encode converts text or JSON documents back to binary archives.
func (r *Runner) Encode(pairs []fileset.Pair) error {
	return r.run(pairs, r.encodeFile)
}

// run executes fn for every pair on a bounded worker pool and aggregates
// failures. Deterministic codec errors are never retried.
func (r *Runner) run(pairs []fileset.Pair, fn func(fileset.Pair) error) error {
	workers := r.Settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan fileset.Pair)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				if err := fn(p); err != nil {
					r.logger().Error("file failed", "input", p.In, "error", err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	for _, p := range pairs {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrBatch, failed, len(pairs))
	}
	return nil
}

func (r *Runner) decodeFile(p fileset.Pair) error {
	log := r.logger()

	if r.Settings.NewerOnly && fileset.UpToDate(p.In, p.Out) {
		log.Debug("skipping, output is newer", "input", p.In, "output", p.Out)
		return nil
	}
	log.Debug("decoding archive", "input", p.In, "output", p.Out)

	data, err := os.ReadFile(p.In)
	if err != nil {
		return err
	}
	archive, err := msg.ParseArchive(data)
	if err != nil {
		return err
	}
	messages, err := msg.DecodeArchive(archive, r.Charmap, r.options())
	if err != nil {
		return err
	}

	if r.Settings.JSON {
		// Merge into the previous document so other languages survive.
		existing, _ := os.ReadFile(p.Out)
		doc, err := msg.BuildJSONDoc(fileset.Stem(p.Out), archive.Key, messages, r.Settings.Lang, existing)
		if err != nil {
			return err
		}
		if err := os.WriteFile(p.Out, doc, 0644); err != nil {
			return err
		}
	} else {
		var buf bytes.Buffer
		if err := msg.WriteTextDoc(&buf, archive.Key, messages, r.Settings.Msgenc); err != nil {
			return err
		}
		if err := os.WriteFile(p.Out, buf.Bytes(), 0644); err != nil {
			return err
		}
	}

	if r.Settings.NewerOnly {
		if err := fileset.SyncTimes(p.In, p.Out); err != nil {
			log.Warn("could not sync timestamps", "input", p.In, "error", err)
		}
	}
	return nil
}

func (r *Runner) encodeFile(p fileset.Pair) error {
	log := r.logger()

	if r.Settings.NewerOnly && fileset.UpToDate(p.In, p.Out) {
		log.Debug("skipping, output is newer", "input", p.In, "output", p.Out)
		return nil
	}
	log.Debug("encoding text", "input", p.In, "output", p.Out)

	data, err := os.ReadFile(p.In)
	if err != nil {
		return err
	}

	var archive *msg.Archive
	if r.Settings.JSON {
		key, lines, err := msg.ReadJSONDoc(data, r.Settings.Lang)
		if err != nil {
			return err
		}
		archive, err = msg.EncodeArchive(key, lines, r.Charmap, r.options())
		if err != nil {
			return err
		}
	} else {
		archive, err = msg.EncodeTextDoc(bytes.NewReader(data), r.Charmap, r.options())
		if err != nil {
			return err
		}
	}

	out, err := archive.Build()
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.Out, out, 0644); err != nil {
		return err
	}

	if r.Settings.NewerOnly {
		if err := fileset.SyncTimes(p.In, p.Out); err != nil {
			log.Warn("could not sync timestamps", "input", p.In, "error", err)
		}
	}
	return nil
}
