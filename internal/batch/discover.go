package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/dgnsrekt/readout/internal/event"
	"github.com/dgnsrekt/readout/internal/pipeline"
)

// ErrUnsupportedType is returned for a single-file input whose extension
// is not convertible.
var ErrUnsupportedType = errors.New("unsupported file type")

// DefaultExtensions are the document types the extractor understands.
var DefaultExtensions = []string{".txt", ".md", ".markdown"}

// Discover expands inputs into the ordered list of work items.
//
// A single input is strict: an unsupported or unreadable file, or a
// failing directory scan, fails discovery outright. Multiple inputs are
// lenient: bad entries are skipped with a file:warning event. Directories
// are scanned recursively; unsupported files inside them are skipped
// silently.
func Discover(inputs []string, exts []string, bus *event.Bus) ([]pipeline.Item, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	pattern := extPattern(exts)
	strict := len(inputs) == 1

	var items []pipeline.Item
	add := func(path string) {
		items = append(items, pipeline.Item{Path: path, Index: len(items)})
	}
	warn := func(path, reason string) {
		log.Warn("skipping input", "path", path, "reason", reason)
		bus.Publish(event.Event{Type: event.FileWarning, Path: path, Reason: reason})
	}

	for _, input := range inputs {
		path, err := homedir.Expand(input)
		if err != nil {
			path = input
		}

		info, err := os.Stat(path)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("cannot access %s: %w", input, err)
			}
			warn(input, fmt.Sprintf("cannot access: %v", err))
			continue
		}

		if info.IsDir() {
			walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if matchExt(pattern, p) {
					add(p)
				}
				return nil
			})
			if walkErr != nil {
				if strict {
					return nil, fmt.Errorf("scanning %s: %w", input, walkErr)
				}
				warn(input, fmt.Sprintf("scan failed: %v", walkErr))
			}
			continue
		}

		if !matchExt(pattern, path) {
			if strict {
				return nil, fmt.Errorf("%s: %w", input, ErrUnsupportedType)
			}
			warn(input, "unsupported file type")
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("cannot read %s: %w", input, err)
			}
			warn(input, fmt.Sprintf("cannot read: %v", err))
			continue
		}
		f.Close()
		add(path)
	}

	return items, nil
}

// extPattern builds a doublestar brace pattern like "*.{txt,md,markdown}"
// from a list of dotted extensions.
func extPattern(exts []string) string {
	trimmed := make([]string, len(exts))
	for i, e := range exts {
		trimmed[i] = strings.TrimPrefix(strings.ToLower(e), ".")
	}
	return fmt.Sprintf("*.{%s}", strings.Join(trimmed, ","))
}

func matchExt(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, strings.ToLower(filepath.Base(path)))
	return err == nil && ok
}
