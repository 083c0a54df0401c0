// Package outpath decides where finished audio artifacts land and tracks
// temporary artifacts so an aborted run can remove them.
package outpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrExists is returned when the destination exists and overwriting is
// disabled.
var ErrExists = errors.New("destination already exists")

// Placement is the resolved destination for one item's audio.
type Placement struct {
	Path string

	// Direct is true when Path is the final destination and no cleanup
	// step is needed afterwards.
	Direct bool
}

// Resolver computes destinations for audio artifacts.
//
// Direct placement puts the artifact in OutputDir, or next to its source
// when OutputDir is empty. Staged placement writes to a uniquely named
// file under StageDir instead; the caller (catalog import) owns the final
// copy and the staged file is cleaned up afterwards.
type Resolver struct {
	OutputDir string
	Staged    bool
	StageDir  string // defaults to the system temp dir
	Overwrite bool
	Ext       string // output extension, default ".wav"
}

// Resolve returns the destination for srcPath's audio.
func (r *Resolver) Resolve(srcPath string) (Placement, error) {
	ext := r.Ext
	if ext == "" {
		ext = ".wav"
	}
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	if r.Staged {
		dir := r.StageDir
		if dir == "" {
			dir = os.TempDir()
		}
		name := fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], ext)
		return Placement{Path: filepath.Join(dir, name), Direct: false}, nil
	}

	dir := r.OutputDir
	if dir == "" {
		dir = filepath.Dir(srcPath)
	}
	dest := filepath.Join(dir, stem+ext)

	if !r.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			return Placement{}, fmt.Errorf("%s: %w", dest, ErrExists)
		}
	}
	return Placement{Path: dest, Direct: true}, nil
}
