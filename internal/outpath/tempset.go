package outpath

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// TempSet tracks temporary artifacts created during a batch run. Items
// running concurrently add and remove their own entries independently;
// the set only guards membership.
type TempSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewTempSet creates an empty set.
func NewTempSet() *TempSet {
	return &TempSet{paths: make(map[string]struct{})}
}

// Add registers a temporary path.
func (s *TempSet) Add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[path] = struct{}{}
}

// Remove unregisters a path after its owner cleaned it up.
func (s *TempSet) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths, path)
}

// Len reports the number of tracked paths.
func (s *TempSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// CleanupAll deletes every tracked file and clears the set. Used when a
// run is stopped before its items could clean up after themselves.
func (s *TempSet) CleanupAll() {
	s.mu.Lock()
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	s.paths = make(map[string]struct{})
	s.mu.Unlock()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn("unable to remove temporary file", "path", p, "error", err)
		}
	}
}
