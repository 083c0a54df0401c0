// Package catalog registers finished audio artifacts in an external media
// library. The only implementation drives the Apple Music app over
// osascript; everything behind that boundary is the app's business.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrImporterUnavailable indicates the automation bridge is missing on
// this system.
var ErrImporterUnavailable = errors.New("catalog importer is not available")

// Importer registers an audio file under a title and returns the
// catalog's track identifier.
type Importer interface {
	ImportAudioFile(ctx context.Context, path, title string) (string, error)
}

// MusicImporter adds tracks to the Apple Music (formerly iTunes) library.
type MusicImporter struct {
	// App is the automation target, "Music" by default. Older systems
	// use "iTunes".
	App string
}

// Available reports whether the osascript bridge exists.
func (m *MusicImporter) Available() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

// ImportAudioFile adds the file to the library, names the track, and
// returns its persistent ID.
func (m *MusicImporter) ImportAudioFile(ctx context.Context, path, title string) (string, error) {
	if !m.Available() {
		return "", ErrImporterUnavailable
	}

	app := m.App
	if app == "" {
		app = "Music"
	}

	out, err := exec.CommandContext(ctx, "osascript", "-e", importScript(app, path, title)).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("importing %s: %s", path, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("importing %s: %w", path, err)
	}

	trackID := strings.TrimSpace(string(out))
	if trackID == "" {
		return "", fmt.Errorf("importing %s: %s returned no track ID", path, app)
	}
	return trackID, nil
}

// importScript builds the AppleScript that adds the file, names the
// track, and echoes its persistent ID. %q quoting keeps paths and titles
// with quotes or backslashes intact inside the script source.
func importScript(app, path, title string) string {
	return fmt.Sprintf(`tell application %q
	set theTrack to add (POSIX file %q)
	set name of theTrack to %q
	return persistent ID of theTrack
end tell`, app, path, title)
}

// NopImporter satisfies Importer without talking to anything. Used when
// catalog integration is disabled and in tests.
type NopImporter struct{}

func (NopImporter) ImportAudioFile(_ context.Context, path, _ string) (string, error) {
	return "", fmt.Errorf("catalog integration disabled, cannot import %s", path)
}
