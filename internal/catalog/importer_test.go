package catalog

import (
	"context"
	"strings"
	"testing"
)

func TestImportScript(t *testing.T) {
	script := importScript("Music", "/tmp/out.wav", "My Article")

	for _, want := range []string{
		`tell application "Music"`,
		`add (POSIX file "/tmp/out.wav")`,
		`set name of theTrack to "My Article"`,
		"return persistent ID of theTrack",
		"end tell",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestImportScriptQuotesTitle(t *testing.T) {
	script := importScript("iTunes", `/tmp/a "b".wav`, `He said "hi"`)

	if !strings.Contains(script, `"/tmp/a \"b\".wav"`) {
		t.Errorf("path not quoted: %s", script)
	}
	if !strings.Contains(script, `"He said \"hi\""`) {
		t.Errorf("title not quoted: %s", script)
	}
}

func TestNopImporterRefuses(t *testing.T) {
	_, err := NopImporter{}.ImportAudioFile(context.Background(), "/tmp/out.wav", "x")
	if err == nil {
		t.Fatal("expected an error from the nop importer")
	}
	if !strings.Contains(err.Error(), "/tmp/out.wav") {
		t.Errorf("error should name the file: %v", err)
	}
}
