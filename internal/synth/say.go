package synth

import (
	"context"
	"strconv"
)

// SayBackend synthesizes speech with the macOS `say` command. A fresh
// process is spawned per call; the text travels over stdin so arbitrarily
// long input avoids argv length limits.
type SayBackend struct {
	// Voice selects the system voice; empty uses the system default.
	Voice string

	// Rate is the speaking rate in words per minute; 0 uses the default.
	Rate int
}

func (b *SayBackend) Name() string { return "say" }

func (b *SayBackend) Available() bool { return binaryOnPath("say") }

// SynthesizeFile writes 16-bit 22050Hz mono WAV output. The explicit data
// format keeps segments binary-compatible for WAV-level reassembly.
func (b *SayBackend) SynthesizeFile(ctx context.Context, text, outPath string) error {
	args := []string{
		"-o", outPath,
		"--data-format=LEI16@22050",
		"--file-format=WAVE",
	}
	if b.Voice != "" {
		args = append(args, "-v", b.Voice)
	}
	if b.Rate > 0 {
		args = append(args, "-r", strconv.Itoa(b.Rate))
	}
	// Read text from stdin.
	args = append(args, "-f", "-")

	return runWithStdin(ctx, text, "say", args...)
}
