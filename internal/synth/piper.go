package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PiperBackend synthesizes speech with the piper neural TTS binary.
// Like SayBackend it uses a fresh process per call with pre-wired stdin.
type PiperBackend struct {
	// Binary is the piper executable name or path; defaults to "piper".
	Binary string

	// ModelPath points at the .onnx voice model (required).
	ModelPath string

	// ConfigPath points at the model's JSON config; defaults to
	// ModelPath with a .json extension.
	ConfigPath string
}

// NewPiperBackend validates the model path and fills in defaults.
func NewPiperBackend(binary, modelPath string) (*PiperBackend, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("piper: model path is required")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("piper: model file not found: %w", err)
	}
	if binary == "" {
		binary = "piper"
	}
	return &PiperBackend{
		Binary:     binary,
		ModelPath:  modelPath,
		ConfigPath: strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".json",
	}, nil
}

func (b *PiperBackend) Name() string { return "piper" }

func (b *PiperBackend) Available() bool {
	if !binaryOnPath(b.binary()) {
		return false
	}
	_, err := os.Stat(b.ModelPath)
	return err == nil
}

// SynthesizeFile writes WAV output for text via the piper subprocess.
func (b *PiperBackend) SynthesizeFile(ctx context.Context, text, outPath string) error {
	args := []string{
		"--model", b.ModelPath,
		"--output_file", outPath,
	}
	if b.ConfigPath != "" {
		args = append(args, "--config", b.ConfigPath)
	}
	return runWithStdin(ctx, text, b.binary(), args...)
}

func (b *PiperBackend) binary() string {
	if b.Binary == "" {
		return "piper"
	}
	return b.Binary
}
