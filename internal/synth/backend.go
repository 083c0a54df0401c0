// Package synth drives an external text-to-speech backend and owns the
// long-input reliability path: sentence-bounded chunking, per-chunk
// timeouts, and reassembly of chunk audio into one artifact.
package synth

import "context"

// Backend is the narrow surface a speech synthesizer must provide.
// Implementations run an external command and write the audio for text to
// outPath; the coordinator manages timeouts through ctx.
type Backend interface {
	// Name returns the human-readable backend name, e.g. "say" or "piper".
	Name() string

	// Available performs a lightweight runtime check, typically a PATH
	// lookup for the backend binary.
	Available() bool

	// SynthesizeFile converts text to an audio file at outPath.
	SynthesizeFile(ctx context.Context, text, outPath string) error
}
