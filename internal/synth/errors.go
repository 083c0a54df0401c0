package synth

import "errors"

// Failure conditions surfaced by the coordinator. Callers inspect these
// with errors.Is; the wrapped message carries the chunk/strategy detail.
var (
	// ErrBackendUnavailable indicates the synthesis binary is missing or
	// unusable on this system.
	ErrBackendUnavailable = errors.New("synthesis backend is not available")

	// ErrChunkTimeout indicates a single chunk's synthesis exceeded its
	// time budget.
	ErrChunkTimeout = errors.New("chunk synthesis timed out")

	// ErrReassemblyFailed indicates every reassembly strategy failed.
	ErrReassemblyFailed = errors.New("audio reassembly failed")

	// ErrEmptyText is returned for blank input, which the caller should
	// have filtered out already.
	ErrEmptyText = errors.New("no text to synthesize")
)
