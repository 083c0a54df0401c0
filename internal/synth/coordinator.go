package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/readout/internal/chunk"
)

// DefaultChunkTimeout bounds one chunk's synthesis call.
const DefaultChunkTimeout = 30 * time.Second

// DefaultMaxWordsPerChunk keeps chunk synthesis calls a stable size.
const DefaultMaxWordsPerChunk = 1000

// Method records how an artifact was produced.
type Method string

const (
	MethodSingle  Method = "single"
	MethodChunked Method = "chunked"
)

// Options control one synthesis call.
type Options struct {
	// ChunkingEnabled turns on the long-input path. Even when enabled,
	// chunked mode is only used if the planner yields more than one chunk.
	ChunkingEnabled bool

	// MaxWordsPerChunk is the per-chunk word budget.
	MaxWordsPerChunk int

	// ChunkTimeout bounds each chunk's synthesis call.
	ChunkTimeout time.Duration
}

// Result describes a finished synthesis.
type Result struct {
	AudioPath  string
	Method     Method
	ChunkCount int
}

// Coordinator synthesizes text through a Backend, splitting long input
// into chunks and reassembling the per-chunk audio into one artifact.
type Coordinator struct {
	backend Backend
	planner *chunk.Planner
	workDir string

	// Reassemblers are tried in order; the first success wins. Exposed so
	// tests can substitute strategies.
	Reassemblers []Reassembler
}

// NewCoordinator creates a coordinator writing intermediate segments under
// workDir (the system temp dir when empty).
func NewCoordinator(backend Backend, workDir string) *Coordinator {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Coordinator{
		backend:      backend,
		planner:      chunk.NewPlanner(),
		workDir:      workDir,
		Reassemblers: []Reassembler{FFmpegConcat{}, WAVConcat{}},
	}
}

// Synthesize converts text into an audio file at outPath.
//
// A chunk that fails or times out fails the whole call: an artifact with a
// silently missing chunk is worse than no artifact. Intermediate segment
// files are removed whether or not reassembly succeeds.
func (c *Coordinator) Synthesize(ctx context.Context, text, outPath string, opts Options) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if !c.backend.Available() {
		return nil, fmt.Errorf("%s: %w", c.backend.Name(), ErrBackendUnavailable)
	}

	timeout := opts.ChunkTimeout
	if timeout <= 0 {
		timeout = DefaultChunkTimeout
	}
	maxWords := opts.MaxWordsPerChunk
	if maxWords <= 0 {
		maxWords = DefaultMaxWordsPerChunk
	}

	var chunks []chunk.Chunk
	if opts.ChunkingEnabled {
		chunks = c.planner.Plan(text, maxWords)
	}

	if len(chunks) <= 1 {
		if err := c.backend.SynthesizeFile(ctx, text, outPath); err != nil {
			return nil, err
		}
		return &Result{AudioPath: outPath, Method: MethodSingle, ChunkCount: 1}, nil
	}

	log.Debug("long input, synthesizing in chunks",
		"backend", c.backend.Name(),
		"chunks", len(chunks),
		"timeout", timeout)

	if err := c.synthesizeChunked(ctx, chunks, outPath, timeout); err != nil {
		return nil, err
	}
	return &Result{AudioPath: outPath, Method: MethodChunked, ChunkCount: len(chunks)}, nil
}

func (c *Coordinator) synthesizeChunked(ctx context.Context, chunks []chunk.Chunk, outPath string, timeout time.Duration) error {
	base := uuid.NewString()[:8]
	ext := filepath.Ext(outPath)
	if ext == "" {
		ext = ".wav"
	}

	// Segments never outlive the call, success or not.
	var segments []string
	defer func() {
		for _, seg := range segments {
			if err := os.Remove(seg); err != nil && !os.IsNotExist(err) {
				log.Warn("leaking segment file", "path", seg, "error", err)
			}
		}
	}()

	for _, ch := range chunks {
		seg := filepath.Join(c.workDir, fmt.Sprintf("readout-%s-%03d%s", base, ch.Ordinal, ext))
		segments = append(segments, seg)

		cctx, cancel := context.WithTimeout(ctx, timeout)
		err := c.backend.SynthesizeFile(cctx, ch.Text, seg)
		timedOut := errors.Is(cctx.Err(), context.DeadlineExceeded)
		cancel()

		if err != nil {
			if timedOut {
				return fmt.Errorf("chunk %d of %d after %s: %w",
					ch.Ordinal+1, len(chunks), timeout, ErrChunkTimeout)
			}
			return fmt.Errorf("chunk %d of %d: %w", ch.Ordinal+1, len(chunks), err)
		}
	}

	return c.reassemble(ctx, segments, outPath)
}

// reassemble tries each strategy in order. Every strategy's failure is
// kept so the terminal error names what was tried and why it failed.
func (c *Coordinator) reassemble(ctx context.Context, segments []string, outPath string) error {
	var failures []string
	for _, r := range c.Reassemblers {
		if !r.Available() {
			failures = append(failures, fmt.Sprintf("%s: unavailable", r.Name()))
			continue
		}
		err := r.Concat(ctx, segments, outPath)
		if err == nil {
			log.Debug("segments reassembled", "strategy", r.Name(), "segments", len(segments))
			return nil
		}
		log.Debug("reassembly strategy failed", "strategy", r.Name(), "error", err)
		failures = append(failures, fmt.Sprintf("%s: %v", r.Name(), err))
	}
	return fmt.Errorf("%w: %s", ErrReassemblyFailed, strings.Join(failures, "; "))
}
