package synth

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Reassembler concatenates per-chunk audio segments, in order, into one
// artifact. Strategies are tried in sequence by the coordinator; each must
// report a distinguishable failure.
type Reassembler interface {
	Name() string
	Available() bool
	Concat(ctx context.Context, segments []string, outPath string) error
}

// FFmpegConcat merges segments with the ffmpeg concat demuxer. This is the
// primary strategy: it tolerates minor container differences between
// segments and works for any format ffmpeg understands.
type FFmpegConcat struct{}

func (FFmpegConcat) Name() string { return "ffmpeg" }

func (FFmpegConcat) Available() bool { return binaryOnPath("ffmpeg") }

func (FFmpegConcat) Concat(ctx context.Context, segments []string, outPath string) error {
	listPath := filepath.Join(os.TempDir(), fmt.Sprintf("readout-concat-%s.txt", uuid.NewString()[:8]))

	var list strings.Builder
	for _, seg := range segments {
		abs, err := filepath.Abs(seg)
		if err != nil {
			abs = seg
		}
		// Single quotes inside a path terminate the quoted string in the
		// concat demuxer syntax; escape them the ffmpeg way.
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&list, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("ffmpeg concat: writing list file: %w", err)
	}
	defer os.Remove(listPath)

	return runCommand(ctx, "ffmpeg",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
}

// WAVConcat merges WAV segments at the container level: the data payloads
// are appended and a fresh RIFF header is written. Fallback for systems
// without ffmpeg; only valid when all segments share one sample format,
// which holds because every segment comes from the same backend run.
type WAVConcat struct{}

func (WAVConcat) Name() string { return "wav-binary" }

func (WAVConcat) Available() bool { return true }

func (WAVConcat) Concat(_ context.Context, segments []string, outPath string) error {
	if len(segments) == 0 {
		return fmt.Errorf("wav concat: no segments")
	}

	var format []byte
	var data []byte
	for i, seg := range segments {
		f, d, err := readWAV(seg)
		if err != nil {
			return fmt.Errorf("wav concat: segment %d: %w", i, err)
		}
		if i == 0 {
			format = f
		} else if !bytes.Equal(format, f) {
			return fmt.Errorf("wav concat: segment %d has a different sample format", i)
		}
		data = append(data, d...)
	}

	return writeWAV(outPath, format, data)
}
