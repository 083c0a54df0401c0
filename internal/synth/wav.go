package synth

import (
	"encoding/binary"
	"fmt"
	"os"
)

// readWAV parses a RIFF/WAVE file and returns its fmt chunk body and data
// payload. Unknown chunks are skipped.
func readWAV(path string) (format, data []byte, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, nil, fmt.Errorf("%s: not a RIFF/WAVE file", path)
	}

	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if body+size > len(b) {
			return nil, nil, fmt.Errorf("%s: truncated %q chunk", path, id)
		}

		switch id {
		case "fmt ":
			format = b[body : body+size]
		case "data":
			data = b[body : body+size]
		}

		off = body + size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if format == nil {
		return nil, nil, fmt.Errorf("%s: missing fmt chunk", path)
	}
	if data == nil {
		return nil, nil, fmt.Errorf("%s: missing data chunk", path)
	}
	return format, data, nil
}

// writeWAV writes a canonical RIFF/WAVE file with the given fmt chunk body
// and sample data.
func writeWAV(path string, format, data []byte) error {
	riffSize := 4 + (8 + len(format)) + (8 + len(data))

	out := make([]byte, 0, 12+riffSize)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(riffSize))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(format)))
	out = append(out, format...)

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, data...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
