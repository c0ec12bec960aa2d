package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Format identifies an upload container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
	FormatM4A Format = "m4a"
)

// FormatFromName maps a file name's extension to a Format.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch Format(ext) {
	case FormatWAV, FormatMP3, FormatM4A:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Load decodes an uploaded audio file. The container is chosen from the
// file name; content that does not decode yields ErrUnsupportedFormat.
func Load(name string, r io.ReadSeeker) (Buffer, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return Buffer{}, err
	}

	var buf Buffer
	switch format {
	case FormatWAV:
		buf, err = decodeWAV(r)
	case FormatMP3:
		buf, err = decodeMP3(r)
	case FormatM4A:
		buf, err = decodeWithFFmpeg(context.Background(), r, string(format))
	}
	if err != nil {
		return Buffer{}, err
	}
	if len(buf.Samples) == 0 {
		return Buffer{}, fmt.Errorf("%w: %s contains no samples", ErrUnsupportedFormat, name)
	}
	return buf, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(filepath.Base(path), f)
}

// decodeMP3 decodes an MP3 stream. go-mp3 always produces 16-bit
// little-endian stereo.
func decodeMP3(r io.Reader) (Buffer, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: decode mp3: %v", ErrUnsupportedFormat, err)
	}

	raw, err := io.ReadAll(d)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: read mp3 frames: %v", ErrUnsupportedFormat, err)
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(v) / 32768
	}

	return Buffer{
		Samples:    samples,
		SampleRate: uint32(d.SampleRate()),
		Channels:   2,
	}, nil
}

// decodeWithFFmpeg converts containers without a Go decoder (M4A/AAC) to a
// temporary PCM WAV with ffmpeg and decodes that.
func decodeWithFFmpeg(ctx context.Context, r io.Reader, ext string) (Buffer, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return Buffer{}, fmt.Errorf("audio: decoding %s requires ffmpeg in PATH: %w", ext, err)
	}

	tmpDir, err := os.MkdirTemp("", "heritage-decode-*")
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "input."+ext)
	out := filepath.Join(tmpDir, "output.wav")

	f, err := os.Create(in)
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: create temp input: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return Buffer{}, fmt.Errorf("audio: write temp input: %w", err)
	}
	if err := f.Close(); err != nil {
		return Buffer{}, fmt.Errorf("audio: close temp input: %w", err)
	}

	// ffmpeg -y -i input -acodec pcm_s16le -f wav output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-loglevel", "error",
		"-i", in,
		"-acodec", "pcm_s16le",
		"-f", "wav",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return Buffer{}, fmt.Errorf("%w: ffmpeg: %v: %s", ErrUnsupportedFormat, err, strings.TrimSpace(string(output)))
	}

	wf, err := os.Open(out)
	if err != nil {
		return Buffer{}, fmt.Errorf("audio: open converted wav: %w", err)
	}
	defer wf.Close()
	return decodeWAV(wf)
}
