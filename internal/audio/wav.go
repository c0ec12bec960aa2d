package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const wavBitDepth = 16

// SaveWAV writes buf as a 16-bit PCM WAV file, creating the parent
// directory if needed.
func SaveWAV(buf Buffer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("audio: create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", path, err)
	}

	if err := EncodeWAV(f, buf); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audio: close %s: %w", path, err)
	}
	return nil
}

// EncodeWAV writes buf to w as a 16-bit PCM WAV stream.
func EncodeWAV(w io.WriteSeeker, buf Buffer) error {
	if buf.SampleRate == 0 || buf.Channels == 0 {
		return fmt.Errorf("audio: encode wav: invalid format %dHz %dch", buf.SampleRate, buf.Channels)
	}

	enc := wav.NewEncoder(w, int(buf.SampleRate), wavBitDepth, int(buf.Channels), 1)

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = floatToPCM16(s)
	}

	ib := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(buf.Channels),
			SampleRate:  int(buf.SampleRate),
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("audio: encoder write buffer: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: encoder close: %w", err)
	}
	return nil
}

// WAVBytes encodes buf as an in-memory WAV file.
func WAVBytes(buf Buffer) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := EncodeWAV(ws, buf); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("audio: reading wav into memory: %w", err)
	}
	return data, nil
}

// decodeWAV reads a PCM WAV stream into a float32 buffer normalized by the
// source bit depth.
func decodeWAV(r io.ReadSeeker) (Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, fmt.Errorf("%w: not a valid wav file", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != 1 {
		return Buffer{}, fmt.Errorf("%w: wav audio format %d (only PCM is supported)", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: decode wav: %v", ErrUnsupportedFormat, err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = ib.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return Buffer{}, fmt.Errorf("%w: wav bit depth %d", ErrUnsupportedFormat, bitDepth)
	}
	scale := float32(int64(1) << (bitDepth - 1))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned; the decoder leaves it offset by 128.
		scale = 128
	}

	samples := make([]float32, len(ib.Data))
	for i, s := range ib.Data {
		if bitDepth == 8 {
			s -= 128
		}
		samples[i] = float32(s) / scale
	}

	return Buffer{
		Samples:    samples,
		SampleRate: dec.SampleRate,
		Channels:   uint32(dec.NumChans),
	}, nil
}

func floatToPCM16(s float32) int {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int(s * 32767)
}
