// Package dataset persists story submissions on local disk: the audio file
// for each submission and a flat, line-oriented text record.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chaz8081/heritage-collector/internal/audio"
)

// TimestampLayout names every file of a submission.
const TimestampLayout = "20060102_150405"

// Store writes submissions under Dir.
type Store struct {
	Dir string
	Now func() time.Time
}

// New returns a Store rooted at dir using the wall clock.
func New(dir string) *Store {
	return &Store{Dir: dir, Now: time.Now}
}

// Paths are the local file names allocated to one submission.
type Paths struct {
	Stamp  string // timestamp, with a collision suffix if one was needed
	Record string // story_<stamp>.txt
	Audio  string // voice_<stamp>.<ext> for uploads, recorded_<stamp>.wav for captures
}

// Reserve allocates file names for a new submission. uploadName is the
// original name of an uploaded audio file; it only contributes its
// extension. An empty uploadName allocates a recorded WAV name.
func (s *Store) Reserve(uploadName string) (Paths, error) {
	if err := s.ensureDir(); err != nil {
		return Paths{}, err
	}

	base := s.now().Format(TimestampLayout)
	for n := 1; ; n++ {
		stamp := base
		if n > 1 {
			stamp = fmt.Sprintf("%s_%d", base, n)
		}

		p := s.paths(stamp, uploadName)
		if exists(p.Record) || exists(p.Audio) {
			continue
		}
		return p, nil
	}
}

func (s *Store) paths(stamp, uploadName string) Paths {
	p := Paths{
		Stamp:  stamp,
		Record: filepath.Join(s.Dir, "story_"+stamp+".txt"),
	}
	if uploadName != "" {
		ext := strings.ToLower(filepath.Ext(uploadName))
		p.Audio = filepath.Join(s.Dir, "voice_"+stamp+ext)
	} else {
		p.Audio = filepath.Join(s.Dir, "recorded_"+stamp+".wav")
	}
	return p
}

// SaveAudio writes buf as an uncompressed WAV file.
func (s *Store) SaveAudio(buf audio.Buffer, path string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := audio.SaveWAV(buf, path); err != nil {
		return fmt.Errorf("dataset: save audio: %w", err)
	}
	return nil
}

// CopyUpload stores uploaded bytes verbatim.
func (s *Store) CopyUpload(r io.Reader, path string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("dataset: copy upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: close %s: %w", path, err)
	}
	return nil
}

// WriteRecord writes rec to path atomically.
func (s *Store) WriteRecord(rec Record, path string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".story-*.tmp")
	if err != nil {
		return fmt.Errorf("dataset: create temp record: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(rec.Encode()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("dataset: write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("dataset: close record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("dataset: move record into place: %w", err)
	}
	return nil
}

// ReadRecord parses a record written by WriteRecord.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("dataset: read record: %w", err)
	}
	return ParseRecord(string(data))
}

func (s *Store) ensureDir() error {
	if s.Dir == "" {
		return errors.New("dataset: directory not configured")
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("dataset: create dir: %w", err)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
