// Package models downloads whisper.cpp ggml models for the local
// transcription backend.
package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// BaseURL hosts the ggml model files.
var BaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Model is one downloadable whisper model. Stories are spoken in several
// languages, so only multilingual models are listed.
type Model struct {
	Name   string
	File   string
	SizeMB int
}

// Catalog lists the supported models, smallest first.
var Catalog = []Model{
	{Name: "tiny", File: "ggml-tiny.bin", SizeMB: 75},
	{Name: "base", File: "ggml-base.bin", SizeMB: 142},
	{Name: "small", File: "ggml-small.bin", SizeMB: 466},
}

// DefaultModel is used when no model is named.
const DefaultModel = "base"

// Lookup finds a model by name.
func Lookup(name string) (Model, error) {
	if name == "" {
		name = DefaultModel
	}
	for _, m := range Catalog {
		if m.Name == name {
			return m, nil
		}
	}
	names := make([]string, len(Catalog))
	for i, m := range Catalog {
		names[i] = m.Name
	}
	return Model{}, fmt.Errorf("models: unknown model %q (available: %s)", name, strings.Join(names, ", "))
}

// Download fetches m into dir, printing progress to out. An existing
// non-empty file is kept. The file is written under a temporary name and
// renamed into place when complete.
func Download(ctx context.Context, m Model, dir string, out io.Writer) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating models dir: %w", err)
	}

	destPath := filepath.Join(dir, m.File)
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		fmt.Fprintf(out, "  Model already exists: %s (%.0f MB)\n", destPath, float64(info.Size())/(1024*1024))
		return destPath, nil
	}

	url := strings.TrimRight(BaseURL, "/") + "/" + m.File
	fmt.Fprintf(out, "  Downloading whisper %s model (~%d MB)...\n", m.Name, m.SizeMB)
	fmt.Fprintf(out, "  URL: %s\n", url)
	fmt.Fprintf(out, "  Destination: %s\n", destPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	pw := &progressWriter{
		writer: f,
		out:    out,
		total:  resp.ContentLength,
		label:  m.File,
	}

	written, err := io.Copy(pw, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing model file: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download truncated: got %d of %d bytes", written, resp.ContentLength)
	}

	fmt.Fprintf(out, "\n  Downloaded %.1f MB\n", float64(written)/(1024*1024))

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving model file: %w", err)
	}
	return destPath, nil
}

// progressWriter wraps an io.Writer and prints download progress.
type progressWriter struct {
	writer  io.Writer
	out     io.Writer
	total   int64
	written int64
	label   string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB / %.1f MB (%.0f%%)",
			pw.label,
			float64(pw.written)/(1024*1024),
			float64(pw.total)/(1024*1024),
			pct)
	} else {
		fmt.Fprintf(pw.out, "\r  %s: %.1f MB downloaded",
			pw.label,
			float64(pw.written)/(1024*1024))
	}
	return n, err
}
