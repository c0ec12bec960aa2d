// Package upload copies persisted submission files to remote storage.
package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/chaz8081/heritage-collector/internal/config"
)

// Uploader sends one local file to remote storage and returns the remote
// identifier. Uploads are not idempotent: calling Upload twice for the same
// file creates two remote copies.
type Uploader interface {
	Upload(ctx context.Context, path, folder string) (string, error)
}

// Result pairs a local file with its remote copy.
type Result struct {
	LocalPath string
	RemoteID  string
}

// Kind classifies upload failures.
type Kind int

const (
	// KindTransient failures may succeed on a later attempt.
	KindTransient Kind = iota
	// KindAuth failures need new credentials or consent before retrying.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	default:
		return "transient"
	}
}

// Error is returned by every Uploader.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuth reports whether err is an authentication or authorization failure.
func IsAuth(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == KindAuth
}

// IsTransient reports whether err is an upload failure worth retrying.
func IsTransient(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == KindTransient
}

// New builds the configured uploader. The "none" backend returns a nil
// Uploader, which disables the remote stage.
func New(ctx context.Context, cfg *config.UploadConfig) (Uploader, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "drive":
		d, err := NewDrive(ctx, cfg.Drive.CredentialsPath, cfg.Drive.TokenPath)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "minio":
		m, err := NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("upload: unknown backend %q", cfg.Backend)
	}
}
