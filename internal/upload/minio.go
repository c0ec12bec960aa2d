package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/chaz8081/heritage-collector/internal/config"
)

// MinIO uploads files into an S3-compatible bucket.
type MinIO struct {
	client *minio.Client
	bucket string

	mu    sync.Mutex
	ready bool
}

// NewMinIO creates a MinIO uploader. The bucket is checked, and created if
// missing, on the first upload.
func NewMinIO(cfg config.MinIOConfig) (*MinIO, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, &Error{Kind: KindAuth, Op: "configure minio", Err: errors.New("MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY must be set")}
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: create minio client: %w", err)
	}
	return newMinIO(client, cfg.Bucket), nil
}

func newMinIO(client *minio.Client, bucket string) *MinIO {
	return &MinIO{client: client, bucket: bucket}
}

// Upload stores path as <folder>/<uuid><ext> and returns the object name.
func (m *MinIO) Upload(ctx context.Context, localPath, folder string) (string, error) {
	if err := m.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := ObjectName(folder, localPath)
	info, err := m.client.FPutObject(ctx, m.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return "", &Error{Kind: classifyMinIO(err), Op: "put " + objectName, Err: err}
	}

	slog.Debug("[upload] minio object stored", "bucket", m.bucket, "object", objectName, "size", info.Size, "etag", info.ETag)
	return objectName, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return &Error{Kind: classifyMinIO(err), Op: "check bucket " + m.bucket, Err: err}
	}
	if !exists {
		slog.Info("[upload] creating minio bucket", "bucket", m.bucket)
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return &Error{Kind: classifyMinIO(err), Op: "create bucket " + m.bucket, Err: err}
		}
	}
	m.ready = true
	return nil
}

// ObjectName builds a unique object key under folder, keeping the
// extension of localPath.
func ObjectName(folder, localPath string) string {
	name := uuid.New().String() + filepath.Ext(localPath)
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

func contentType(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func classifyMinIO(err error) Kind {
	var nerr net.Error
	if errors.As(err, &nerr) {
		return KindTransient
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "InvalidToken":
		return KindAuth
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return KindAuth
	}
	return KindTransient
}
