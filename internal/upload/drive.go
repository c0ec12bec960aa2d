package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Drive uploads files into a Google Drive folder.
type Drive struct {
	files *drive.FilesService
}

// NewDrive authorizes with the OAuth client secrets at credentialsPath and
// the token cached at tokenPath. The token is refreshed automatically and
// written back whenever it changes. A missing token is an auth error; the
// interactive consent flow is not run here.
func NewDrive(ctx context.Context, credentialsPath, tokenPath string) (*Drive, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "read client secrets", Err: err}
	}
	conf, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "parse client secrets", Err: err}
	}

	tok, err := loadToken(tokenPath)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "load token", Err: err}
	}

	ts := &savingTokenSource{
		src:  conf.TokenSource(ctx, tok),
		path: tokenPath,
		last: tok.AccessToken,
	}
	return NewDriveWithOptions(ctx, option.WithTokenSource(ts))
}

// NewDriveWithOptions creates a Drive uploader from raw client options.
func NewDriveWithOptions(ctx context.Context, opts ...option.ClientOption) (*Drive, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("upload: create drive service: %w", err)
	}
	return &Drive{files: svc.Files}, nil
}

// Upload creates a new file named after path inside the folder with ID
// folder and returns the new file ID.
func (d *Drive) Upload(ctx context.Context, path, folder string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Kind: KindTransient, Op: "open " + filepath.Base(path), Err: err}
	}
	defer f.Close()

	meta := &drive.File{Name: filepath.Base(path)}
	if folder != "" {
		meta.Parents = []string{folder}
	}

	created, err := d.files.Create(meta).Media(f).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", &Error{Kind: classifyDrive(err), Op: "create " + meta.Name, Err: err}
	}

	slog.Debug("[upload] drive file created", "name", meta.Name, "id", created.Id)
	return created.Id, nil
}

func classifyDrive(err error) Kind {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden {
			return KindAuth
		}
		return KindTransient
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return KindAuth
	}
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr.Kind
	}
	return KindTransient
}

// savingTokenSource persists refreshed tokens to disk.
type savingTokenSource struct {
	src  oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "refresh token", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := saveToken(s.path, tok); err != nil {
			slog.Warn("[upload] could not cache refreshed token", "path", s.path, "error", err)
		} else {
			slog.Debug("[upload] cached refreshed token", "path", s.path)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
