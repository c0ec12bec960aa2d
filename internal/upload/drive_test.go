package upload

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

const testClientSecrets = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func newTestDrive(t *testing.T, h http.HandlerFunc) *Drive {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	d, err := NewDriveWithOptions(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewDriveWithOptions() error = %v", err)
	}
	return d
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDriveUpload(t *testing.T) {
	var method string
	d := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"file-123"}`))
	})

	path := writeFile(t, "story_20250101_120000.txt", "Name: Lakshmi\n")
	id, err := d.Upload(context.Background(), path, "folder-abc")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "file-123" {
		t.Errorf("Upload() = %q, want %q", id, "file-123")
	}
	if method != http.MethodPost {
		t.Errorf("method = %s, want POST", method)
	}
}

func TestDriveUploadAuthFailure(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		d := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"denied"}}`, code)
		})

		path := writeFile(t, "voice.mp3", "ID3")
		_, err := d.Upload(context.Background(), path, "")
		if !IsAuth(err) {
			t.Errorf("HTTP %d: Upload() error = %v, want auth error", code, err)
		}
	}
}

func TestDriveUploadNotFoundIsTransient(t *testing.T) {
	d := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	path := writeFile(t, "voice.mp3", "ID3")
	_, err := d.Upload(context.Background(), path, "missing-folder")
	if !IsTransient(err) {
		t.Errorf("Upload() error = %v, want transient error", err)
	}
}

func TestDriveUploadMissingFile(t *testing.T) {
	d := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := d.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), ""); err == nil {
		t.Error("Upload() of missing file should fail")
	}
}

func TestNewDriveMissingToken(t *testing.T) {
	creds := writeFile(t, "client_secrets.json", testClientSecrets)
	_, err := NewDrive(context.Background(), creds, filepath.Join(t.TempDir(), "token.json"))
	if !IsAuth(err) {
		t.Errorf("NewDrive() error = %v, want auth error", err)
	}
}

func TestNewDriveMissingSecrets(t *testing.T) {
	_, err := NewDrive(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "token.json")
	if !IsAuth(err) {
		t.Errorf("NewDrive() error = %v, want auth error", err)
	}
}

func TestNewDriveWithCachedToken(t *testing.T) {
	creds := writeFile(t, "client_secrets.json", testClientSecrets)
	tokPath := filepath.Join(t.TempDir(), "token.json")
	if err := saveToken(tokPath, &oauth2.Token{AccessToken: "a", Expiry: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDrive(context.Background(), creds, tokPath); err != nil {
		t.Errorf("NewDrive() error = %v", err)
	}
}

type sequenceTokenSource struct {
	tokens []*oauth2.Token
	err    error
}

func (s *sequenceTokenSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	tok := s.tokens[0]
	if len(s.tokens) > 1 {
		s.tokens = s.tokens[1:]
	}
	return tok, nil
}

func TestSavingTokenSourcePersistsRefresh(t *testing.T) {
	tokPath := filepath.Join(t.TempDir(), "token.json")
	ts := &savingTokenSource{
		src: &sequenceTokenSource{tokens: []*oauth2.Token{
			{AccessToken: "old"},
			{AccessToken: "new", RefreshToken: "r"},
		}},
		path: tokPath,
		last: "old",
	}

	if _, err := ts.Token(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(tokPath); !os.IsNotExist(err) {
		t.Fatalf("unchanged token should not be written, stat err = %v", err)
	}

	if _, err := ts.Token(); err != nil {
		t.Fatal(err)
	}
	got, err := loadToken(tokPath)
	if err != nil {
		t.Fatalf("loadToken() error = %v", err)
	}
	if got.AccessToken != "new" || got.RefreshToken != "r" {
		t.Errorf("cached token = %+v, want refreshed token", got)
	}
}

func TestSavingTokenSourceRefreshFailureIsAuth(t *testing.T) {
	ts := &savingTokenSource{
		src:  &sequenceTokenSource{err: &oauth2.RetrieveError{ErrorCode: "invalid_grant"}},
		path: filepath.Join(t.TempDir(), "token.json"),
	}
	if _, err := ts.Token(); !IsAuth(err) {
		t.Errorf("Token() error = %v, want auth error", err)
	}
}
