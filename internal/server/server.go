// Package server exposes the story pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chaz8081/heritage-collector/internal/story"
	"github.com/chaz8081/heritage-collector/internal/upload"
)

// Languages is the fixed set a submitter can choose from.
var Languages = []string{"English", "Telugu", "Hindi", "Tamil", "Other"}

// Submitter runs one submission.
type Submitter interface {
	Submit(ctx context.Context, sub story.Submission) (*story.Outcome, error)
}

// Server serves the submission API.
type Server struct {
	submitter Submitter
	maxUpload int64
	engine    *gin.Engine
}

// New creates a Server. maxUploadMB bounds the whole request body.
func New(s Submitter, maxUploadMB int64) *Server {
	gin.SetMode(gin.ReleaseMode)

	srv := &Server{
		submitter: s,
		maxUpload: maxUploadMB << 20,
		engine:    gin.New(),
	}
	srv.engine.Use(gin.Recovery(), requestLogger())

	srv.engine.GET("/healthz", srv.health)
	api := srv.engine.Group("/api")
	{
		api.GET("/languages", srv.languages)
		api.POST("/stories", srv.createStory)
	}
	return srv
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[server] listening", "addr", addr)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("[server] request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": Languages})
}

// ValidLanguage reports whether lang is one of Languages.
func ValidLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

type eventJSON struct {
	Stage    story.Stage `json:"stage"`
	Error    string      `json:"error,omitempty"`
	Terminal bool        `json:"terminal,omitempty"`
}

type remoteJSON struct {
	File     string `json:"file"`
	RemoteID string `json:"remote_id"`
}

type storyResponse struct {
	ID                string       `json:"id"`
	Stage             story.Stage  `json:"stage"`
	Record            string       `json:"record,omitempty"`
	Audio             string       `json:"audio,omitempty"`
	Transcript        string       `json:"transcript,omitempty"`
	DetectedLanguage  string       `json:"detected_language,omitempty"`
	Translation       string       `json:"translation,omitempty"`
	TranslationStatus string       `json:"translation_status,omitempty"`
	TranslatedBy      string       `json:"translated_by,omitempty"`
	Remote            []remoteJSON `json:"remote,omitempty"`
	Events            []eventJSON  `json:"events"`
	Error             string       `json:"error,omitempty"`
	AuthRequired      bool         `json:"auth_required,omitempty"`
}

func (s *Server) createStory(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	if err := c.Request.ParseMultipartForm(s.maxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("request exceeds %d MB", s.maxUpload>>20)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse multipart form: %v", err)})
		return
	}

	sub := story.Submission{
		Name:     c.PostForm("name"),
		Language: c.PostForm("language"),
		FreeText: c.PostForm("story"),
	}
	if !ValidLanguage(sub.Language) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("language must be one of %s", strings.Join(Languages, ", "))})
		return
	}

	fh, err := c.FormFile("voice")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to open uploaded file: %v", err)})
			return
		}
		defer f.Close()
		sub.Upload = &story.Upload{Name: fh.Filename, Data: f}
	case errors.Is(err, http.ErrMissingFile):
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to read voice file: %v", err)})
		return
	}

	if sub.Upload == nil && strings.TrimSpace(sub.FreeText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a story text or a voice file is required"})
		return
	}

	out, err := s.submitter.Submit(c.Request.Context(), sub)
	resp := toResponse(out)
	if err != nil {
		resp.Error = err.Error()
		resp.AuthRequired = upload.IsAuth(err)
	}
	c.JSON(statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.Is(err, story.ErrCapture),
		errors.Is(err, story.ErrFormat),
		errors.Is(err, story.ErrTranscription):
		return http.StatusUnprocessableEntity
	case errors.Is(err, story.ErrUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(out *story.Outcome) storyResponse {
	resp := storyResponse{Events: []eventJSON{}}
	if out == nil {
		resp.Stage = story.Failed
		return resp
	}

	resp.ID = out.ID
	resp.Stage = out.Stage
	if !out.Record.CreatedAt.IsZero() {
		resp.Record = filepath.Base(out.Paths.Record)
	}
	if out.AudioSaved {
		resp.Audio = filepath.Base(out.Paths.Audio)
	}
	resp.Transcript = out.Record.Transcript
	resp.DetectedLanguage = out.Record.DetectedLanguage
	resp.Translation = out.Record.Translation
	resp.TranslationStatus = string(out.TranslationStatus)
	resp.TranslatedBy = out.TranslatedBy

	for _, r := range out.Remote {
		resp.Remote = append(resp.Remote, remoteJSON{File: filepath.Base(r.LocalPath), RemoteID: r.RemoteID})
	}
	for _, e := range out.Events {
		ej := eventJSON{Stage: e.Stage, Terminal: e.Terminal}
		if e.Err != nil {
			ej.Error = e.Err.Error()
		}
		resp.Events = append(resp.Events, ej)
	}
	return resp
}
