package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLibreTranslate(t *testing.T) {
	var got libreRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s, want POST /translate", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText":"My village"}`))
	}))
	defer srv.Close()

	p := NewLibreTranslate(srv.URL+"/", "secret", 5*time.Second)
	out, err := p.Translate(context.Background(), "మా ఊరు", "", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "My village" {
		t.Errorf("Translate() = %q, want %q", out, "My village")
	}
	if got.Source != "auto" || got.Target != "en" || got.Format != "text" || got.APIKey != "secret" {
		t.Errorf("request = %+v", got)
	}
}

func TestLibreTranslateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid API key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewLibreTranslate(srv.URL, "", 5*time.Second)
	_, err := p.Translate(context.Background(), "text", "te", "en")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Translate() error = %v, want http 403", err)
	}
}

func TestOllama(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"response":"\"The river by the temple.\"","done":true}`))
	}))
	defer srv.Close()

	p := NewOllama(srv.URL, "llama3.1", 5*time.Second)
	out, err := p.Translate(context.Background(), "गुड़ी के पास नदी", "hi", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "The river by the temple." {
		t.Errorf("Translate() = %q", out)
	}
	if body["model"] != "llama3.1" || body["stream"] != false {
		t.Errorf("request body = %v", body)
	}
}

func TestOllamaMissingModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllama(srv.URL, "missing", 5*time.Second)
	if _, err := p.Translate(context.Background(), "text", "te", "en"); err == nil {
		t.Error("Translate() should fail on 404")
	}
}

func TestOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("", "", ""); err == nil {
		t.Error("NewOpenAI() without key should fail")
	}
}

func TestOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hello grandmother"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenAI("test-key", srv.URL+"/v1", "gpt-4o-mini")
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Translate(context.Background(), "నమస్కారం అమ్మమ్మ", "te", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "Hello grandmother" {
		t.Errorf("Translate() = %q, want %q", out, "Hello grandmother")
	}
}
