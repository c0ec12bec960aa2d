package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DatasetDir string           `yaml:"dataset_dir"`
	Audio      AudioConfig      `yaml:"audio"`
	Hotkey     HotkeyConfig     `yaml:"hotkey"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Detect     DetectConfig     `yaml:"detect"`
	Translate  TranslateConfig  `yaml:"translate"`
	Upload     UploadConfig     `yaml:"upload"`
	Server     ServerConfig     `yaml:"server"`
	Inject     InjectConfig     `yaml:"inject"`
	LogLevel   string           `yaml:"log_level"`
}

// AudioConfig holds live capture settings. Recordings are stored at this
// rate; transcription always resamples to 16kHz mono.
type AudioConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   uint32 `yaml:"channels"`
}

// HotkeyConfig holds the start/stop hotkey used by the record command.
type HotkeyConfig struct {
	Keys []string `yaml:"keys"`
	Mode string   `yaml:"mode"` // "hold" or "toggle"
}

// TranscribeConfig selects the speech-to-text backend.
type TranscribeConfig struct {
	Backend     string `yaml:"backend"` // "whisper" or "openai"
	ModelPath   string `yaml:"model_path"`
	OpenAIModel string `yaml:"openai_model"`
	OpenAIKey   string `yaml:"-"`
}

// DetectConfig tunes the language detector.
type DetectConfig struct {
	// Whitelist restricts detection to these ISO 639-1 codes. Empty means all.
	Whitelist []string `yaml:"whitelist"`
}

// TranslateConfig selects the primary and fallback translation providers.
type TranslateConfig struct {
	Target         string               `yaml:"target"`
	Primary        string               `yaml:"primary"`
	Secondary      string               `yaml:"secondary"`
	Timeout        time.Duration        `yaml:"timeout"`
	OpenAI         OpenAIConfig         `yaml:"openai"`
	LibreTranslate LibreTranslateConfig `yaml:"libretranslate"`
	Ollama         OllamaConfig         `yaml:"ollama"`
}

// OpenAIConfig holds chat-completion translation settings.
type OpenAIConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"`
}

// LibreTranslateConfig holds LibreTranslate endpoint settings.
type LibreTranslateConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"-"`
}

// OllamaConfig holds local Ollama endpoint settings.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// UploadConfig selects the remote storage backend.
type UploadConfig struct {
	Backend string      `yaml:"backend"` // "none", "drive" or "minio"
	Folder  string      `yaml:"folder"`
	Drive   DriveConfig `yaml:"drive"`
	MinIO   MinIOConfig `yaml:"minio"`
}

// DriveConfig points at the OAuth client secrets and the cached token.
type DriveConfig struct {
	CredentialsPath string `yaml:"credentials_path"`
	TokenPath       string `yaml:"token_path"`
}

// MinIOConfig holds S3-compatible bucket settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// InjectConfig controls how the record command delivers its result.
type InjectConfig struct {
	Method string `yaml:"method"` // "none", "clipboard" or "type"
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "heritage-collector")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the directory whisper models are downloaded to.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".local", "share", "heritage-collector", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DatasetDir: "dataset",
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
		},
		Hotkey: HotkeyConfig{
			Keys: []string{"ctrl", "shift", "r"},
			Mode: "toggle",
		},
		Transcribe: TranscribeConfig{
			Backend:     "whisper",
			ModelPath:   "models/ggml-base.bin",
			OpenAIModel: "whisper-1",
		},
		Translate: TranslateConfig{
			Target:    "en",
			Primary:   "openai",
			Secondary: "libretranslate",
			Timeout:   60 * time.Second,
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
			LibreTranslate: LibreTranslateConfig{
				URL: "https://libretranslate.com",
			},
			Ollama: OllamaConfig{
				URL:   "http://localhost:11434",
				Model: "llama3.1",
			},
		},
		Upload: UploadConfig{
			Backend: "none",
			Drive: DriveConfig{
				CredentialsPath: "client_secrets.json",
				TokenPath:       "token.json",
			},
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
		Inject: InjectConfig{
			Method: "none",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home directory.
// Secrets are taken from the environment; see ApplyEnv.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.DatasetDir = expandTilde(cfg.DatasetDir)
	cfg.Transcribe.ModelPath = expandTilde(cfg.Transcribe.ModelPath)
	cfg.Upload.Drive.CredentialsPath = expandTilde(cfg.Upload.Drive.CredentialsPath)
	cfg.Upload.Drive.TokenPath = expandTilde(cfg.Upload.Drive.TokenPath)

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; variables already set are not overridden.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(DefaultConfigDir(), ".env")}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("[config] could not load env file", "path", p, "error", err)
		}
	}
}

// ApplyEnv copies secrets from environment variables into the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Translate.OpenAI.APIKey = v
		c.Transcribe.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Translate.OpenAI.BaseURL = v
	}
	if v := os.Getenv("LIBRETRANSLATE_API_KEY"); v != "" {
		c.Translate.LibreTranslate.APIKey = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY_ID"); v != "" {
		c.Upload.MinIO.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_ACCESS_KEY"); v != "" {
		c.Upload.MinIO.SecretKey = v
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.DatasetDir == "" {
		return fmt.Errorf("dataset_dir must not be empty")
	}

	if c.Audio.SampleRate == 0 {
		return fmt.Errorf("audio.sample_rate must be > 0")
	}

	if c.Audio.Channels == 0 {
		return fmt.Errorf("audio.channels must be > 0")
	}

	if len(c.Hotkey.Keys) == 0 {
		return fmt.Errorf("hotkey.keys must not be empty")
	}

	switch c.Hotkey.Mode {
	case "hold", "toggle":
	default:
		return fmt.Errorf("hotkey.mode must be \"hold\" or \"toggle\", got %q", c.Hotkey.Mode)
	}

	switch c.Transcribe.Backend {
	case "whisper":
		if c.Transcribe.ModelPath == "" {
			return fmt.Errorf("transcribe.model_path must not be empty for whisper backend")
		}
	case "openai":
		if c.Transcribe.OpenAIModel == "" {
			return fmt.Errorf("transcribe.openai_model must not be empty for openai backend")
		}
	default:
		return fmt.Errorf("transcribe.backend must be \"whisper\" or \"openai\", got %q", c.Transcribe.Backend)
	}

	if c.Translate.Target == "" {
		return fmt.Errorf("translate.target must not be empty")
	}
	if err := validProvider("translate.primary", c.Translate.Primary, false); err != nil {
		return err
	}
	if err := validProvider("translate.secondary", c.Translate.Secondary, true); err != nil {
		return err
	}
	if c.Translate.Primary == c.Translate.Secondary {
		return fmt.Errorf("translate.secondary must differ from translate.primary (%q)", c.Translate.Primary)
	}

	switch c.Upload.Backend {
	case "none":
	case "drive":
		if c.Upload.Folder == "" {
			return fmt.Errorf("upload.folder must be set for drive backend")
		}
		if c.Upload.Drive.CredentialsPath == "" || c.Upload.Drive.TokenPath == "" {
			return fmt.Errorf("upload.drive.credentials_path and upload.drive.token_path must be set")
		}
	case "minio":
		if c.Upload.MinIO.Endpoint == "" || c.Upload.MinIO.Bucket == "" {
			return fmt.Errorf("upload.minio.endpoint and upload.minio.bucket must be set")
		}
	default:
		return fmt.Errorf("upload.backend must be none, drive, or minio, got %q", c.Upload.Backend)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0")
	}

	switch c.Inject.Method {
	case "none", "clipboard", "type":
	default:
		return fmt.Errorf("inject.method must be none, clipboard, or type, got %q", c.Inject.Method)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// validProvider checks a translation provider name. An optional provider
// may be empty or "none".
func validProvider(field, name string, optional bool) error {
	switch name {
	case "openai", "libretranslate", "ollama":
		return nil
	case "", "none":
		if optional {
			return nil
		}
	}
	return fmt.Errorf("%s must be openai, libretranslate, or ollama, got %q", field, name)
}

// ParseLogLevel maps a config log level to a slog level. Unknown values
// default to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultHeader = "# heritage-collector configuration\n# Secrets (OPENAI_API_KEY, LIBRETRANSLATE_API_KEY, MINIO_*) are read from the environment or .env.\n\n"

// WriteDefault writes the default config to DefaultConfigPath if no file
// exists there yet. It returns the written path, or "" if a config already
// existed.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
