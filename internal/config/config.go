package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tracker/internal/logger"
	"tracker/internal/remote"
	"tracker/internal/store"
)

// Backends understood by TRACKER_BACKEND.
const (
	BackendGitHub = "github"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	// Document store
	Backend  string
	DataDir  string
	DataFile string

	// GitHub contents API
	GitHubToken       string
	GitHubOwner       string
	GitHubRepo        string
	GitHubBranch      string
	GitHubAPIURL      string
	CommitAuthorName  string
	CommitAuthorEmail string

	// Synchronization
	SaveDebounce time.Duration

	// HTTP server
	ServerAddr     string
	CORSOrigins    []string
	ServerReadOnly bool

	// Google Sheets export
	GoogleSheetURL string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	debounce, err := time.ParseDuration(getEnv("SAVE_DEBOUNCE", "1500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid SAVE_DEBOUNCE: %w", err)
	}

	config := &Config{
		Backend:           strings.ToLower(getEnv("TRACKER_BACKEND", BackendFile)),
		DataDir:           getEnv("DATA_DIR", "data"),
		DataFile:          getEnv("DATA_FILE", "inventory.json"),
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		GitHubOwner:       getEnv("GITHUB_OWNER", ""),
		GitHubRepo:        getEnv("GITHUB_REPO", ""),
		GitHubBranch:      getEnv("GITHUB_BRANCH", "main"),
		GitHubAPIURL:      getEnv("GITHUB_API_URL", ""),
		CommitAuthorName:  getEnv("COMMIT_AUTHOR_NAME", ""),
		CommitAuthorEmail: getEnv("COMMIT_AUTHOR_EMAIL", ""),
		SaveDebounce:      debounce,
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ServerReadOnly:    ParseBool("SERVER_READ_ONLY", false),
		GoogleSheetURL:    getEnv("GOOGLE_SHEET_URL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendGitHub:
		if c.GitHubToken == "" {
			return fmt.Errorf("GITHUB_TOKEN is required for the github backend")
		}
		if c.GitHubOwner == "" {
			return fmt.Errorf("GITHUB_OWNER is required for the github backend")
		}
		if c.GitHubRepo == "" {
			return fmt.Errorf("GITHUB_REPO is required for the github backend")
		}
	case BackendFile, BackendMemory:
	default:
		return fmt.Errorf("unknown TRACKER_BACKEND %q (github, file or memory)", c.Backend)
	}
	if !strings.HasSuffix(strings.ToLower(c.DataFile), ".json") {
		return fmt.Errorf("DATA_FILE must be a .json file, got %q", c.DataFile)
	}
	if c.SaveDebounce < 0 {
		return fmt.Errorf("SAVE_DEBOUNCE must not be negative")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetGitHubConfig returns the GitHub document store configuration.
func (c *Config) GetGitHubConfig() remote.GitHubConfig {
	return remote.GitHubConfig{
		Token:       c.GitHubToken,
		Owner:       c.GitHubOwner,
		Repo:        c.GitHubRepo,
		Branch:      c.GitHubBranch,
		Dir:         c.DataDir,
		CommitName:  c.CommitAuthorName,
		CommitEmail: c.CommitAuthorEmail,
		BaseURL:     c.GitHubAPIURL,
	}
}

// StoreOptions returns the synchronization manager options.
func (c *Config) StoreOptions() []store.Option {
	return []store.Option{store.WithDebounce(c.SaveDebounce)}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
