// Package config gathers the client settings from .env files, GEOGEM_*
// environment variables and command line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/geogem/internal/llm"
	"github.com/abhisek/geogem/internal/quiz"
	"github.com/abhisek/geogem/internal/remote"
)

// Defaults.
const (
	DefaultListenAddr = "127.0.0.1:8710"
	DefaultServerURL  = "http://" + DefaultListenAddr + "/"
	DefaultAPIVersion = "v2"
	DefaultUserAgent  = "geogem-cli"
)

// Config is the resolved client configuration.
type Config struct {
	// ServerURL is the GeoGem site the quiz talks to.
	ServerURL string

	// APIVersion of the server; versions below v2 use the legacy answer
	// check variant.
	APIVersion string

	// CSRFToken is an optional fixed anti-forgery token.
	CSRFToken string

	// Timeout bounds each collaborator call made by the quiz controller,
	// retries included.
	Timeout time.Duration

	UserAgent string

	// DBPath is the local SQLite file; empty means the default location.
	DBPath string

	// ListenAddr is where `geogem serve` listens.
	ListenAddr string

	LLM llm.Config
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:  DefaultServerURL,
		APIVersion: DefaultAPIVersion,
		Timeout:    quiz.DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		ListenAddr: DefaultListenAddr,
		LLM:        llm.DefaultConfig(),
	}
}

// Load reads the given .env files (default ".env") into the environment
// without overriding variables already set, then builds a Config from the
// environment. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from GEOGEM_* variables over the defaults.
func FromEnv() (Config, error) {
	cfg := Default()

	strs := []struct {
		env string
		dst *string
	}{
		{"GEOGEM_SERVER_URL", &cfg.ServerURL},
		{"GEOGEM_API_VERSION", &cfg.APIVersion},
		{"GEOGEM_CSRF_TOKEN", &cfg.CSRFToken},
		{"GEOGEM_USER_AGENT", &cfg.UserAgent},
		{"GEOGEM_DB", &cfg.DBPath},
		{"GEOGEM_LISTEN", &cfg.ListenAddr},
	}
	for _, s := range strs {
		if v := strings.TrimSpace(os.Getenv(s.env)); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("GEOGEM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("GEOGEM_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	cfg.LLM = llm.ConfigFromEnv()
	if !cfg.LLM.Enabled() && os.Getenv("GEOGEM_LLM_DISCOVER") == "true" {
		if discovered, ok := llm.DiscoverConfig(); ok {
			cfg.LLM = discovered
		}
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	var errs []error
	if _, err := remote.ParseBaseURL(c.ServerURL); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Remote returns the HTTP client settings.
func (c Config) Remote() remote.Config {
	return remote.Config{
		BaseURL:    c.ServerURL,
		APIVersion: c.APIVersion,
		CSRFToken:  c.CSRFToken,
		Timeout:    c.Timeout,
		UserAgent:  c.UserAgent,
		Retry:      remote.DefaultRetryConfig(),
	}
}
