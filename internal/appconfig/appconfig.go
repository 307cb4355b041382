// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultServerURL is where the dashboard and upload commands send files.
	defaultServerURL = "http://localhost:8080"
	// defaultListenAddr is the address the analysis server binds to.
	defaultListenAddr = ":8080"
	// defaultRequestTimeout bounds a single upload round trip.
	defaultRequestTimeout = 120 * time.Second
	// defaultMaxUploadMB caps the multipart body accepted by the server.
	defaultMaxUploadMB = 25
	defaultChartWidth  = 900
	defaultChartHeight = 420
	defaultExportDir   = "edudashData/exports"
)

// Config represents the top-level application configuration.
type Config struct {
	Debug          bool   `json:"debug" mapstructure:"debug"`
	LogFile        string `json:"logFile,omitempty" mapstructure:"logFile"`
	ServerURL      string `json:"serverURL,omitempty" mapstructure:"serverURL"`
	ListenAddr     string `json:"listenAddr,omitempty" mapstructure:"listenAddr"`
	TimeoutSeconds int    `json:"timeout,omitempty" mapstructure:"timeout"`
	MaxUploadMB    int    `json:"maxUploadMB,omitempty" mapstructure:"maxUploadMB"`
	LayoutFile     string `json:"layoutFile,omitempty" mapstructure:"layoutFile"`
	ChartWidth     int    `json:"chartWidth,omitempty" mapstructure:"chartWidth"`
	ChartHeight    int    `json:"chartHeight,omitempty" mapstructure:"chartHeight"`
	ExportDir      string `json:"exportDir,omitempty" mapstructure:"exportDir"`
	ConfigPath     string `json:"-" mapstructure:"-"`
}

// RequestTimeout returns the timeout duration for uploads, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the server-side multipart limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = defaultMaxUploadMB
	}
	return int64(mb) << 20
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "edudash.log"
}

// ServerBaseURL returns the analysis server URL without a trailing slash.
func (c Config) ServerBaseURL() string {
	if u := strings.TrimSpace(c.ServerURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultServerURL
}

// ListenAddress returns the address the server binds to.
func (c Config) ListenAddress() string {
	if a := strings.TrimSpace(c.ListenAddr); a != "" {
		return a
	}
	return defaultListenAddr
}

// ChartSize returns the pixel size used by the HTML and PNG exports.
func (c Config) ChartSize() (int, int) {
	w, h := c.ChartWidth, c.ChartHeight
	if w <= 0 {
		w = defaultChartWidth
	}
	if h <= 0 {
		h = defaultChartHeight
	}
	return w, h
}

// ExportDirectory returns where export files are written.
func (c Config) ExportDirectory() string {
	if d := strings.TrimSpace(c.ExportDir); d != "" {
		return d
	}
	return defaultExportDir
}

// Validate rejects settings that cannot work at all.
func (c Config) Validate() error {
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.MaxUploadMB < 0 {
		return errors.New("maxUploadMB must not be negative")
	}
	u, err := url.Parse(c.ServerBaseURL())
	if err != nil {
		return fmt.Errorf("invalid serverURL %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid serverURL %q: scheme must be http or https", c.ServerURL)
	}
	return nil
}

// Load reads the configuration at path for tools that run without the cobra
// root command. A missing file at the default path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return Config{}, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
