package appconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaults verifies that a zero Config resolves every derived setting to
// its documented default.
func TestDefaults(t *testing.T) {
	var cfg Config

	if cfg.RequestTimeout() != 120*time.Second {
		t.Fatalf("expected default request timeout of 120s, got %v", cfg.RequestTimeout())
	}
	if cfg.MaxUploadBytes() != 25<<20 {
		t.Fatalf("expected 25MB upload cap, got %d", cfg.MaxUploadBytes())
	}
	if cfg.LogFilePath() != "edudash.log" {
		t.Fatalf("expected default log file, got %s", cfg.LogFilePath())
	}
	if cfg.ServerBaseURL() != "http://localhost:8080" {
		t.Fatalf("expected default server url, got %s", cfg.ServerBaseURL())
	}
	if cfg.ListenAddress() != ":8080" {
		t.Fatalf("expected default listen address, got %s", cfg.ListenAddress())
	}
	if w, h := cfg.ChartSize(); w != 900 || h != 420 {
		t.Fatalf("expected 900x420 chart size, got %dx%d", w, h)
	}
	if cfg.ExportDirectory() != "edudashData/exports" {
		t.Fatalf("expected default export dir, got %s", cfg.ExportDirectory())
	}
}

func TestOverrides(t *testing.T) {
	cfg := Config{
		ServerURL:      "https://analysis.example.org/",
		TimeoutSeconds: 5,
		MaxUploadMB:    2,
		ChartWidth:     300,
	}
	if cfg.ServerBaseURL() != "https://analysis.example.org" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.ServerBaseURL())
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.MaxUploadBytes() != 2<<20 {
		t.Fatalf("expected 2MB cap, got %d", cfg.MaxUploadBytes())
	}
	if w, h := cfg.ChartSize(); w != 300 || h != 420 {
		t.Fatalf("expected 300x420, got %dx%d", w, h)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{}},
		{name: "negative timeout", cfg: Config{TimeoutSeconds: -1}, wantErr: true},
		{name: "negative upload cap", cfg: Config{MaxUploadMB: -3}, wantErr: true},
		{name: "bad scheme", cfg: Config{ServerURL: "ftp://host"}, wantErr: true},
		{name: "https", cfg: Config{ServerURL: "https://host:9443"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	ShowConfig(&buf, "", &Config{Debug: true, LayoutFile: "layout.yaml"})
	out := buf.String()
	for _, want := range []string{"No config file loaded", "Debug:           true", "Layout:          layout.yaml", "Server URL:      http://localhost:8080"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	ShowConfig(&buf, "config/config.json", nil)
	if !strings.Contains(buf.String(), "Config file: config/config.json") || !strings.Contains(buf.String(), "(built-in)") {
		t.Fatalf("unexpected output for nil config:\n%s", buf.String())
	}
}

// TestLoad covers a valid file, a missing explicit path, malformed JSON and a
// file whose settings fail validation.
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	valid := write("config.json", `{"serverURL": "http://analysis:8081", "timeout": 9, "chartWidth": 640}`)
	cfg, err := Load(valid)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.ConfigPath != valid || cfg.ServerBaseURL() != "http://analysis:8081" || cfg.RequestTimeout() != 9*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected an error for a missing explicit path")
	}
	if _, err := Load(write("broken.json", `{"debug": tru`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	if _, err := Load(write("invalid.json", `{"timeout": -5}`)); err == nil {
		t.Fatal("expected a validation error")
	}
}
