package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}
	if cfg == nil {
		cfg = &Config{}
	}

	w, h := cfg.ChartSize()
	layout := cfg.LayoutFile
	if layout == "" {
		layout = "(built-in)"
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Server URL:      %s\n", cfg.ServerBaseURL())
	fmt.Fprintf(out, "  Listen Address:  %s\n", cfg.ListenAddress())
	fmt.Fprintf(out, "  Upload Timeout:  %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Max Upload:      %d MB\n", cfg.MaxUploadBytes()>>20)
	fmt.Fprintf(out, "  Layout:          %s\n", layout)
	fmt.Fprintf(out, "  Chart Size:      %dx%d\n", w, h)
	fmt.Fprintf(out, "  Export Dir:      %s\n", cfg.ExportDirectory())
}
