// scripts/server_integration_check.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwiater/edudash/internal/appconfig"
	"github.com/mwiater/edudash/internal/results"
	"github.com/mwiater/edudash/internal/upload"
)

const sampleCSV = `Student ID,Student Name,Grade,ELL,Special Ed,Scale Score,Performance,Ethnicity,Gender,Reading Literature Performance,Functions Performance
1,"Doe, Jane",3,no,yes,340,Proficient,Hispanic,F,Proficient,Approaching
2,Sam Lee,4,yes,no,355,Approaching,White,M,Approaching,Proficient
3,Ana Ruiz,8,no,no,540,Highly Proficient,White,F,Highly Proficient,Proficient
`

func main() {
	configPath := flag.String("config", appconfig.DefaultConfigPath, "Path to config JSON")
	serverURL := flag.String("url", "", "Override analysis server URL")
	file := flag.String("file", "", "CSV file to upload (defaults to a generated sample)")
	year := flag.Int("year", 2023, "Academic year sent with the upload")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Parse()

	base, err := resolveTarget(*configPath, *serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Target server: %s\n\n", base)

	if err := checkHealth(&http.Client{Timeout: *timeout}, base); err != nil {
		fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
	}

	path := *file
	if path == "" {
		path, err = writeSample()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sample csv: %v\n", err)
			os.Exit(1)
		}
		defer os.Remove(path)
	}
	if err := probeUpload(upload.NewClientWith(base, *timeout), path, *year); err != nil {
		fmt.Fprintf(os.Stderr, "upload probe failed: %v\n", err)
		os.Exit(1)
	}
}

func resolveTarget(configPath, overrideURL string) (string, error) {
	if overrideURL != "" {
		return strings.TrimRight(overrideURL, "/"), nil
	}
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return "", err
	}
	return cfg.ServerBaseURL(), nil
}

func checkHealth(client *http.Client, baseURL string) error {
	fmt.Println("== /healthz ==")
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Body: %s\n\n", strings.TrimSpace(string(body)))
	return nil
}

func probeUpload(client *upload.Client, path string, year int) error {
	fmt.Printf("== %s (%s, year %d) ==\n", upload.Endpoint, filepath.Base(path), year)
	resp, err := client.Upload(context.Background(), path, year)
	if err != nil {
		var respErr *upload.ResponseError
		if errors.As(err, &respErr) {
			fmt.Printf("Status: %d\n", respErr.Status)
		}
		return err
	}
	fmt.Printf("Request ID: %s\n", resp.RequestID)
	fmt.Println("Raw:")
	fmt.Println(indentJSON(resp.Raw))

	outcome := results.Classify(resp.Result)
	fmt.Printf("\nOutcome: %s (%s)\n", outcome.Kind, outcome.Notice.Level)
	fmt.Printf("Notice: %s\n", outcome.Notice.Text)
	fmt.Printf("Metrics: %d\n", len(resp.Result.MetricKeys()))
	for _, key := range resp.Result.MetricKeys() {
		fmt.Printf("  - %s\n", key)
	}
	return nil
}

func writeSample() (string, error) {
	f, err := os.CreateTemp("", "edudash-sample-*.csv")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(sampleCSV); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func indentJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}
