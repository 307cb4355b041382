package upload

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/edudash/internal/results"
)

func TestValidateYearBoundaries(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1900", 1900, false},
		{"2100", 2100, false},
		{" 2023 ", 2023, false},
		{"1899", 0, true},
		{"2101", 0, true},
		{"twenty", 0, true},
		{"", 0, true},
		{"2023.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ValidateYear(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidYear) {
				t.Errorf("ValidateYear(%q) error = %v, want ErrInvalidYear", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ValidateYear(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestValidateChecksFileFirst(t *testing.T) {
	if _, err := Validate("", "abc"); !errors.Is(err, ErrNoFile) {
		t.Fatalf("Validate() error = %v, want ErrNoFile", err)
	}
	if _, err := Validate("scores.csv", "abc"); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("Validate() error = %v, want ErrInvalidYear", err)
	}
	year, err := Validate("scores.csv", "2024")
	if err != nil || year != 2024 {
		t.Fatalf("Validate() = %d, %v", year, err)
	}
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.csv")
	if err := os.WriteFile(path, []byte("Student ID,Grade\n1,3\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestUploadSendsMultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Endpoint || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		file.Close()
		if header.Filename != "scores.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		if got := r.FormValue("year"); got != "2023" {
			t.Errorf("year = %q", got)
		}
		w.Header().Set(RequestIDHeader, "req-1")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"datasetYear":2023,"fileName":"scores.csv","totalRecordsProcessed":4,
			"averageOverallScaleScoreByYear":{"2023":512.5}}`))
	}))
	defer server.Close()

	client := NewClientWith(server.URL, 5*time.Second)
	resp, err := client.Upload(context.Background(), writeCSV(t), 2023)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.RequestID != "req-1" {
		t.Fatalf("RequestID = %q", resp.RequestID)
	}
	if resp.Result.TotalRecordsProcessed != 4 || resp.Result.DatasetYear != 2023 {
		t.Fatalf("unexpected result %+v", resp.Result)
	}
	if _, ok := resp.Result.Metric(results.AverageScaleScoreByYear).(map[string]any); !ok {
		t.Fatalf("metric map missing: %+v", resp.Result.Metrics)
	}
	if len(resp.Raw) == 0 {
		t.Fatal("raw body not kept")
	}
}

func TestUploadErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"structured", http.StatusBadRequest, `{"error":"Invalid year provided."}`, "Invalid year provided."},
		{"json without error", http.StatusInternalServerError, `{"detail":"x"}`, "HTTP error! Status: 500 Internal Server Error."},
		{"plain text", http.StatusBadGateway, "upstream\n  down", "HTTP error! Status: 502 Bad Gateway. Response body (text): upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClientWith(server.URL, 5*time.Second).Upload(context.Background(), writeCSV(t), 2023)
			var respErr *ResponseError
			if !errors.As(err, &respErr) {
				t.Fatalf("error = %v, want *ResponseError", err)
			}
			if respErr.Status != tt.status || respErr.Message != tt.want {
				t.Fatalf("ResponseError = %+v, want status %d message %q", respErr, tt.status, tt.want)
			}
		})
	}
}

func TestUploadRejectsMalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	_, err := NewClientWith(server.URL, 5*time.Second).Upload(context.Background(), writeCSV(t), 2023)
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("error = %v, want invalid JSON", err)
	}
}

func TestUploadValidatesBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClientWith(server.URL, time.Second)
	if _, err := client.Upload(context.Background(), writeCSV(t), 2101); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("error = %v, want ErrInvalidYear", err)
	}
	if _, err := client.Upload(context.Background(), "", 2023); !errors.Is(err, ErrNoFile) {
		t.Fatalf("error = %v, want ErrNoFile", err)
	}
	if called {
		t.Fatal("server contacted despite invalid input")
	}
}

func TestCheckPayloadContract(t *testing.T) {
	if err := CheckPayload([]byte(`{"message":"CSV file is empty"}`)); err != nil {
		t.Fatalf("message-only payload rejected: %v", err)
	}
	if err := CheckPayload([]byte(`{"totalRecordsProcessed":"many"}`)); err == nil {
		t.Fatal("string total accepted")
	}
}

func TestCheckPayloadToleratesUnknownScalars(t *testing.T) {
	body := []byte(`{"totalRecordsProcessed":1,"processingMillis":12,"serverVersion":"1.2","averageScaleScore":{"2023":410}}`)
	if err := CheckPayload(body); err != nil {
		t.Fatalf("extra scalar members rejected: %v", err)
	}
	var r results.AggregateResult
	if err := r.UnmarshalJSON(body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := r.Metrics["processingMillis"]; ok {
		t.Fatal("scalar member kept as a metric")
	}
	if r.Metric("averageScaleScore") == nil {
		t.Fatalf("metric dropped: %v", r.Metrics)
	}
}
