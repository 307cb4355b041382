// Package server exposes the CSV analysis over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mwiater/edudash/internal/analysis"
	"github.com/mwiater/edudash/internal/appconfig"
	"github.com/mwiater/edudash/internal/logging"
	"github.com/mwiater/edudash/internal/upload"
)

const (
	msgNoFile      = "Please select a CSV file to upload."
	msgInvalidYear = "Please provide a valid year (e.g., 2023)."
	msgEmptyCSV    = "CSV file is empty or contains no data records after header."
	msgFormat      = "Error in CSV data or format: "
	msgRead        = "Could not read or process the CSV file: "
	msgEncode      = "Could not encode the analysis result."
)

// ErrResp is the body of every non-success answer.
type ErrResp struct {
	Error string `json:"error"`
}

// MessageResp is returned when the file parsed but held no records.
type MessageResp struct {
	Message string `json:"message"`
}

type Server struct {
	cfg      *appconfig.Config
	maxBytes int64
}

func New(cfg *appconfig.Config) *Server {
	return &Server{cfg: cfg, maxBytes: cfg.MaxUploadBytes()}
}

// Handler routes the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST "+upload.Endpoint, s.handleUpload)
	return mux
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.LogEvent("[SERVER] listening on %s (max upload %d MB)", srv.Addr, s.maxBytes>>20)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.LogEvent("[SERVER] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	w.Header().Set(upload.RequestIDHeader, id)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			logging.LogEvent("[SERVER] %s upload over %d bytes", id, s.maxBytes)
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrResp{Error: fmt.Sprintf("Uploaded file exceeds the %d MB limit.", s.maxBytes>>20)})
			return
		}
		logging.LogEvent("[SERVER] %s bad multipart body: %v", id, err)
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: msgNoFile})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil || header.Size == 0 {
		logging.LogEvent("[SERVER] %s upload without a file", id)
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: msgNoFile})
		return
	}
	defer file.Close()
	name := filepath.Base(header.Filename)

	year, err := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
	if err != nil || year <= upload.MinYear || year > upload.MaxYear {
		logging.LogEvent("[SERVER] %s invalid year %q", id, r.FormValue("year"))
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: msgInvalidYear})
		return
	}
	logging.LogUpload("CLIENT->API", name, year, fmt.Sprintf("request=%s size=%d", id, header.Size))

	records, err := analysis.Parse(file, year)
	if err != nil {
		if errors.Is(err, analysis.ErrFormat) {
			logging.LogEvent("[SERVER] %s format error: %v", id, err)
			writeJSON(w, http.StatusBadRequest, ErrResp{Error: msgFormat + err.Error()})
			return
		}
		logging.LogEvent("[SERVER] %s read error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, ErrResp{Error: msgRead + err.Error()})
		return
	}
	if len(records) == 0 {
		logging.LogEvent("[SERVER] %s %s has a header and no records", id, name)
		writeJSON(w, http.StatusOK, MessageResp{Message: msgEmptyCSV})
		return
	}

	report := analysis.Analyze(records, year, name)
	logging.LogEvent("[SERVER] %s analyzed %s year=%d records=%d in %s", id, name, year, len(records), time.Since(start).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, report)
}

// writeJSON encodes v before committing status so an unencodable body
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.LogEvent("[SERVER] encode response: %v", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrResp{Error: msgEncode})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
