package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mwiater/edudash/internal/appconfig"
	"github.com/mwiater/edudash/internal/logging"
	"github.com/mwiater/edudash/internal/results"
	"github.com/mwiater/edudash/internal/util"
)

// Endpoint is the analysis route on the server.
const Endpoint = "/api/data/upload"

// RequestIDHeader is echoed by the server for every upload.
const RequestIDHeader = "X-Request-ID"

const snippetRunes = 200

// Client posts CSV files to the analysis server.
type Client struct {
	baseURL string
	client  *http.Client
}

// Response is a decoded success payload plus the bytes it came from.
type Response struct {
	Result    *results.AggregateResult
	Raw       []byte
	RequestID string
}

// NewClient builds a client against the configured server.
func NewClient(cfg *appconfig.Config) *Client {
	return &Client{
		baseURL: cfg.ServerBaseURL(),
		client:  &http.Client{Timeout: cfg.RequestTimeout()},
	}
}

// NewClientWith targets baseURL with the given timeout.
func NewClientWith(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Upload sends the file at path with year as a multipart form. Non-success
// statuses come back as *ResponseError.
func (c *Client) Upload(ctx context.Context, path string, year int) (*Response, error) {
	if err := ValidateFile(path); err != nil {
		return nil, err
	}
	if year < MinYear || year > MaxYear {
		return nil, ErrInvalidYear
	}

	body, contentType, err := buildForm(path, year)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	logging.LogUpload("EDUDASH->API", name, year, fmt.Sprintf("%d bytes", body.Len()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	requestID := resp.Header.Get(RequestIDHeader)
	logging.LogUpload("API->EDUDASH", name, year, util.Snippet(raw, 500))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, resp.Status, raw)
	}
	if err := CheckPayload(raw); err != nil {
		return nil, err
	}
	var result results.AggregateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &Response{Result: &result, Raw: raw, RequestID: requestID}, nil
}

func buildForm(path string, year int) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if err := w.WriteField("year", strconv.Itoa(year)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeError prefers the structured error field, then the status text
// with a body snippet when the body is not the structured shape.
func decodeError(status int, statusText string, raw []byte) *ResponseError {
	if check(errorSchema, raw, "error body") == nil {
		var parsed struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			return newResponseError(status, statusText, raw, parsed.Error)
		}
	}
	if json.Valid(raw) {
		return newResponseError(status, statusText, nil, "")
	}
	return newResponseError(status, statusText, raw, "")
}

func snippet(body []byte) string {
	return util.Snippet(body, snippetRunes)
}
