// Package upload submits assessment CSV files to the analysis server and
// decodes what comes back.
package upload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinYear = 1900
	MaxYear = 2100
)

var (
	// ErrNoFile is returned when no file was chosen.
	ErrNoFile = errors.New("Please select a CSV file.")
	// ErrInvalidYear is returned for a missing, non-numeric or out of range year.
	ErrInvalidYear = errors.New("Please enter a valid academic year (e.g., 2023).")
)

// ValidateFile rejects an empty path.
func ValidateFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoFile
	}
	return nil
}

// ValidateYear parses text as an academic year in [MinYear, MaxYear].
func ValidateYear(text string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrInvalidYear
	}
	if year < MinYear || year > MaxYear {
		return 0, ErrInvalidYear
	}
	return year, nil
}

// Validate runs both checks in the order the form presents them.
func Validate(path, yearText string) (int, error) {
	if err := ValidateFile(path); err != nil {
		return 0, err
	}
	return ValidateYear(yearText)
}

// ResponseError is a non-success answer from the server.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

func newResponseError(status int, statusText string, body []byte, detail string) *ResponseError {
	if detail != "" {
		return &ResponseError{Status: status, Message: detail}
	}
	msg := fmt.Sprintf("HTTP error! Status: %s.", statusText)
	if len(body) > 0 {
		msg += " Response body (text): " + snippet(body)
	}
	return &ResponseError{Status: status, Message: msg}
}
