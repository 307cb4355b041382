// Package analysis turns an assessment CSV into the aggregate payload the
// dashboard draws.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Common headers every file must carry.
const (
	HeaderStudentID   = "Student ID"
	HeaderStudentName = "Student Name"
	HeaderGrade       = "Grade"
	HeaderEll         = "ELL"
	HeaderSpecialEd   = "Special Ed"
	HeaderScaleScore  = "Scale Score"
	HeaderPerformance = "Performance"
	HeaderEthnicity   = "Ethnicity"
	HeaderGender      = "Gender"
)

var requiredHeaders = []string{
	HeaderStudentID, HeaderStudentName, HeaderGrade, HeaderEll, HeaderSpecialEd,
	HeaderScaleScore, HeaderPerformance, HeaderEthnicity, HeaderGender,
}

// ElaSubjectColumns are the per-area ELA performance columns.
var ElaSubjectColumns = []string{
	"Language Performance",
	"Listening Comprehension Performance",
	"Reading Informational Text Performance",
	"Reading Literature Performance",
}

// MathSubjectColumns are the per-area Math performance columns.
var MathSubjectColumns = []string{
	"Expressions and Equations Performance",
	"Functions Performance",
	"Geometry / The Number System Performance",
	"Statistics and Probability Performance",
}

// ErrFormat marks problems with the file's content rather than the server.
var ErrFormat = errors.New("invalid CSV")

// FormatError describes what is wrong with the file. It matches ErrFormat.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErr(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// Record is one student row, unpivoted to a single subject column when the
// file has any.
type Record struct {
	StudentID       string
	StudentName     string
	Grade           string
	Ell             bool
	SpecialEd       bool
	ScaleScore      float64
	Performance     string
	Ethnicity       string
	Gender          string
	Year            int
	Subject         string
	SubjectLevel    string
	ElaProficiency  string
	MathProficiency string
}

// Parse reads every data row of r. A file with only a header yields no
// records and no error.
func Parse(r io.Reader, year int) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, formatErr("CSV file has no header row.")
	}
	if err != nil {
		return nil, formatErr("read header: %v", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return nil, formatErr("CSV file is missing the common required header: '%s'.", h)
		}
	}
	var subjects []string
	for _, col := range append(append([]string{}, ElaSubjectColumns...), MathSubjectColumns...) {
		if _, ok := index[col]; ok {
			subjects = append(subjects, col)
		}
	}

	var out []Record
	for n := 1; ; n++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formatErr("Error reading record %d: %v", n, err)
		}
		if blank(row) {
			n--
			continue
		}
		base, err := parseRow(row, index, year)
		if err != nil {
			return nil, formatErr("Error accessing data at record %d: %v", n, err)
		}
		if len(subjects) == 0 {
			out = append(out, base)
			continue
		}
		for _, col := range subjects {
			rec := base
			rec.Subject = col
			rec.SubjectLevel = field(row, index[col])
			out = append(out, rec)
		}
	}
	return out, nil
}

func parseRow(row []string, index map[string]int, year int) (Record, error) {
	get := func(h string) (string, error) {
		i := index[h]
		if i >= len(row) {
			return "", fmt.Errorf("missing value for '%s'", h)
		}
		return strings.TrimSpace(row[i]), nil
	}
	values := make(map[string]string, len(requiredHeaders))
	for _, h := range requiredHeaders {
		v, err := get(h)
		if err != nil {
			return Record{}, err
		}
		values[h] = v
	}
	score, err := strconv.ParseFloat(values[HeaderScaleScore], 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return Record{}, fmt.Errorf("invalid scale score %q", values[HeaderScaleScore])
	}
	grade := values[HeaderGrade]
	return Record{
		StudentID:       values[HeaderStudentID],
		StudentName:     normalizeName(values[HeaderStudentName]),
		Grade:           grade,
		Ell:             truthy(values[HeaderEll]),
		SpecialEd:       truthy(values[HeaderSpecialEd]),
		ScaleScore:      score,
		Performance:     values[HeaderPerformance],
		Ethnicity:       values[HeaderEthnicity],
		Gender:          values[HeaderGender],
		Year:            year,
		ElaProficiency:  ElaProficiency(grade, score),
		MathProficiency: MathProficiency(grade, score),
	}, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// normalizeName turns "Last, First" into "First Last".
func normalizeName(raw string) string {
	last, first, ok := strings.Cut(raw, ",")
	if !ok {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
