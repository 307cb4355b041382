// Package results holds the aggregate payload produced by one upload and the
// store that owns the current one.
package results

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Well-known metric keys emitted by the analysis server.
const (
	SubjectPerformanceByYear       = "subjectPerformanceLevelDistributionByYear"
	ElaProficiencyByGradeByYear    = "riseElaProficiencyDistributionByGradeByYear"
	MathProficiencyByGradeByYear   = "mathProficiencyDistributionByGradeByYear"
	AverageScaleScoreByYear        = "averageOverallScaleScoreByYear"
	AverageScoreBySubjectGroup     = "averageOverallScaleScoreOfStudentsInSubjectAreaGroupsByYear"
	AverageScoreBySpecialEdSubject = "averageOverallScaleScoreBySpecialEdAndSubjectAreaByYear"
	ElaPassRateByYear              = "overallElaPassRateByYear"
	AverageScoreByEthnicity        = "averageOverallScaleScoreByEthnicityByYear"
	AverageScoreByGender           = "averageOverallScaleScoreByGenderByYear"
	AverageScoreByGradeLevel       = "averageOverallScaleScoreByGradeLevelByYear"
	AverageScoreByPerformance      = "averageOverallScaleScoreByOverallPerformanceCsvByYear"
	AverageScoreByElaProficiency   = "averageOverallScaleScoreByRiseElaProficiencyByYear"
	AverageScoreByMathProficiency  = "averageOverallScaleScoreByMathProficiencyByYear"
	AverageScoreByEll              = "averageOverallScaleScoreByEllByYear"
	AverageScoreBySpecialEd        = "averageOverallScaleScoreBySpecialEdByYear"
)

// legacyTotalKey is the record count field name used by older servers.
const legacyTotalKey = "totalUnpivotedRecordsProcessed"

// AggregateResult is one server-computed payload. Metric maps are kept as
// decoded JSON trees and read through Lookup and its typed variants.
type AggregateResult struct {
	DatasetYear           int            `json:"datasetYear"`
	FileName              string         `json:"fileName"`
	TotalRecordsProcessed int            `json:"totalRecordsProcessed"`
	Message               string         `json:"message,omitempty"`
	Metrics               map[string]any `json:"-"`
}

// Metric returns the raw metric tree stored under key, or nil when the
// server did not compute it.
func (r *AggregateResult) Metric(key string) any {
	if r == nil || r.Metrics == nil {
		return nil
	}
	return r.Metrics[key]
}

// MetricKeys lists the metric maps present in the payload, sorted.
func (r *AggregateResult) MetricKeys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Metrics))
	for k := range r.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON decodes the scalar header fields and collects every
// object-valued member as a metric map.
func (r *AggregateResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := AggregateResult{Metrics: map[string]any{}}
	for key, value := range raw {
		var err error
		switch key {
		case "datasetYear":
			out.DatasetYear, err = decodeInt(value)
		case "fileName":
			err = json.Unmarshal(value, &out.FileName)
		case "message":
			err = json.Unmarshal(value, &out.Message)
		case "totalRecordsProcessed", legacyTotalKey:
			var n int
			n, err = decodeInt(value)
			if n > out.TotalRecordsProcessed {
				out.TotalRecordsProcessed = n
			}
		default:
			var tree any
			if err = json.Unmarshal(value, &tree); err == nil {
				if m, ok := tree.(map[string]any); ok {
					out.Metrics[key] = m
				}
			}
		}
		if err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
	}
	*r = out
	return nil
}

// MarshalJSON writes the header fields and metric maps back as one object.
func (r AggregateResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Metrics)+4)
	for k, v := range r.Metrics {
		out[k] = v
	}
	out["datasetYear"] = r.DatasetYear
	out["fileName"] = r.FileName
	out["totalRecordsProcessed"] = r.TotalRecordsProcessed
	if r.Message != "" {
		out["message"] = r.Message
	}
	return json.Marshal(out)
}

func decodeInt(value json.RawMessage) (int, error) {
	if string(value) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(value, &f); err != nil {
		return 0, err
	}
	return int(f), nil
}
