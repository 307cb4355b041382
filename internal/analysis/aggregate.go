package analysis

import (
	"math"
	"strconv"
	"strings"
)

// Unknown stands in for an empty category value.
const Unknown = "Unknown"

type (
	Counts      map[string]map[string]map[string]int
	Averages    map[string]map[string]float64
	YearlyValue map[string]float64
)

// Report is the payload returned for one upload. Metric maps are keyed by
// year first, except the special-ed comparison which is keyed by flag.
type Report struct {
	DatasetYear           int    `json:"datasetYear"`
	FileName              string `json:"fileName"`
	TotalRecordsProcessed int    `json:"totalRecordsProcessed"`

	SubjectPerformance        Counts              `json:"subjectPerformanceLevelDistributionByYear"`
	ElaProficiencyByGrade     Counts              `json:"riseElaProficiencyDistributionByGradeByYear"`
	MathProficiencyByGrade    Counts              `json:"mathProficiencyDistributionByGradeByYear"`
	AverageScaleScore         YearlyValue         `json:"averageOverallScaleScoreByYear"`
	AverageBySubjectGroup     Averages            `json:"averageOverallScaleScoreOfStudentsInSubjectAreaGroupsByYear"`
	AverageBySpecialEdSubject map[string]Averages `json:"averageOverallScaleScoreBySpecialEdAndSubjectAreaByYear"`
	ElaPassRate               YearlyValue         `json:"overallElaPassRateByYear"`
	AverageByEthnicity        Averages            `json:"averageOverallScaleScoreByEthnicityByYear"`
	AverageByGender           Averages            `json:"averageOverallScaleScoreByGenderByYear"`
	AverageByGradeLevel       Averages            `json:"averageOverallScaleScoreByGradeLevelByYear"`
	AverageByPerformance      Averages            `json:"averageOverallScaleScoreByOverallPerformanceCsvByYear"`
	AverageByElaProficiency   Averages            `json:"averageOverallScaleScoreByRiseElaProficiencyByYear"`
	AverageByMathProficiency  Averages            `json:"averageOverallScaleScoreByMathProficiencyByYear"`
	AverageByEll              Averages            `json:"averageOverallScaleScoreByEllByYear"`
	AverageBySpecialEd        Averages            `json:"averageOverallScaleScoreBySpecialEdByYear"`
}

// Analyze computes every metric over records.
func Analyze(records []Record, year int, fileName string) *Report {
	students := uniqueStudents(records)
	return &Report{
		DatasetYear:               year,
		FileName:                  fileName,
		TotalRecordsProcessed:     len(records),
		SubjectPerformance:        subjectPerformance(records),
		ElaProficiencyByGrade:     distributionByGrade(students, func(r Record) string { return r.ElaProficiency }),
		MathProficiencyByGrade:    distributionByGrade(students, func(r Record) string { return r.MathProficiency }),
		AverageScaleScore:         averageByYear(students),
		AverageBySubjectGroup:     averageBySubject(records),
		AverageBySpecialEdSubject: averageBySpecialEdSubject(records),
		ElaPassRate:               elaPassRate(students),
		AverageByEthnicity:        averageBy(students, func(r Record) string { return r.Ethnicity }),
		AverageByGender:           averageBy(students, func(r Record) string { return r.Gender }),
		AverageByGradeLevel:       averageBy(students, func(r Record) string { return r.Grade }),
		AverageByPerformance:      averageBy(students, func(r Record) string { return r.Performance }),
		AverageByElaProficiency:   averageBy(students, func(r Record) string { return r.ElaProficiency }),
		AverageByMathProficiency:  averageBy(students, func(r Record) string { return r.MathProficiency }),
		AverageByEll:              averageBy(students, func(r Record) string { return yesNo(r.Ell) }),
		AverageBySpecialEd:        averageBy(students, func(r Record) string { return yesNo(r.SpecialEd) }),
	}
}

// uniqueStudents keeps the first record of every student and year.
func uniqueStudents(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	var out []Record
	for _, r := range records {
		key := r.StudentID + "_" + strconv.Itoa(r.Year)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func yearKey(year int) string { return strconv.Itoa(year) }

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return Unknown
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (c Counts) add(year, group, level string) {
	groups, ok := c[year]
	if !ok {
		groups = make(map[string]map[string]int)
		c[year] = groups
	}
	levels, ok := groups[group]
	if !ok {
		levels = make(map[string]int)
		groups[group] = levels
	}
	levels[level]++
}

func subjectPerformance(records []Record) Counts {
	out := Counts{}
	for _, r := range records {
		if r.Subject == "" {
			continue
		}
		out.add(yearKey(r.Year), r.Subject, orUnknown(r.SubjectLevel))
	}
	return out
}

func distributionByGrade(students []Record, level func(Record) string) Counts {
	out := Counts{}
	for _, r := range students {
		out.add(yearKey(r.Year), orUnknown(r.Grade), level(r))
	}
	return out
}

// mean accumulates a running sum for one bucket.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 { return round2(m.sum / float64(m.n)) }

type buckets map[string]map[string]*mean

func (b buckets) add(outer, inner string, v float64) {
	m, ok := b[outer]
	if !ok {
		m = make(map[string]*mean)
		b[outer] = m
	}
	acc, ok := m[inner]
	if !ok {
		acc = &mean{}
		m[inner] = acc
	}
	acc.add(v)
}

func (b buckets) averages() Averages {
	out := make(Averages, len(b))
	for outer, m := range b {
		inner := make(map[string]float64, len(m))
		for k, acc := range m {
			inner[k] = acc.value()
		}
		out[outer] = inner
	}
	return out
}

func averageByYear(students []Record) YearlyValue {
	acc := map[string]*mean{}
	for _, r := range students {
		k := yearKey(r.Year)
		if acc[k] == nil {
			acc[k] = &mean{}
		}
		acc[k].add(r.ScaleScore)
	}
	out := make(YearlyValue, len(acc))
	for k, m := range acc {
		out[k] = m.value()
	}
	return out
}

func averageBy(students []Record, category func(Record) string) Averages {
	b := buckets{}
	for _, r := range students {
		b.add(yearKey(r.Year), orUnknown(category(r)), r.ScaleScore)
	}
	return b.averages()
}

// averageBySubject averages each student once per subject area column.
func averageBySubject(records []Record) Averages {
	b := buckets{}
	seen := map[string]bool{}
	for _, r := range records {
		if r.Subject == "" {
			continue
		}
		key := r.StudentID + "|" + yearKey(r.Year) + "|" + r.Subject
		if seen[key] {
			continue
		}
		seen[key] = true
		b.add(yearKey(r.Year), r.Subject, r.ScaleScore)
	}
	return b.averages()
}

func averageBySpecialEdSubject(records []Record) map[string]Averages {
	flags := map[string]buckets{}
	seen := map[string]bool{}
	for _, r := range records {
		if r.Subject == "" {
			continue
		}
		key := r.StudentID + "|" + yearKey(r.Year) + "|" + r.Subject
		if seen[key] {
			continue
		}
		seen[key] = true
		flag := strconv.FormatBool(r.SpecialEd)
		if flags[flag] == nil {
			flags[flag] = buckets{}
		}
		flags[flag].add(yearKey(r.Year), r.Subject, r.ScaleScore)
	}
	out := make(map[string]Averages, len(flags))
	for flag, b := range flags {
		out[flag] = b.averages()
	}
	return out
}

// elaPassRate is the percent of ELA-assessed students who pass. Students
// whose band is N/A are not assessed.
func elaPassRate(students []Record) YearlyValue {
	total := map[string]int{}
	passing := map[string]int{}
	for _, r := range students {
		if strings.HasPrefix(r.ElaProficiency, "N/A") {
			continue
		}
		k := yearKey(r.Year)
		total[k]++
		if ElaPassing(r.ElaProficiency) {
			passing[k]++
		}
	}
	out := make(YearlyValue, len(total))
	for k, n := range total {
		out[k] = round2(float64(passing[k]) / float64(n) * 100)
	}
	return out
}
