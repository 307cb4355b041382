package dashboard

import (
	"errors"
	"fmt"
	"os"

	"github.com/mwiater/edudash/internal/renderers"
	"github.com/mwiater/edudash/internal/results"
	"go.yaml.in/yaml/v3"
)

// ChartDef binds one slot to one renderer and one metric map.
type ChartDef struct {
	Slot    string   `yaml:"slot"`
	Kind    string   `yaml:"kind"`
	Metric  string   `yaml:"metric"`
	Title   string   `yaml:"title"`
	Subject string   `yaml:"subject,omitempty"`
	Levels  string   `yaml:"levels,omitempty"`
	Labels  []string `yaml:"labels,omitempty"`
	XAxis   string   `yaml:"xAxis,omitempty"`
	YAxis   string   `yaml:"yAxis,omitempty"`
}

// Options converts the declaration into renderer options.
func (d ChartDef) Options() renderers.Options {
	levels, _ := renderers.LevelSet(d.Levels)
	return renderers.Options{
		Title:   d.Title,
		Subject: d.Subject,
		Levels:  levels,
		Labels:  d.Labels,
		XAxis:   d.XAxis,
		YAxis:   d.YAxis,
	}
}

// FilterDef attaches a dropdown to the chart in Slot.
type FilterDef struct {
	Slot  string `yaml:"slot"`
	Label string `yaml:"label"`
}

// TabDef is one tab panel and the chart slots it contains.
type TabDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Charts []ChartDef `yaml:"charts"`
	Filter *FilterDef `yaml:"filter,omitempty"`
}

// Layout is the ordered tab declaration. The first tab is the default.
type Layout struct {
	Tabs []TabDef `yaml:"tabs"`
}

// Tab returns the declaration for id.
func (l Layout) Tab(id string) (*TabDef, bool) {
	for i := range l.Tabs {
		if l.Tabs[i].ID == id {
			return &l.Tabs[i], true
		}
	}
	return nil, false
}

// DefaultTab is the tab activated after every populated ingest.
func (l Layout) DefaultTab() string {
	if len(l.Tabs) == 0 {
		return ""
	}
	return l.Tabs[0].ID
}

// FilterTab returns the single tab that declares a filter, if any.
func (l Layout) FilterTab() (*TabDef, bool) {
	for i := range l.Tabs {
		if l.Tabs[i].Filter != nil {
			return &l.Tabs[i], true
		}
	}
	return nil, false
}

// Validate checks ids are unique, kinds and level sets are known, and any
// filter targets a filterable chart on its own tab.
func (l Layout) Validate() error {
	if len(l.Tabs) == 0 {
		return errors.New("layout declares no tabs")
	}
	tabs := map[string]bool{}
	slots := map[string]bool{}
	filters := 0
	for _, tab := range l.Tabs {
		if tab.ID == "" {
			return errors.New("layout tab without id")
		}
		if tabs[tab.ID] {
			return fmt.Errorf("duplicate tab id %q", tab.ID)
		}
		tabs[tab.ID] = true
		for _, c := range tab.Charts {
			if c.Slot == "" {
				return fmt.Errorf("tab %q: chart without slot", tab.ID)
			}
			if slots[c.Slot] {
				return fmt.Errorf("duplicate slot id %q", c.Slot)
			}
			slots[c.Slot] = true
			if _, ok := renderers.Lookup(c.Kind); !ok {
				return fmt.Errorf("slot %q: unknown renderer kind %q", c.Slot, c.Kind)
			}
			if c.Levels != "" {
				if _, ok := renderers.LevelSet(c.Levels); !ok {
					return fmt.Errorf("slot %q: unknown level set %q", c.Slot, c.Levels)
				}
			}
		}
		if tab.Filter != nil {
			filters++
			def, ok := tab.chart(tab.Filter.Slot)
			if !ok {
				return fmt.Errorf("tab %q: filter slot %q is not on this tab", tab.ID, tab.Filter.Slot)
			}
			if def.Kind != renderers.KindSpecialEdComparison {
				return fmt.Errorf("tab %q: filter slot %q uses kind %q, which takes no filter", tab.ID, def.Slot, def.Kind)
			}
		}
	}
	if filters > 1 {
		return fmt.Errorf("layout declares %d filters, at most one is supported", filters)
	}
	return nil
}

func (t TabDef) chart(slot string) (ChartDef, bool) {
	for _, c := range t.Charts {
		if c.Slot == slot {
			return c, true
		}
	}
	return ChartDef{}, false
}

// LoadLayout reads a YAML layout file and validates it.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %q: %w", path, err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout %q: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %q: %w", path, err)
	}
	return l, nil
}

// ResolveLayout returns the layout at path, or the built-in one when path is empty.
func ResolveLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	return LoadLayout(path)
}

// DefaultLayout declares every tab the analysis server produces data for.
func DefaultLayout() Layout {
	const students = "Number of Students"
	return Layout{Tabs: []TabDef{
		{
			ID:    "riseElaProficiency",
			Title: "RISE ELA Proficiency",
			Charts: []ChartDef{{
				Slot: "riseElaProficiencyDistributionChart", Kind: renderers.KindGroupedBars,
				Metric: results.ElaProficiencyByGradeByYear, Levels: "ela",
				Title: "RISE ELA Proficiency Distribution by Grade", Subject: "RISE ELA proficiency distribution",
				XAxis: "Grade Level", YAxis: students,
			}},
		},
		{
			ID:    "mathProficiency",
			Title: "Math Proficiency",
			Charts: []ChartDef{{
				Slot: "mathProficiencyDistributionChart", Kind: renderers.KindGroupedBars,
				Metric: results.MathProficiencyByGradeByYear, Levels: "math",
				Title: "Math Proficiency Distribution by Grade", Subject: "Math proficiency distribution",
				XAxis: "Grade Level", YAxis: students,
			}},
		},
		{
			ID:    "subjectPerformance",
			Title: "Subject Performance",
			Charts: []ChartDef{{
				Slot: "subjectPerformanceDistributionChart", Kind: renderers.KindGroupedBars,
				Metric: results.SubjectPerformanceByYear,
				Title:  "Distribution of Performance Levels by Subject Area", Subject: "subject area performance distribution",
				XAxis: "Subject Area (from CSV columns)", YAxis: students,
			}},
		},
		{
			ID:    "overallYearlyMetrics",
			Title: "Overall Metrics",
			Charts: []ChartDef{
				{
					Slot: "avgOverallScaleScoreByYearChart", Kind: renderers.KindScalar,
					Metric: results.AverageScaleScoreByYear,
					Title:  "Average Overall Scale Score", Subject: "overall average scale score",
					YAxis: "Average Scale Score",
				},
				{
					Slot: "overallElaPassRateByYearChart", Kind: renderers.KindPassRate,
					Metric: results.ElaPassRateByYear,
					Title:  "Overall ELA Pass Rate (Based on RISE ELA Proficiency)", Subject: "overall ELA pass rate",
					Labels: []string{"Passing (RISE ELA Proficient/Highly Proficient) (%)", "Not Passing (%)"},
				},
			},
		},
		{
			ID:    "subjectGroupScaleScores",
			Title: "Scale Scores by Group",
			Charts: []ChartDef{
				{
					Slot: "avgScaleScoreBySubjectAreaGroupChart", Kind: renderers.KindCategoryBars,
					Metric: results.AverageScoreBySubjectGroup,
					Title:  "Avg. Overall Scale Score of Students by Subject Area Group", Subject: "subject area group scale score",
					XAxis: "Subject Area", YAxis: "Average Overall Scale Score",
				},
				{
					Slot: "avgScaleScoreByPerformanceChart", Kind: renderers.KindCategoryBars,
					Metric: results.AverageScoreByPerformance,
					Title:  "Avg. Overall Scale Score by Reported Performance", Subject: "reported performance scale score",
					XAxis: "Performance (from CSV)", YAxis: "Average Overall Scale Score",
				},
				{
					Slot: "avgScaleScoreByElaProficiencyChart", Kind: renderers.KindCategoryBars,
					Metric: results.AverageScoreByElaProficiency,
					Title:  "Avg. Overall Scale Score by RISE ELA Proficiency", Subject: "ELA proficiency scale score",
					XAxis: "RISE ELA Proficiency", YAxis: "Average Overall Scale Score",
				},
				{
					Slot: "avgScaleScoreByMathProficiencyChart", Kind: renderers.KindCategoryBars,
					Metric: results.AverageScoreByMathProficiency,
					Title:  "Avg. Overall Scale Score by Math Proficiency", Subject: "Math proficiency scale score",
					XAxis: "Math Proficiency", YAxis: "Average Overall Scale Score",
				},
			},
		},
		{
			ID:    "specialEdComparison",
			Title: "Special Ed",
			Charts: []ChartDef{
				{
					Slot: "avgOverallScaleScoreBySpecialEdChart", Kind: renderers.KindSpecialEdComparison,
					Metric: results.AverageScoreBySpecialEdSubject,
					Title:  "Avg. Overall Scale Score by Sp.Ed Status", YAxis: "Average Overall Scale Score",
				},
				{
					Slot: "avgScaleScoreBySpecialEdFlagChart", Kind: renderers.KindCategoryProportion,
					Metric: results.AverageScoreBySpecialEd,
					Title:  "Avg. Overall Scale Score by Special Ed", Subject: "special ed scale score",
				},
			},
			Filter: &FilterDef{Slot: "avgOverallScaleScoreBySpecialEdChart", Label: "Subject Area"},
		},
		{
			ID:    "demographics",
			Title: "Demographics",
			Charts: []ChartDef{
				{
					Slot: "avgScaleScoreByEthnicityChart", Kind: renderers.KindCategoryProportion,
					Metric: results.AverageScoreByEthnicity,
					Title:  "Avg. Overall Scale Score by Ethnicity", Subject: "ethnicity scale score",
				},
				{
					Slot: "avgScaleScoreByGenderChart", Kind: renderers.KindCategoryProportion,
					Metric: results.AverageScoreByGender,
					Title:  "Avg. Overall Scale Score by Gender", Subject: "gender scale score",
				},
				{
					Slot: "avgScaleScoreByGradeLevelChart", Kind: renderers.KindCategoryProportion,
					Metric: results.AverageScoreByGradeLevel,
					Title:  "Avg. Overall Scale Score by Grade Level", Subject: "grade level scale score",
				},
				{
					Slot: "avgScaleScoreByEllChart", Kind: renderers.KindCategoryProportion,
					Metric: results.AverageScoreByEll,
					Title:  "Avg. Overall Scale Score by ELL Status", Subject: "ELL scale score",
				},
			},
		},
	}}
}
