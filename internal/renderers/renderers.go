// Package renderers turns one metric map from an aggregate payload into a
// chart spec, or a placeholder when the requested year has no data.
package renderers

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/results"
)

// Renderer kinds accepted in a layout.
const (
	KindGroupedBars         = "groupedBars"
	KindScalar              = "scalar"
	KindPassRate            = "passRate"
	KindCategoryProportion  = "categoryProportion"
	KindCategoryBars        = "categoryBars"
	KindSpecialEdComparison = "specialEdComparison"
)

// Options is the per-chart declaration a renderer reads.
type Options struct {
	// Title is suffixed with the year, e.g. "Math Proficiency Distribution by Grade (2023)".
	Title string
	// Subject names the metric in the placeholder text.
	Subject string
	// Levels fixes the order of the secondary dimension; observed extras are appended sorted.
	Levels []string
	// Labels overrides the two slice labels of a pass rate chart.
	Labels []string
	XAxis  string
	YAxis  string
}

// Func renders one metric. filter is ignored by renderers that take none.
type Func func(metric any, year int, filter string, o Options) charts.Drawable

var registry = map[string]Func{
	KindGroupedBars:         func(m any, y int, _ string, o Options) charts.Drawable { return GroupedBars(m, y, o) },
	KindScalar:              func(m any, y int, _ string, o Options) charts.Drawable { return Scalar(m, y, o) },
	KindPassRate:            func(m any, y int, _ string, o Options) charts.Drawable { return PassRate(m, y, o) },
	KindCategoryProportion:  func(m any, y int, _ string, o Options) charts.Drawable { return CategoryProportion(m, y, o) },
	KindCategoryBars:        func(m any, y int, _ string, o Options) charts.Drawable { return CategoryBars(m, y, o) },
	KindSpecialEdComparison: SpecialEdComparison,
}

// Lookup returns the renderer registered for kind.
func Lookup(kind string) (Func, bool) {
	fn, ok := registry[kind]
	return fn, ok
}

// Kinds lists the registered renderer kinds, sorted.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NoData builds the placeholder shown when a metric has nothing for year.
func NoData(o Options, year int) charts.Placeholder {
	subject := o.Subject
	if subject == "" {
		subject = o.Title
	}
	return charts.Placeholder{Text: fmt.Sprintf("No %s data for year %d.", subject, year)}
}

func title(o Options, year int) string {
	return fmt.Sprintf("%s (%d)", o.Title, year)
}

// yearBranch resolves metric[year] as a non-empty map.
func yearBranch(metric any, year int) (map[string]any, bool) {
	m, ok := results.LookupMap(metric, results.YearKey(year))
	if !ok || len(m) == 0 {
		return nil, false
	}
	return m, true
}

// OrderCategories puts integer keys (grade levels) first in ascending
// numeric order, then every other key lexicographically.
func OrderCategories(keys []string) []string {
	type numbered struct {
		key string
		n   int
	}
	var nums []numbered
	var rest []string
	for _, k := range keys {
		if n, err := strconv.Atoi(k); err == nil {
			nums = append(nums, numbered{k, n})
			continue
		}
		rest = append(rest, k)
	}
	sort.SliceStable(nums, func(i, j int) bool { return nums[i].n < nums[j].n })
	sort.Strings(rest)
	out := make([]string, 0, len(keys))
	for _, v := range nums {
		out = append(out, v.key)
	}
	return append(out, rest...)
}

// secondaryLevels returns fixed followed by any observed level not in fixed,
// the extras sorted. With no fixed order the result is the sorted union.
func secondaryLevels(yearData map[string]any, fixed []string) []string {
	seen := make(map[string]bool, len(fixed))
	out := make([]string, 0, len(fixed))
	for _, l := range fixed {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	var extras []string
	for primary := range yearData {
		for _, l := range results.Keys(yearData, primary) {
			if !seen[l] {
				seen[l] = true
				extras = append(extras, l)
			}
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}

// GroupedBars renders a year → primary → secondary → value map as bars per
// primary category, one series per secondary level. Missing combinations
// are plotted as zero.
func GroupedBars(metric any, year int, o Options) charts.Drawable {
	yearData, ok := yearBranch(metric, year)
	if !ok {
		return NoData(o, year)
	}
	primaries := OrderCategories(keysOf(yearData))
	levels := secondaryLevels(yearData, o.Levels)
	colors := charts.Colors(len(levels))

	series := make([]charts.Series, len(levels))
	for i, level := range levels {
		values := make([]float64, len(primaries))
		for j, p := range primaries {
			values[j], _ = results.LookupNumber(yearData, p, level)
		}
		series[i] = charts.Series{Name: level, Values: values, Colors: []charts.Color{colors[i]}}
	}
	return &charts.Spec{
		Kind:        charts.KindBar,
		Title:       title(o, year),
		Labels:      primaries,
		Series:      series,
		XAxis:       o.XAxis,
		YAxis:       o.YAxis,
		BeginAtZero: true,
		ShowLegend:  true,
	}
}

// Scalar renders a year → value map as a single bar.
func Scalar(metric any, year int, o Options) charts.Drawable {
	v, ok := results.LookupNumber(metric, results.YearKey(year))
	if !ok {
		return NoData(o, year)
	}
	return &charts.Spec{
		Kind:   charts.KindBar,
		Title:  title(o, year),
		Labels: []string{fmt.Sprintf("Year %d", year)},
		Series: []charts.Series{{Name: o.Title, Values: []float64{v}, Colors: charts.Colors(1)}},
		YAxis:  o.YAxis,
	}
}

// PassRate renders a year → percentage map as value against the remainder.
func PassRate(metric any, year int, o Options) charts.Drawable {
	rate, ok := results.LookupNumber(metric, results.YearKey(year))
	if !ok {
		return NoData(o, year)
	}
	labels := o.Labels
	if len(labels) != 2 {
		labels = []string{"Passing (%)", "Not Passing (%)"}
	}
	rest := 100 - rate
	if rest < 0 {
		rest = 0
	}
	return &charts.Spec{
		Kind:       charts.KindDoughnut,
		Title:      title(o, year),
		Labels:     labels,
		Series:     []charts.Series{{Name: o.Title, Values: []float64{rate, rest}, Colors: charts.Colors(2)}},
		ShowLegend: true,
	}
}

// CategoryProportion renders a year → category → value map as a pie.
func CategoryProportion(metric any, year int, o Options) charts.Drawable {
	return categories(metric, year, o, charts.KindPie)
}

// CategoryBars renders a year → category → value map as one bar per category.
func CategoryBars(metric any, year int, o Options) charts.Drawable {
	return categories(metric, year, o, charts.KindBar)
}

func categories(metric any, year int, o Options, kind charts.Kind) charts.Drawable {
	yearData, ok := yearBranch(metric, year)
	if !ok {
		return NoData(o, year)
	}
	labels := OrderCategories(keysOf(yearData))
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i], _ = results.LookupNumber(yearData, l)
	}
	return &charts.Spec{
		Kind:       kind,
		Title:      title(o, year),
		Labels:     labels,
		Series:     []charts.Series{{Name: o.Title, Values: values, Colors: charts.Colors(len(labels))}},
		XAxis:      o.XAxis,
		YAxis:      o.YAxis,
		ShowLegend: kind == charts.KindPie,
	}
}

// Special-ed branch keys in the flag → year → subject → value map.
const (
	SpecialEdKey    = "true"
	NonSpecialEdKey = "false"
)

// SelectSubjectMessage is shown before a subject is chosen.
const SelectSubjectMessage = "Select a subject area to view Special Ed comparison."

// SpecialEdComparison plots the special-ed and non-special-ed values of one
// subject side by side. A branch present with value zero is real data; only
// when neither branch has the subject is a placeholder drawn.
func SpecialEdComparison(metric any, year int, subject string, o Options) charts.Drawable {
	if metric == nil || year == 0 || subject == "" {
		return charts.Placeholder{Text: SelectSubjectMessage}
	}
	yk := results.YearKey(year)
	nonSpEd, nonOK := results.LookupNumber(metric, NonSpecialEdKey, yk, subject)
	spEd, spOK := results.LookupNumber(metric, SpecialEdKey, yk, subject)
	if !nonOK && !spOK {
		return charts.Placeholder{Text: fmt.Sprintf("No data for %s in %d to compare Special Ed status.", subject, year)}
	}
	return &charts.Spec{
		Kind:   charts.KindBar,
		Title:  fmt.Sprintf("%s for %s (%d)", o.Title, subject, year),
		Labels: []string{"Non-Special Ed", "Special Ed"},
		Series: []charts.Series{{
			Name:   fmt.Sprintf("Avg. Overall Scale Score - %s (%d)", subject, year),
			Values: []float64{nonSpEd, spEd},
			Colors: charts.Colors(2),
		}},
		YAxis: o.YAxis,
	}
}

// SpecialEdSubjects is the sorted union of subjects present under either
// special-ed branch for year.
func SpecialEdSubjects(metric any, year int) []string {
	yk := results.YearKey(year)
	seen := map[string]bool{}
	var out []string
	for _, branch := range []string{SpecialEdKey, NonSpecialEdKey} {
		for _, s := range results.Keys(metric, branch, yk) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
