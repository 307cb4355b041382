package renderers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mwiater/edudash/internal/charts"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func mustSpec(t *testing.T, d charts.Drawable) *charts.Spec {
	t.Helper()
	spec, ok := d.(*charts.Spec)
	if !ok {
		t.Fatalf("expected *charts.Spec, got %#v", d)
	}
	return spec
}

func mustPlaceholder(t *testing.T, d charts.Drawable) charts.Placeholder {
	t.Helper()
	p, ok := d.(charts.Placeholder)
	if !ok {
		t.Fatalf("expected placeholder, got %#v", d)
	}
	return p
}

func seriesByName(spec *charts.Spec) map[string][]float64 {
	out := map[string][]float64{}
	for _, s := range spec.Series {
		out[s.Name] = s.Values
	}
	return out
}

func TestGroupedBarsFixedLevelOrder(t *testing.T) {
	metric := decode(t, `{"2023": {"3": {"Proficient": 10, "Below Proficient": 5}}}`)
	spec := mustSpec(t, GroupedBars(metric, 2023, Options{Title: "RISE ELA Proficiency Distribution by Grade", Levels: ElaLevels}))

	if len(spec.Labels) != 1 || spec.Labels[0] != "3" {
		t.Fatalf("expected single grade label 3, got %v", spec.Labels)
	}
	if len(spec.Series) != len(ElaLevels) {
		t.Fatalf("expected %d series, got %d", len(ElaLevels), len(spec.Series))
	}
	for i, level := range ElaLevels {
		if spec.Series[i].Name != level {
			t.Fatalf("series %d = %q, want %q", i, spec.Series[i].Name, level)
		}
	}
	values := seriesByName(spec)
	if values["Proficient"][0] != 10 || values["Below Proficient"][0] != 5 {
		t.Fatalf("unexpected values: %v", values)
	}
	for _, level := range []string{"Approaching Proficient", "Highly Proficient", "N/A (Grade not in ELA 3-8)", "N/A (Score out of ELA range)"} {
		if values[level][0] != 0 {
			t.Fatalf("expected zero for %s, got %v", level, values[level])
		}
	}
	if spec.Title != "RISE ELA Proficiency Distribution by Grade (2023)" || !spec.BeginAtZero {
		t.Fatalf("unexpected spec header: %+v", spec)
	}
}

func TestGroupedBarsGradeOrderingIsNumeric(t *testing.T) {
	metric := decode(t, `{"2023": {"10": {"Proficient": 1}, "3": {"Proficient": 2}, "8": {"Proficient": 3}}}`)
	spec := mustSpec(t, GroupedBars(metric, 2023, Options{Levels: MathLevels}))
	if strings.Join(spec.Labels, ",") != "3,8,10" {
		t.Fatalf("expected numeric grade order, got %v", spec.Labels)
	}
}

func TestGroupedBarsUnknownGradeSortsLast(t *testing.T) {
	metric := decode(t, `{"2023": {"3": {"Proficient": 1}, "10": {"Proficient": 2}, "4": {"Proficient": 3}, "Unknown": {"Proficient": 4}}}`)
	spec := mustSpec(t, GroupedBars(metric, 2023, Options{Levels: ElaLevels}))
	if got := strings.Join(spec.Labels, ","); got != "3,4,10,Unknown" {
		t.Fatalf("labels = %s, want 3,4,10,Unknown", got)
	}
	if got := seriesByName(spec)["Proficient"]; got[2] != 2 || got[3] != 4 {
		t.Fatalf("values not aligned with labels: %v", got)
	}
}

func TestOrderCategories(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"3", "10", "4", "Unknown"}, "3,4,10,Unknown"},
		{[]string{"b", "10", "a", "9"}, "9,10,a,b"},
		{[]string{"Male", "Female"}, "Female,Male"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := strings.Join(OrderCategories(tt.in), ","); got != tt.want {
			t.Fatalf("OrderCategories(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestGroupedBarsSecondaryUnionIsComplete(t *testing.T) {
	metric := decode(t, `{"2023": {
		"Reading Literature Performance": {"Proficient": 4, "Below": 1},
		"Functions Performance": {"Approaching": 2}
	}}`)
	spec := mustSpec(t, GroupedBars(metric, 2023, Options{Title: "Subjects"}))

	if strings.Join(spec.Labels, "|") != "Functions Performance|Reading Literature Performance" {
		t.Fatalf("expected lexicographic primaries, got %v", spec.Labels)
	}
	names := make([]string, len(spec.Series))
	for i, s := range spec.Series {
		names[i] = s.Name
		if len(s.Values) != len(spec.Labels) {
			t.Fatalf("series %s has %d values for %d labels", s.Name, len(s.Values), len(spec.Labels))
		}
	}
	if strings.Join(names, ",") != "Approaching,Below,Proficient" {
		t.Fatalf("expected sorted union of levels, got %v", names)
	}
	values := seriesByName(spec)
	if values["Approaching"][1] != 0 || values["Proficient"][0] != 0 || values["Proficient"][1] != 4 {
		t.Fatalf("missing combinations must be zero: %v", values)
	}
}

func TestGroupedBarsAppendsUnknownLevels(t *testing.T) {
	metric := decode(t, `{"2023": {"4": {"Proficient": 1, "Exempt": 2}}}`)
	spec := mustSpec(t, GroupedBars(metric, 2023, Options{Levels: ElaLevels}))
	last := spec.Series[len(spec.Series)-1]
	if last.Name != "Exempt" || last.Values[0] != 2 {
		t.Fatalf("expected observed extra level appended, got %+v", last)
	}
}

func TestPlaceholders(t *testing.T) {
	o := Options{Title: "Whatever", Subject: "Math proficiency distribution"}
	tests := []struct {
		name   string
		metric any
		fn     func(any, int, Options) charts.Drawable
	}{
		{name: "grouped absent metric", metric: nil, fn: GroupedBars},
		{name: "grouped absent year", metric: decode(t, `{"2022": {"3": {"Proficient": 1}}}`), fn: GroupedBars},
		{name: "grouped empty year", metric: decode(t, `{"2023": {}}`), fn: GroupedBars},
		{name: "scalar absent year", metric: decode(t, `{"2022": 400}`), fn: Scalar},
		{name: "scalar null", metric: decode(t, `{"2023": null}`), fn: Scalar},
		{name: "pass rate absent", metric: nil, fn: PassRate},
		{name: "proportion absent", metric: decode(t, `{}`), fn: CategoryProportion},
		{name: "bars wrong shape", metric: decode(t, `{"2023": 5}`), fn: CategoryBars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustPlaceholder(t, tt.fn(tt.metric, 2023, o))
			if p.Text != "No Math proficiency distribution data for year 2023." {
				t.Fatalf("unexpected placeholder text: %q", p.Text)
			}
		})
	}
}

func TestScalarAndPassRate(t *testing.T) {
	avg := mustSpec(t, Scalar(decode(t, `{"2023": 412.57}`), 2023, Options{Title: "Average Overall Scale Score"}))
	if avg.Kind != charts.KindBar || avg.Labels[0] != "Year 2023" || avg.Series[0].Values[0] != 412.57 {
		t.Fatalf("unexpected scalar spec: %+v", avg)
	}
	if avg.BeginAtZero {
		t.Fatal("scale scores should not force a zero baseline")
	}

	rate := mustSpec(t, PassRate(decode(t, `{"2023": 61.5}`), 2023, Options{Title: "Overall ELA Pass Rate"}))
	if rate.Kind != charts.KindDoughnut || rate.Series[0].Values[0] != 61.5 || rate.Series[0].Values[1] != 38.5 {
		t.Fatalf("unexpected pass rate spec: %+v", rate)
	}

	over := mustSpec(t, PassRate(decode(t, `{"2023": 104}`), 2023, Options{Labels: []string{"Yes", "No"}}))
	if over.Series[0].Values[1] != 0 || over.Labels[0] != "Yes" {
		t.Fatalf("expected remainder floored at zero and custom labels, got %+v", over)
	}
}

func TestCategoryCharts(t *testing.T) {
	metric := decode(t, `{"2023": {"Hispanic": 401.2, "Asian": 420, "White": 410.5}}`)
	pie := mustSpec(t, CategoryProportion(metric, 2023, Options{Title: "By Ethnicity"}))
	if pie.Kind != charts.KindPie || strings.Join(pie.Labels, ",") != "Asian,Hispanic,White" {
		t.Fatalf("unexpected pie: %+v", pie)
	}
	if len(pie.Series[0].Colors) != 3 || pie.Series[0].Values[0] != 420 {
		t.Fatalf("expected per-category colors and values: %+v", pie.Series[0])
	}

	bars := mustSpec(t, CategoryBars(decode(t, `{"2023": {"12": 1, "9": 2}}`), 2023, Options{}))
	if bars.Kind != charts.KindBar || strings.Join(bars.Labels, ",") != "9,12" {
		t.Fatalf("unexpected bars: %+v", bars)
	}
}

func TestSpecialEdComparison(t *testing.T) {
	metric := decode(t, `{
		"true":  {"2023": {"Functions Performance": 0, "Language Performance": 390}},
		"false": {"2023": {"Functions Performance": 0, "Geometry / The Number System Performance": 415}}
	}`)
	o := Options{Title: "Avg. Overall Scale Score by Sp.Ed Status"}

	zeros := mustSpec(t, SpecialEdComparison(metric, 2023, "Functions Performance", o))
	if len(zeros.Series[0].Values) != 2 || zeros.Series[0].Values[0] != 0 || zeros.Series[0].Values[1] != 0 {
		t.Fatalf("explicit zeros must render as a real comparison: %+v", zeros)
	}

	oneSided := mustSpec(t, SpecialEdComparison(metric, 2023, "Language Performance", o))
	if oneSided.Series[0].Values[0] != 0 || oneSided.Series[0].Values[1] != 390 {
		t.Fatalf("unexpected one-sided values: %+v", oneSided.Series[0].Values)
	}
	if oneSided.Labels[0] != "Non-Special Ed" || oneSided.Labels[1] != "Special Ed" {
		t.Fatalf("unexpected labels: %v", oneSided.Labels)
	}

	absent := mustPlaceholder(t, SpecialEdComparison(metric, 2023, "Statistics and Probability Performance", o))
	if absent.Text != "No data for Statistics and Probability Performance in 2023 to compare Special Ed status." {
		t.Fatalf("unexpected placeholder: %q", absent.Text)
	}

	noSubject := mustPlaceholder(t, SpecialEdComparison(metric, 2023, "", o))
	if noSubject.Text != SelectSubjectMessage {
		t.Fatalf("unexpected placeholder: %q", noSubject.Text)
	}
}

func TestSpecialEdSubjects(t *testing.T) {
	metric := decode(t, `{
		"true":  {"2023": {"B": 1, "A": 2}, "2022": {"Z": 1}},
		"false": {"2023": {"C": 3, "A": 4}}
	}`)
	if got := SpecialEdSubjects(metric, 2023); strings.Join(got, ",") != "A,B,C" {
		t.Fatalf("unexpected subjects: %v", got)
	}
	if got := SpecialEdSubjects(nil, 2023); len(got) != 0 {
		t.Fatalf("expected no subjects, got %v", got)
	}
}

func TestRegistry(t *testing.T) {
	for _, kind := range Kinds() {
		fn, ok := Lookup(kind)
		if !ok || fn == nil {
			t.Fatalf("kind %s not resolvable", kind)
		}
		if _, ok := fn(nil, 2023, "", Options{Subject: "x"}).(charts.Placeholder); !ok {
			t.Fatalf("kind %s should degrade to a placeholder on a missing metric", kind)
		}
	}
	if _, ok := Lookup("histogram"); ok {
		t.Fatal("unexpected kind registered")
	}
	if _, ok := LevelSet("ela"); !ok {
		t.Fatal("expected ela level set")
	}
}
