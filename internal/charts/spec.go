// Package charts describes what a chart slot should show and owns the live
// chart handles bound to slots.
package charts

// Kind is the chart shape a drawing library should produce.
type Kind string

const (
	// KindBar draws one bar per label and series; several series are grouped.
	KindBar Kind = "bar"
	// KindDoughnut draws a proportion ring over the labels of the first series.
	KindDoughnut Kind = "doughnut"
	// KindPie draws a filled proportion chart over the labels of the first series.
	KindPie Kind = "pie"
)

// Series is one named run of values aligned with Spec.Labels. Colors holds a
// single color for bar series, or one color per label for proportion charts.
type Series struct {
	Name   string
	Values []float64
	Colors []Color
}

// Color returns the color to use for the value at index i.
func (s Series) Color(i int) Color {
	if len(s.Colors) == 0 {
		return palette[0]
	}
	if len(s.Colors) == 1 {
		return s.Colors[0]
	}
	return s.Colors[i%len(s.Colors)]
}

// Spec is a complete, library-independent chart description.
type Spec struct {
	Kind        Kind
	Title       string
	Labels      []string
	Series      []Series
	XAxis       string
	YAxis       string
	BeginAtZero bool
	ShowLegend  bool
}

// Placeholder is drawn as plain text in a slot whose metric has no data.
type Placeholder struct {
	Text string
}

// Drawable is either a *Spec or a Placeholder.
type Drawable interface {
	drawable()
}

func (*Spec) drawable()       {}
func (Placeholder) drawable() {}

// Describe returns a one-line summary used in logs and command output.
func Describe(d Drawable) string {
	switch v := d.(type) {
	case *Spec:
		return string(v.Kind) + ": " + v.Title
	case Placeholder:
		return "placeholder: " + v.Text
	default:
		return "nothing"
	}
}
