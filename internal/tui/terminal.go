package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/util"
)

// Chart is a slot drawn as terminal text.
type Chart struct {
	Slot   string
	Text   string
	closed bool
}

// Closed reports whether the manager has destroyed this chart.
func (c *Chart) Closed() bool { return c.closed }

// Terminal is a charts.Library that draws into strings. Only slots it was
// given a surface for can be drawn.
type Terminal struct {
	width    int
	surfaces map[string]bool
	live     int
}

// NewTerminal prepares surfaces for the given slot ids.
func NewTerminal(width int, slots ...string) *Terminal {
	t := &Terminal{width: width, surfaces: make(map[string]bool, len(slots))}
	for _, s := range slots {
		t.surfaces[s] = true
	}
	return t
}

// SetWidth changes the width used by subsequent draws.
func (t *Terminal) SetWidth(width int) {
	t.width = width
}

// Live is the number of charts not yet destroyed.
func (t *Terminal) Live() int { return t.live }

var (
	chartTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	axisStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	placeholderStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")).Padding(1, 2)
	chartFrameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

const (
	minBarWidth       = 10
	labelColumnWidth  = 28
	seriesColumnWidth = 18
)

func (t *Terminal) Create(slotID string, d charts.Drawable) (charts.Handle, error) {
	if !t.surfaces[slotID] {
		return nil, charts.ErrNoSurface
	}
	var body string
	switch v := d.(type) {
	case *charts.Spec:
		body = t.drawSpec(v)
	case charts.Placeholder:
		body = placeholderStyle.Render(util.WrapToWidth(v.Text, t.innerWidth()))
	default:
		return nil, fmt.Errorf("terminal: cannot draw %T", d)
	}
	t.live++
	return &Chart{Slot: slotID, Text: chartFrameStyle.Render(body)}, nil
}

func (t *Terminal) Destroy(_ string, h charts.Handle) {
	if c, ok := h.(*Chart); ok && !c.closed {
		c.closed = true
		t.live--
	}
}

func (t *Terminal) innerWidth() int {
	w := t.width - 4
	if w < minBarWidth+labelColumnWidth {
		w = minBarWidth + labelColumnWidth
	}
	return w
}

func (t *Terminal) drawSpec(s *charts.Spec) string {
	var b strings.Builder
	b.WriteString(chartTitleStyle.Render(s.Title))
	b.WriteString("\n")
	switch s.Kind {
	case charts.KindBar:
		t.drawBars(&b, s)
	default:
		t.drawProportions(&b, s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// drawBars prints one row per label and series, scaled to the largest value.
func (t *Terminal) drawBars(b *strings.Builder, s *charts.Spec) {
	if s.YAxis != "" {
		b.WriteString(axisStyle.Render(s.YAxis))
		b.WriteString("\n")
	}
	maxValue := 0.0
	for _, series := range s.Series {
		for _, v := range series.Values {
			maxValue = math.Max(maxValue, v)
		}
	}
	barSpace := t.innerWidth() - labelColumnWidth - seriesColumnWidth - 10
	if barSpace < minBarWidth {
		barSpace = minBarWidth
	}
	for i, label := range s.Labels {
		for j, series := range s.Series {
			name := label
			if j > 0 {
				name = ""
			}
			v := 0.0
			if i < len(series.Values) {
				v = series.Values[i]
			}
			fmt.Fprintf(b, "%-*s %-*s %s %s\n",
				labelColumnWidth, util.TruncateRunes(name, labelColumnWidth),
				seriesColumnWidth, util.TruncateRunes(series.Name, seriesColumnWidth),
				bar(v, maxValue, barSpace, series.Color(i)), util.FormatNumber(v))
		}
	}
	if s.XAxis != "" {
		b.WriteString(axisStyle.Render(s.XAxis))
		b.WriteString("\n")
	}
}

// drawProportions prints each label's share of the first series.
func (t *Terminal) drawProportions(b *strings.Builder, s *charts.Spec) {
	if len(s.Series) == 0 {
		return
	}
	series := s.Series[0]
	total := 0.0
	for _, v := range series.Values {
		total += v
	}
	barSpace := t.innerWidth() - labelColumnWidth - 20
	if barSpace < minBarWidth {
		barSpace = minBarWidth
	}
	for i, label := range s.Labels {
		v := 0.0
		if i < len(series.Values) {
			v = series.Values[i]
		}
		share := 0.0
		if total > 0 {
			share = v / total
		}
		fmt.Fprintf(b, "%-*s %s %s (%.1f%%)\n",
			labelColumnWidth, util.TruncateRunes(label, labelColumnWidth),
			bar(share, 1, barSpace, series.Color(i)), util.FormatNumber(v), share*100)
	}
}

func bar(v, maxValue float64, width int, c charts.Color) string {
	n := 0
	if maxValue > 0 && v > 0 {
		n = int(math.Round(v / maxValue * float64(width)))
		if n == 0 {
			n = 1
		}
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	return style.Render(strings.Repeat("█", n)) + strings.Repeat(" ", width-n)
}
