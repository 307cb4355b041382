// Package export draws dashboard slots with file-oriented chart libraries:
// go-echarts for a single HTML page and go-chart for one PNG per slot.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	dash "github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/dashboard"
)

// PageTitle is the <title> of the exported HTML page.
const PageTitle = "Student Assessment Dashboard"

// ErrNothingDrawn is returned by the writers when no slot holds a chart.
var ErrNothingDrawn = errors.New("no charts drawn")

// HTML is a charts.Library that builds go-echarts charts in memory.
type HTML struct {
	width, height int
	live          map[string]components.Charter
}

// NewHTML returns a library whose charts are width x height pixels.
func NewHTML(width, height int) *HTML {
	return &HTML{width: width, height: height, live: make(map[string]components.Charter)}
}

// Create builds the echarts object for d. A placeholder becomes an empty
// chart titled with the placeholder text.
func (h *HTML) Create(slotID string, d dash.Drawable) (dash.Handle, error) {
	var c components.Charter
	switch v := d.(type) {
	case *dash.Spec:
		switch v.Kind {
		case dash.KindBar:
			c = h.bar(v)
		case dash.KindPie, dash.KindDoughnut:
			c = h.pie(v)
		default:
			return nil, fmt.Errorf("unsupported chart kind %q", v.Kind)
		}
	case dash.Placeholder:
		bar := charts.NewBar()
		bar.SetGlobalOptions(h.init(), charts.WithTitleOpts(opts.Title{Title: v.Text}))
		c = bar
	default:
		return nil, fmt.Errorf("unsupported drawable %T", d)
	}
	h.live[slotID] = c
	return c, nil
}

// Destroy forgets the chart bound to slotID.
func (h *HTML) Destroy(slotID string, _ dash.Handle) {
	delete(h.live, slotID)
}

// Live is the number of charts not yet destroyed.
func (h *HTML) Live() int { return len(h.live) }

func (h *HTML) init() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: PageTitle,
		Width:     strconv.Itoa(h.width) + "px",
		Height:    strconv.Itoa(h.height) + "px",
	})
}

func (h *HTML) bar(s *dash.Spec) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		h.init(),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XAxis}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.YAxis}),
	)
	bar.SetXAxis(s.Labels)
	for _, series := range s.Series {
		data := make([]opts.BarData, len(series.Values))
		for i, v := range series.Values {
			data[i] = opts.BarData{
				Value:     v,
				ItemStyle: &opts.ItemStyle{Color: series.Color(i).RGBA()},
			}
		}
		bar.AddSeries(series.Name, data)
	}
	return bar
}

func (h *HTML) pie(s *dash.Spec) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		h.init(),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
	)
	if len(s.Series) == 0 {
		return pie
	}
	series := s.Series[0]
	data := make([]opts.PieData, 0, len(s.Labels))
	for i, label := range s.Labels {
		if i >= len(series.Values) {
			break
		}
		data = append(data, opts.PieData{
			Name:      label,
			Value:     series.Values[i],
			ItemStyle: &opts.ItemStyle{Color: series.Color(i).RGBA()},
		})
	}
	radius := []string{"0%", "70%"}
	if s.Kind == dash.KindDoughnut {
		radius = []string{"40%", "70%"}
	}
	pie.AddSeries(series.Name, data).
		SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	return pie
}

// WritePage renders every live chart of ctrl onto one page, in layout order.
func WritePage(w io.Writer, ctrl *dashboard.Controller) (int, error) {
	page := components.NewPage()
	page.PageTitle = PageTitle
	n := 0
	for _, slot := range layoutSlots(ctrl.Layout()) {
		h, ok := ctrl.Charts().Handle(slot)
		if !ok {
			continue
		}
		c, ok := h.(components.Charter)
		if !ok {
			continue
		}
		page.AddCharts(c)
		n++
	}
	if n == 0 {
		return 0, ErrNothingDrawn
	}
	return n, page.Render(w)
}

func layoutSlots(l dashboard.Layout) []string {
	var slots []string
	for _, tab := range l.Tabs {
		for _, def := range tab.Charts {
			slots = append(slots, def.Slot)
		}
	}
	return slots
}
