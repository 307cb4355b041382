package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	dash "github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/dashboard"
	"github.com/mwiater/edudash/internal/logging"
	"github.com/mwiater/edudash/internal/util"
)

// Image is a slot rendered to PNG bytes. Placeholder slots carry only Text.
type Image struct {
	Slot   string
	Data   []byte
	Text   string
	closed bool
}

// Closed reports whether the manager has destroyed this image.
func (i *Image) Closed() bool { return i.closed }

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// PNG is a charts.Library that renders each slot with go-chart.
type PNG struct {
	width, height int
}

// NewPNG returns a library whose images are width x height pixels.
func NewPNG(width, height int) *PNG {
	return &PNG{width: width, height: height}
}

// Create renders d immediately. Render errors are returned to the manager,
// which leaves the slot unbound.
func (p *PNG) Create(slotID string, d dash.Drawable) (dash.Handle, error) {
	switch v := d.(type) {
	case *dash.Spec:
		var r renderer
		switch v.Kind {
		case dash.KindBar:
			bc := p.bar(v)
			r = &bc
		case dash.KindPie, dash.KindDoughnut:
			pc, err := p.pie(v)
			if err != nil {
				return nil, err
			}
			r = pc
		default:
			return nil, fmt.Errorf("unsupported chart kind %q", v.Kind)
		}
		var buf bytes.Buffer
		if err := r.Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render %s: %w", slotID, err)
		}
		return &Image{Slot: slotID, Data: buf.Bytes()}, nil
	case dash.Placeholder:
		return &Image{Slot: slotID, Text: v.Text}, nil
	default:
		return nil, fmt.Errorf("unsupported drawable %T", d)
	}
}

// Destroy releases the rendered bytes.
func (p *PNG) Destroy(_ string, h dash.Handle) {
	if img, ok := h.(*Image); ok {
		img.Data = nil
		img.closed = true
	}
}

func fill(c dash.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(c.A * 255)}
}

// bar flattens grouped series into one bar per label and series.
func (p *PNG) bar(s *dash.Spec) chart.BarChart {
	grouped := len(s.Series) > 1
	var bars []chart.Value
	top := 0.0
	for i, label := range s.Labels {
		for _, series := range s.Series {
			if i >= len(series.Values) {
				continue
			}
			name := label
			if grouped {
				name = label + " / " + series.Name
			}
			c := series.Color(i)
			bars = append(bars, chart.Value{
				Label: name,
				Value: series.Values[i],
				Style: chart.Style{FillColor: fill(c), StrokeColor: fill(c.Opaque())},
			})
			top = max(top, series.Values[i])
		}
	}
	if top <= 0 {
		top = 1
	}
	const spacing = 6
	width := 50
	if n := len(bars); n > 0 {
		width = min(width, max(4, (p.width-120)/n-spacing))
	}
	return chart.BarChart{
		Title:      s.Title,
		Width:      p.width,
		Height:     p.height,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
		Bars:       bars,
	}
}

// pie drops zero slices; an all-zero chart cannot be drawn.
func (p *PNG) pie(s *dash.Spec) (*chart.PieChart, error) {
	var values []chart.Value
	if len(s.Series) > 0 {
		series := s.Series[0]
		for i, label := range s.Labels {
			if i >= len(series.Values) || series.Values[i] <= 0 {
				continue
			}
			values = append(values, chart.Value{
				Label: label,
				Value: series.Values[i],
				Style: chart.Style{FillColor: fill(series.Color(i).Opaque())},
			})
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: no positive values", s.Title)
	}
	return &chart.PieChart{
		Title:  s.Title,
		Width:  p.width,
		Height: p.height,
		Values: values,
	}, nil
}

// WritePNGs writes one <slot>.png into dir for every live image of ctrl and
// returns the written paths plus the placeholder slots that got no file.
func WritePNGs(dir string, ctrl *dashboard.Controller) (written, skipped []string, err error) {
	for _, slot := range layoutSlots(ctrl.Layout()) {
		h, ok := ctrl.Charts().Handle(slot)
		if !ok {
			continue
		}
		img, ok := h.(*Image)
		if !ok {
			continue
		}
		if len(img.Data) == 0 {
			skipped = append(skipped, slot)
			continue
		}
		path := filepath.Join(dir, slot+".png")
		if err := util.WriteFile(path, img.Data); err != nil {
			return written, skipped, fmt.Errorf("write %s: %w", path, err)
		}
		logging.LogDebug("[EXPORT] wrote %s (%d bytes)", path, len(img.Data))
		written = append(written, path)
	}
	if len(written) == 0 && len(skipped) == 0 {
		return nil, nil, ErrNothingDrawn
	}
	return written, skipped, nil
}
