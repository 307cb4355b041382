// Package dashboard owns the view state of the results panel: which payload
// is current, which tabs have been drawn for it, the subject filter, and the
// upload trigger.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/mwiater/edudash/internal/charts"
	"github.com/mwiater/edudash/internal/logging"
	"github.com/mwiater/edudash/internal/renderers"
	"github.com/mwiater/edudash/internal/results"
	"github.com/mwiater/edudash/internal/upload"
)

var (
	// ErrNoResults is returned by Activate before any payload was ingested.
	ErrNoResults = errors.New("no results loaded")
	// ErrUnknownTab is returned by Activate for an id the layout lacks.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrUploadInFlight is returned by BeginUpload while the trigger is disabled.
	ErrUploadInFlight = errors.New("an upload is already in progress")
)

// NoFilterOptionsMessage is drawn in the filter slot when the payload has no
// subject for the current year.
const NoFilterOptionsMessage = "No data for Special Ed comparison for year %d."

// FilterState is the dropdown bound to the layout's filter tab.
type FilterState struct {
	TabID    string
	Slot     string
	Label    string
	Options  []string
	Selected string
}

// Controller is the single owner of results, chart handles, rendered-tab
// flags and filter state. It is not safe for concurrent use.
type Controller struct {
	layout  Layout
	store   *results.Store
	charts  *charts.Manager
	active  string
	drawn   map[string]uint64
	filter  FilterState
	notice  results.Notice
	visible bool
	busy    bool
	renders int
}

// NewController validates layout and binds it to a drawing backend.
func NewController(layout Layout, lib charts.Library) (*Controller, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		layout: layout,
		store:  results.NewStore(),
		charts: charts.NewManager(lib),
		drawn:  make(map[string]uint64),
	}
	if tab, ok := layout.FilterTab(); ok {
		c.filter = FilterState{TabID: tab.ID, Slot: tab.Filter.Slot, Label: tab.Filter.Label}
	}
	return c, nil
}

// Ingest classifies r and, when it carries records, makes it the current
// payload and shows the default tab.
func (c *Controller) Ingest(r *results.AggregateResult) results.Outcome {
	outcome := results.Classify(r)
	c.notice = outcome.Notice
	logging.LogDebug("[DASHBOARD] ingest outcome=%s", outcome.Kind)
	if outcome.Kind != results.Populated {
		return outcome
	}

	gen := c.store.Replace(r)
	c.newGeneration()
	c.visible = true
	logging.LogEvent("[DASHBOARD] generation %d: %s year=%d records=%d", gen, r.FileName, r.DatasetYear, r.TotalRecordsProcessed)
	if err := c.Activate(c.layout.DefaultTab()); err != nil {
		logging.LogEvent("[DASHBOARD] activate default tab: %v", err)
	}
	return outcome
}

// newGeneration forgets every drawn tab, destroys every live chart and drops
// the filter selection. The store must already hold the new payload.
func (c *Controller) newGeneration() {
	clear(c.drawn)
	c.charts.ClearAll()
	c.active = ""
	c.filter.Options = nil
	c.filter.Selected = ""
}

// Activate makes tabID the visible tab and draws it if it has not been drawn
// for the current payload.
func (c *Controller) Activate(tabID string) error {
	if _, ok := c.store.Current(); !ok {
		return ErrNoResults
	}
	tab, ok := c.layout.Tab(tabID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tabID)
	}
	c.active = tabID
	if c.Rendered(tabID) {
		logging.LogDebug("[DASHBOARD] tab %s already drawn", tabID)
		return nil
	}
	c.renderTab(tab)
	c.drawn[tabID] = c.store.Generation()
	return nil
}

// Redraw forgets which tabs are drawn and draws the active one again. Used
// when the drawing surface changes size; other tabs redraw on activation.
func (c *Controller) Redraw() error {
	if _, ok := c.store.Current(); !ok || c.active == "" {
		return nil
	}
	tab, ok := c.layout.Tab(c.active)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTab, c.active)
	}
	clear(c.drawn)
	c.renderTab(tab)
	c.drawn[c.active] = c.store.Generation()
	return nil
}

func (c *Controller) renderTab(tab *TabDef) {
	r, _ := c.store.Current()
	if tab.Filter != nil {
		c.refreshFilterOptions(tab, r)
	}
	for _, def := range tab.Charts {
		if tab.Filter != nil && def.Slot == tab.Filter.Slot {
			c.renderFilterSlot(def, r)
			continue
		}
		c.renderChart(def, r, "")
	}
	logging.LogDebug("[DASHBOARD] tab %s drawn, %d render calls so far", tab.ID, c.renders)
}

// refreshFilterOptions recomputes the dropdown from the payload and keeps a
// recorded selection only when it is still offered.
func (c *Controller) refreshFilterOptions(tab *TabDef, r *results.AggregateResult) {
	def, _ := tab.chart(tab.Filter.Slot)
	options := renderers.SpecialEdSubjects(r.Metric(def.Metric), r.DatasetYear)
	c.filter.Options = options
	if contains(options, c.filter.Selected) {
		return
	}
	c.filter.Selected = ""
	if len(options) > 0 {
		c.filter.Selected = options[0]
	}
}

func (c *Controller) renderFilterSlot(def ChartDef, r *results.AggregateResult) {
	if len(c.filter.Options) == 0 {
		c.renders++
		c.charts.Render(def.Slot, charts.Placeholder{Text: fmt.Sprintf(NoFilterOptionsMessage, r.DatasetYear)})
		return
	}
	c.renderChart(def, r, c.filter.Selected)
}

func (c *Controller) renderChart(def ChartDef, r *results.AggregateResult, filter string) {
	fn, ok := renderers.Lookup(def.Kind)
	if !ok {
		return
	}
	c.renders++
	c.charts.Render(def.Slot, fn(r.Metric(def.Metric), r.DatasetYear, filter, def.Options()))
}

// FilterChanged records the selection and redraws only the filter slot, and
// only when its tab has been drawn for the current payload. It reports
// whether a redraw happened.
func (c *Controller) FilterChanged(value string) bool {
	if c.filter.TabID == "" {
		return false
	}
	c.filter.Selected = value
	logging.LogDebug("[DASHBOARD] filter %s = %q", c.filter.TabID, value)
	if value == "" || !c.Rendered(c.filter.TabID) {
		return false
	}
	r, _ := c.store.Current()
	tab, _ := c.layout.Tab(c.filter.TabID)
	def, _ := tab.chart(c.filter.Slot)
	c.renderChart(def, r, value)
	return true
}

// BeginUpload hides the results panel, validates the form and disables the
// trigger. The returned year is what the request must carry.
func (c *Controller) BeginUpload(path, yearText string) (int, error) {
	if c.busy {
		return 0, ErrUploadInFlight
	}
	c.notice = results.Notice{}
	c.visible = false
	year, err := upload.Validate(path, yearText)
	if err != nil {
		c.notice = results.Notice{Level: results.LevelError, Text: err.Error()}
		return 0, err
	}
	c.busy = true
	return year, nil
}

// FinishUpload ingests the response of the outstanding upload, or surfaces
// its error. The trigger is re-enabled in every case.
func (c *Controller) FinishUpload(r *results.AggregateResult, err error) results.Outcome {
	defer func() { c.busy = false }()
	if err != nil {
		outcome := results.Failure(err)
		c.notice = outcome.Notice
		logging.LogEvent("[DASHBOARD] upload failed: %v", err)
		return outcome
	}
	return c.Ingest(r)
}

// Rendered reports whether tabID has been drawn for the current payload.
func (c *Controller) Rendered(tabID string) bool {
	gen, ok := c.drawn[tabID]
	return ok && gen != 0 && gen == c.store.Generation()
}

func (c *Controller) Layout() Layout { return c.layout }
func (c *Controller) Charts() *charts.Manager { return c.charts }
func (c *Controller) Active() string { return c.active }
func (c *Controller) Filter() FilterState { return c.filter }
func (c *Controller) Notice() results.Notice { return c.notice }
func (c *Controller) ResultsVisible() bool { return c.visible }
func (c *Controller) Uploading() bool { return c.busy }
func (c *Controller) Generation() uint64 { return c.store.Generation() }
func (c *Controller) RenderCount() int { return c.renders }
func (c *Controller) Result() (*results.AggregateResult, bool) { return c.store.Current() }

// ActivateAll draws every tab of the current payload in layout order and
// leaves the default tab active.
func (c *Controller) ActivateAll() error {
	for _, tab := range c.layout.Tabs {
		if err := c.Activate(tab.ID); err != nil {
			return err
		}
	}
	return c.Activate(c.layout.DefaultTab())
}

func contains(values []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
