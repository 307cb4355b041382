// Package tui is the interactive terminal dashboard: an upload form, the
// results header, the tab bar and the charts of the active tab.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/edudash/internal/dashboard"
	"github.com/mwiater/edudash/internal/results"
	"github.com/mwiater/edudash/internal/upload"
)

// Uploader sends one file to the analysis server.
type Uploader interface {
	Upload(ctx context.Context, path string, year int) (*upload.Response, error)
}

// focusArea is the part of the screen receiving key presses.
type focusArea int

const (
	focusForm focusArea = iota
	focusTabs
	focusFilter
)

const (
	fieldFile = iota
	fieldYear
)

type model struct {
	ctx        context.Context
	ctrl       *dashboard.Controller
	term       *Terminal
	uploader   Uploader
	inputs     []textinput.Model
	field      int
	spinner    spinner.Model
	filterList list.Model
	viewport   viewport.Model
	focus      focusArea
	width      int
	height     int
	started    time.Time
}

// subjectItem is one entry of the filter dropdown.
type subjectItem string

func (i subjectItem) Title() string       { return string(i) }
func (i subjectItem) Description() string { return "" }
func (i subjectItem) FilterValue() string { return string(i) }

// uploadDoneMsg carries the outcome of the one outstanding upload.
type uploadDoneMsg struct {
	resp *upload.Response
	err  error
}

func newModel(ctx context.Context, ctrl *dashboard.Controller, term *Terminal, uploader Uploader) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	file := textinput.New()
	file.Prompt = "CSV file: "
	file.Placeholder = "path/to/scores.csv"
	file.Focus()

	year := textinput.New()
	year.Prompt = "Academic year: "
	year.Placeholder = strconv.Itoa(time.Now().Year())
	year.CharLimit = 4

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	filterList := list.New(nil, delegate, 0, 0)
	filterList.SetShowHelp(false)
	filterList.SetFilteringEnabled(false)

	return &model{
		ctx:        ctx,
		ctrl:       ctrl,
		term:       term,
		uploader:   uploader,
		inputs:     []textinput.Model{file, year},
		spinner:    s,
		filterList: filterList,
		viewport:   viewport.New(80, 20),
	}
}

func uploadCmd(ctx context.Context, uploader Uploader, path string, year int) tea.Cmd {
	return func() tea.Msg {
		resp, err := uploader.Upload(ctx, path, year)
		return uploadDoneMsg{resp: resp, err: err}
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resized := msg.Width != m.width
		m.width, m.height = msg.Width, msg.Height
		m.term.SetWidth(msg.Width)
		if resized {
			_ = m.ctrl.Redraw()
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-12, 5)
		m.filterList.SetSize(msg.Width/2, max(msg.Height-12, 5))
		m.redrawViewport()
		return m, nil

	case uploadDoneMsg:
		var r *results.AggregateResult
		if msg.resp != nil {
			r = msg.resp.Result
		}
		_ = m.ctrl.Dispatch(dashboard.CompleteUpload{Result: r, Err: msg.err})
		if m.ctrl.ResultsVisible() {
			m.setFocus(focusTabs)
		}
		m.redrawViewport()
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.Uploading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusForm:
			return m, m.updateForm(msg)
		case focusTabs:
			return m, m.updateTabs(msg)
		case focusFilter:
			return m, m.updateFilter(msg)
		}
	}

	if m.focus == focusForm {
		var cmd tea.Cmd
		m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.inputs[m.field].Blur()
		m.field = (m.field + 1) % len(m.inputs)
		return m.inputs[m.field].Focus()
	case "esc":
		if m.ctrl.ResultsVisible() {
			m.setFocus(focusTabs)
		}
		return nil
	case "enter":
		return m.submit()
	}
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return cmd
}

// submit starts an upload unless one is running or the form is invalid.
func (m *model) submit() tea.Cmd {
	path := strings.TrimSpace(m.inputs[fieldFile].Value())
	year, err := m.ctrl.BeginUpload(path, m.inputs[fieldYear].Value())
	if err != nil {
		m.redrawViewport()
		return nil
	}
	m.started = time.Now()
	return tea.Batch(m.spinner.Tick, uploadCmd(m.ctx, m.uploader, path, year))
}

func (m *model) updateTabs(msg tea.KeyMsg) tea.Cmd {
	tabs := m.ctrl.Layout().Tabs
	switch key := msg.String(); key {
	case "q":
		return tea.Quit
	case "u", "esc":
		m.setFocus(focusForm)
		return nil
	case "left", "h":
		m.activate(m.activeIndex() - 1)
	case "right", "l":
		m.activate(m.activeIndex() + 1)
	case "f":
		m.openFilter()
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(tabs) && n <= 9 {
			m.activate(n - 1)
			return nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.setFocus(focusTabs)
		return nil
	case "enter":
		if it, ok := m.filterList.SelectedItem().(subjectItem); ok {
			_ = m.ctrl.Dispatch(dashboard.ChangeFilter{Value: string(it)})
		}
		m.setFocus(focusTabs)
		m.redrawViewport()
		return nil
	}
	var cmd tea.Cmd
	m.filterList, cmd = m.filterList.Update(msg)
	return cmd
}

// activate wraps around both ends of the tab bar.
func (m *model) activate(i int) {
	tabs := m.ctrl.Layout().Tabs
	if len(tabs) == 0 {
		return
	}
	i = (i + len(tabs)) % len(tabs)
	if err := m.ctrl.Dispatch(dashboard.ActivateTab{TabID: tabs[i].ID}); err != nil {
		return
	}
	m.viewport.GotoTop()
	m.redrawViewport()
}

func (m *model) activeIndex() int {
	for i, tab := range m.ctrl.Layout().Tabs {
		if tab.ID == m.ctrl.Active() {
			return i
		}
	}
	return 0
}

// openFilter shows the subject list when the active tab owns the filter.
func (m *model) openFilter() {
	f := m.ctrl.Filter()
	if f.TabID == "" || f.TabID != m.ctrl.Active() || len(f.Options) == 0 {
		return
	}
	items := make([]list.Item, len(f.Options))
	selected := 0
	for i, o := range f.Options {
		items[i] = subjectItem(o)
		if o == f.Selected {
			selected = i
		}
	}
	m.filterList.SetItems(items)
	m.filterList.Select(selected)
	m.filterList.Title = f.Label
	m.setFocus(focusFilter)
}

func (m *model) setFocus(f focusArea) {
	m.focus = f
	if f == focusForm {
		m.inputs[m.field].Focus()
		return
	}
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// redrawViewport lays out the live charts of the active tab.
func (m *model) redrawViewport() {
	tab, ok := m.ctrl.Layout().Tab(m.ctrl.Active())
	if !ok || !m.ctrl.ResultsVisible() {
		m.viewport.SetContent("")
		return
	}
	var blocks []string
	for _, def := range tab.Charts {
		h, ok := m.ctrl.Charts().Handle(def.Slot)
		if !ok {
			continue
		}
		if c, ok := h.(*Chart); ok {
			blocks = append(blocks, c.Text)
		}
	}
	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

var (
	titleStyle     = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("250"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Background(lipgloss.Color("205")).Foreground(lipgloss.Color("0"))
	headerStyle    = lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Student Assessment Dashboard") + "\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	if m.ctrl.Uploading() {
		fmt.Fprintf(&b, "\n%s Analyzing file... %.1fs\n", m.spinner.View(), time.Since(m.started).Seconds())
	} else if n := m.ctrl.Notice(); n.Text != "" {
		b.WriteString("\n" + noticeStyle(n.Level).Render(n.Text) + "\n")
	}

	if m.ctrl.ResultsVisible() {
		if r, ok := m.ctrl.Result(); ok {
			b.WriteString("\n" + lipgloss.JoinHorizontal(lipgloss.Top,
				headerStyle.Render(fmt.Sprintf("Year: %d", r.DatasetYear)),
				headerStyle.MarginLeft(1).Render("File: "+r.FileName),
				headerStyle.MarginLeft(1).Render(fmt.Sprintf("Records: %d", r.TotalRecordsProcessed)),
			) + "\n")
		}
		b.WriteString(m.tabBar() + "\n")
		if m.focus == focusFilter {
			b.WriteString(m.filterList.View())
		} else {
			b.WriteString(m.viewport.View())
		}
	}
	b.WriteString("\n" + helpStyle.Render(m.help()))
	return b.String()
}

func noticeStyle(l results.Level) lipgloss.Style {
	switch l {
	case results.LevelSuccess:
		return successStyle
	case results.LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}

func (m *model) tabBar() string {
	var parts []string
	for i, tab := range m.ctrl.Layout().Tabs {
		label := tab.Title
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, tab.Title)
		}
		if tab.ID == m.ctrl.Active() {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *model) help() string {
	switch m.focus {
	case focusTabs:
		h := "←/→ or 1-9 switch tab • ↑/↓ scroll • u upload • q quit"
		if f := m.ctrl.Filter(); f.TabID != "" && f.TabID == m.ctrl.Active() {
			h = "f " + strings.ToLower(f.Label) + " • " + h
		}
		return h
	case focusFilter:
		return "enter select • esc back"
	default:
		return "tab next field • enter upload • esc results • ctrl+c quit"
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, layout dashboard.Layout, uploader Uploader) error {
	var slots []string
	for _, tab := range layout.Tabs {
		for _, c := range tab.Charts {
			slots = append(slots, c.Slot)
		}
	}
	term := NewTerminal(80, slots...)
	ctrl, err := dashboard.NewController(layout, term)
	if err != nil {
		return err
	}
	m := newModel(ctx, ctrl, term, uploader)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
