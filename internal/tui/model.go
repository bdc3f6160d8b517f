// Package tui is the terminal surface of the savings dashboard. Key presses
// become selection events dispatched to a dashboard.Session; the charts are
// drawn with lipgloss bars and an ntcharts line chart.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"savingsdash/internal/chart"
	"savingsdash/internal/dashboard"
	"savingsdash/internal/dataset"
	"savingsdash/internal/log"
	"savingsdash/internal/selection"
)

// DefaultBreakpoint is the terminal width, in columns, below which charts
// use the narrow layout.
const DefaultBreakpoint = 100

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#36A2EB"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 2)
)

// Config configures the terminal dashboard.
type Config struct {
	Currency   string
	Breakpoint int
	Logger     *log.Logger
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	session  *dashboard.Session
	bars     *BarSurface
	line     *LineSurface
	currency string
	view     dashboard.View
	cursor   int
	width    int
	height   int
	status   string
	logger   *log.Logger
}

// New builds a model over store and performs the first render.
func New(store *dataset.Store, cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	bp := cfg.Breakpoint
	if bp <= 0 {
		bp = DefaultBreakpoint
	}
	m := Model{
		bars:     &BarSurface{},
		line:     &LineSurface{},
		currency: cfg.Currency,
		logger:   logger.WithComponent(log.ComponentTUI),
	}
	m.session = dashboard.New(store, dashboard.Config{
		Currency: cfg.Currency,
		Viewport: chart.Viewport{Breakpoint: bp},
		Category: m.bars,
		Timeline: m.line,
		Logger:   logger,
	})
	m.view = m.session.Start()
	if store != nil && store.Degraded() {
		m.status = "Some data could not be loaded."
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.session.Resize(msg.Width) {
			m.logger.Debug("Charts rebuilt for terminal width",
				log.FieldOperation, log.OpResize,
				log.FieldWidth, msg.Width)
		}
		return m, nil
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filters := m.session.Filters()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(filters)-1 {
			m.cursor++
		}
	case "v":
		m = m.dispatch(selection.SetModifier{Active: !m.view.Modifier})
	case "a":
		m = m.dispatch(selection.SelectAll{})
	case " ", "enter":
		if len(filters) == 0 {
			return m, nil
		}
		f := filters[m.cursor]
		if m.view.Modifier {
			m = m.dispatch(selection.RangeSelect{Key: f.Key, Index: f.Index})
		} else {
			m = m.dispatch(selection.Toggle{Key: f.Key, Index: f.Index})
		}
	}
	return m, nil
}

func (m Model) dispatch(ev selection.Event) Model {
	view, err := m.session.Dispatch(ev)
	m.view = view
	if err != nil {
		m.status = err.Error()
		m.logger.Warn("Selection event rejected",
			log.FieldOperation, log.OpDispatch,
			log.FieldEvent, ev.Name(),
			log.FieldError, err.Error())
		return m
	}
	m.status = ""
	return m
}

// Cursor is the highlighted filter position.
func (m Model) Cursor() int { return m.cursor }

// Current returns the dashboard view last computed.
func (m Model) Current() dashboard.View { return m.view }

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Savings"))
	sb.WriteString("  ")
	if m.view.Selection.All {
		sb.WriteString(mutedStyle.Render("all companies"))
	} else {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("%d selected", len(m.view.Selection.Keys))))
	}
	sb.WriteString("\n\n")

	cards := make([]string, 0, len(m.view.Cards))
	for _, c := range m.view.Cards {
		body := mutedStyle.Render(c.Title) + "\n" + titleStyle.Render(c.Value)
		if c.Subtitle != "" {
			body += "\n" + mutedStyle.Render(c.Subtitle)
		}
		cards = append(cards, cardStyle.Render(body))
	}
	if m.session.Narrow() {
		sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	} else {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.renderFilters())
	sb.WriteString("\n")
	if detail := m.cursorDetail(); detail != "" {
		sb.WriteString(mutedStyle.Render(detail))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.bars.Render(width, m.currency))
	sb.WriteString("\n\n")
	sb.WriteString(m.line.Render(width - 2))
	sb.WriteString("\n")
	if detail := m.latestPoint(); detail != "" {
		sb.WriteString(mutedStyle.Render(detail))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString(errorStyle.Render(m.status))
		sb.WriteString("\n")
	}
	modifier := "off"
	if m.view.Modifier {
		modifier = "on"
	}
	sb.WriteString(footerStyle.Render(fmt.Sprintf("j/k move · space toggle · v range (%s) · a all · q quit", modifier)))
	return sb.String()
}

func (m Model) renderFilters() string {
	filters := m.session.Filters()
	if len(filters) == 0 {
		return mutedStyle.Render("No companies.")
	}
	lines := make([]string, len(filters))
	for i, f := range filters {
		mark := "[ ]"
		if f.Selected {
			mark = selectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, f.Key)
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// cursorDetail is the tooltip of the highlighted entity.
func (m Model) cursorDetail() string {
	store := m.session.Store()
	key, ok := store.KeyAt(m.cursor)
	if !ok {
		return ""
	}
	e, ok := store.Lookup(key)
	if !ok {
		return ""
	}
	return strings.Join(m.session.Tooltip(key, e.Savings), " · ")
}

// latestPoint is the tooltip of the last month on the timeline.
func (m Model) latestPoint() string {
	if len(m.view.Timeline) == 0 {
		return ""
	}
	p := m.view.Timeline[len(m.view.Timeline)-1]
	return p.Month + " · " + strings.Join(chart.PointTooltip(p, m.currency), " · ")
}
