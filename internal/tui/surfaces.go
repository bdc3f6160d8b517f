package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"

	"savingsdash/internal/chart"
	"savingsdash/internal/core"
)

const (
	lineChartHeight = 10
	minChartWidth   = 20
	maxLabelWidth   = 18
)

// BarSurface draws the category series as horizontal lipgloss bars.
type BarSurface struct {
	labels  []string
	values  []float64
	opts    chart.Options
	inits   int
	updates int
}

func (b *BarSurface) Initialize(kind chart.Kind, labels []string, values []float64, opts chart.Options) error {
	b.labels, b.values, b.opts = slices.Clone(labels), slices.Clone(values), opts
	b.inits++
	return nil
}

func (b *BarSurface) Update(labels []string, values []float64) error {
	if b.inits == 0 {
		return fmt.Errorf("bar chart: update before initialize")
	}
	b.labels, b.values = slices.Clone(labels), slices.Clone(values)
	b.updates++
	return nil
}

// Render draws one bar per label within width columns.
func (b *BarSurface) Render(width int, currency string) string {
	if len(b.labels) == 0 {
		return mutedStyle.Render("No savings to chart.")
	}

	labelWidth := 0
	for _, l := range b.labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	labelWidth = min(labelWidth, maxLabelWidth)

	maxVal := slices.Max(b.values)
	if maxVal <= 0 {
		maxVal = 1
	}
	barSpace := max(width-labelWidth-16, 4)
	colors := chart.Colors(b.opts.Palette, len(b.labels))

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(b.opts.Label))
	sb.WriteString("\n")
	for i, label := range b.labels {
		n := int(b.values[i] / maxVal * float64(barSpace))
		if b.values[i] > 0 && n == 0 {
			n = 1
		}
		bar := strings.Repeat("█", n)
		if len(colors) > 0 {
			bar = lipgloss.NewStyle().Foreground(lipgloss.Color(colors[i])).Render(bar)
		}
		fmt.Fprintf(&sb, "%-*s %s %s\n",
			labelWidth, truncate(label, labelWidth),
			bar,
			mutedStyle.Render(core.WithCurrency(core.Fixed(b.values[i], 2), currency)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// LineSurface draws the timeline series as an ntcharts braille line chart.
type LineSurface struct {
	labels  []string
	values  []float64
	opts    chart.Options
	inits   int
	updates int
}

func (l *LineSurface) Initialize(kind chart.Kind, labels []string, values []float64, opts chart.Options) error {
	l.labels, l.values, l.opts = slices.Clone(labels), slices.Clone(values), opts
	l.inits++
	return nil
}

func (l *LineSurface) Update(labels []string, values []float64) error {
	if l.inits == 0 {
		return fmt.Errorf("line chart: update before initialize")
	}
	l.labels, l.values = slices.Clone(labels), slices.Clone(values)
	l.updates++
	return nil
}

// Render draws the series within width columns. Month labels are
// "YYYY-MM"; unparsable labels are spaced one month apart.
func (l *LineSurface) Render(width int) string {
	if len(l.labels) == 0 {
		return mutedStyle.Render("No timeline data.")
	}
	width = max(width, minChartWidth)

	times := monthTimes(l.labels)
	start, end := times[0], times[len(times)-1]
	if !end.After(start) {
		end = start.AddDate(0, 1, 0)
	}
	maxVal := slices.Max(l.values)
	if maxVal <= 0 {
		maxVal = 1
	}

	c := tslc.New(width, lineChartHeight)
	c.SetStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(chart.Palette[1])))
	c.AxisStyle = mutedStyle
	c.LabelStyle = mutedStyle
	c.SetTimeRange(start, end)
	c.SetViewTimeRange(start, end)
	c.SetYRange(0, maxVal)
	c.SetViewYRange(0, maxVal)
	for i, t := range times {
		c.Push(tslc.TimePoint{Time: t, Value: l.values[i]})
	}
	c.DrawBraille()

	return titleStyle.Render(l.opts.Label) + "\n" + c.View()
}

func monthTimes(labels []string) []time.Time {
	out := make([]time.Time, len(labels))
	var prev time.Time
	for i, label := range labels {
		t, err := time.Parse("2006-01", label)
		if err != nil || (i > 0 && !t.After(prev)) {
			if i == 0 {
				t = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
			} else {
				t = prev.AddDate(0, 1, 0)
			}
		}
		out[i] = t
		prev = t
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
