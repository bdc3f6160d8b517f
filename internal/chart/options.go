package chart

// DefaultBreakpoint is the viewport width below which the layout is narrow.
const DefaultBreakpoint = 768

// Palette is cycled over the displayed category positions.
var Palette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#50AF95", "#7E57C2", "#2196F3", "#F44336",
	"#4CAF50", "#FF5722", "#9C27B0", "#673AB7", "#3F51B5",
}

const (
	LegendRight  = "right"
	LegendBottom = "bottom"
	LegendTop    = "top"
)

// Options configures a chart at initialization. Lookup is never serialized;
// surfaces that need tooltips hold on to it. Tooltips carries the same detail
// precomputed per label for surfaces that cannot call back.
type Options struct {
	Label          string              `json:"label"`
	LegendPosition string              `json:"legend_position"`
	FontSize       int                 `json:"font_size"`
	LegendBoxWidth int                 `json:"legend_box_width"`
	TickRotation   int                 `json:"tick_rotation"`
	Palette        []string            `json:"palette,omitempty"`
	Tooltips       map[string][]string `json:"tooltips,omitempty"`
	Lookup         Lookup              `json:"-"`
}

// Viewport decides between the wide and narrow layouts.
type Viewport struct {
	Width      int
	Breakpoint int
}

// Narrow reports whether the width is known and below the breakpoint.
func (v Viewport) Narrow() bool {
	bp := v.Breakpoint
	if bp <= 0 {
		bp = DefaultBreakpoint
	}
	return v.Width > 0 && v.Width < bp
}

// OptionsFor returns the layout options of kind for a narrow or wide viewport.
func OptionsFor(kind Kind, narrow bool, lookup Lookup) Options {
	opts := Options{
		LegendPosition: LegendRight,
		FontSize:       12,
		LegendBoxWidth: 15,
		Lookup:         lookup,
	}
	if narrow {
		opts.LegendPosition = LegendBottom
		opts.FontSize = 10
		opts.LegendBoxWidth = 10
	}
	switch kind {
	case KindCategory:
		opts.Label = "Savings by company"
		opts.Palette = Palette
	case KindTimeline:
		opts.Label = "Monthly savings"
		opts.LegendPosition = LegendTop
		if narrow {
			opts.TickRotation = 45
		}
	}
	return opts
}

// Colors assigns palette colors to n displayed positions. Color follows
// position, so an entity can change color when the filter changes.
func Colors(palette []string, n int) []string {
	if len(palette) == 0 || n <= 0 {
		return nil
	}
	colors := make([]string, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}
