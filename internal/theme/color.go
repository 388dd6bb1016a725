package theme

import "strings"

// Color is the accent colour of a kanban column or an event type.
type Color string

const (
	Slate   Color = "slate"
	Red     Color = "red"
	Orange  Color = "orange"
	Amber   Color = "amber"
	Yellow  Color = "yellow"
	Lime    Color = "lime"
	Green   Color = "green"
	Emerald Color = "emerald"
	Teal    Color = "teal"
	Cyan    Color = "cyan"
	Sky     Color = "sky"
	Blue    Color = "blue"
	Indigo  Color = "indigo"
	Violet  Color = "violet"
	Purple  Color = "purple"
	Fuchsia Color = "fuchsia"
	Pink    Color = "pink"
	Rose    Color = "rose"
)

// Style holds the three shades used to draw a coloured element: a light
// tint for backgrounds, a solid swatch, and a readable text shade.
type Style struct {
	Tint   string
	Swatch string
	Text   string
}

var styles = map[Color]Style{
	Slate:   {"#f8fafc", "#64748b", "#475569"},
	Red:     {"#fef2f2", "#ef4444", "#dc2626"},
	Orange:  {"#fff7ed", "#f97316", "#ea580c"},
	Amber:   {"#fffbeb", "#f59e0b", "#d97706"},
	Yellow:  {"#fefce8", "#eab308", "#ca8a04"},
	Lime:    {"#f7fee7", "#84cc16", "#65a30d"},
	Green:   {"#f0fdf4", "#22c55e", "#16a34a"},
	Emerald: {"#ecfdf5", "#10b981", "#059669"},
	Teal:    {"#f0fdfa", "#14b8a6", "#0d9488"},
	Cyan:    {"#ecfeff", "#06b6d4", "#0891b2"},
	Sky:     {"#f0f9ff", "#0ea5e9", "#0284c7"},
	Blue:    {"#eff6ff", "#3b82f6", "#2563eb"},
	Indigo:  {"#eef2ff", "#6366f1", "#4f46e5"},
	Violet:  {"#f5f3ff", "#8b5cf6", "#7c3aed"},
	Purple:  {"#faf5ff", "#a855f7", "#9333ea"},
	Fuchsia: {"#fdf4ff", "#d946ef", "#c026d3"},
	Pink:    {"#fdf2f8", "#ec4899", "#db2777"},
	Rose:    {"#fff1f2", "#f43f5e", "#e11d48"},
}

// DefaultStyle is returned for unknown colours.
var DefaultStyle = styles[Slate]

// ParseColor reports whether s names a known colour.
func ParseColor(s string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	_, ok := styles[c]
	return c, ok
}

// StyleFor returns the style of the colour named by s, or DefaultStyle.
func StyleFor(s string) Style {
	if c, ok := ParseColor(s); ok {
		return styles[c]
	}
	return DefaultStyle
}
