// Package theme maps the closed set of UI theme and colour identifiers
// to concrete style values. Unknown identifiers resolve to an explicit
// fallback entry instead of an implicit zero value.
package theme

import (
	"sort"
	"strings"
)

// ID identifies a UI theme.
type ID string

const (
	EmeraldLight ID = "emerald-light"
	OceanLight   ID = "ocean-light"
	SunsetLight  ID = "sunset-light"
	BerryLight   ID = "berry-light"
	MidnightDark ID = "midnight-dark"
	ForestDark   ID = "forest-dark"
	CyberDark    ID = "cyber-dark"
)

// Kind is the brightness family of a palette.
type Kind string

const (
	Light Kind = "light"
	Dark  Kind = "dark"
)

// Palette is the set of colours injected into the page as CSS custom
// properties.
type Palette struct {
	ID            ID
	Name          string
	Kind          Kind
	Surface       string
	Background    string
	Text          string
	Muted         string
	Primary       string
	PrimaryStrong string
}

// Var is a single CSS custom property.
type Var struct {
	Name  string
	Value string
}

// Vars returns the palette as CSS custom properties in a stable order.
func (p Palette) Vars() []Var {
	return []Var{
		{"--color-surface", p.Surface},
		{"--color-bg", p.Background},
		{"--color-text", p.Text},
		{"--color-muted", p.Muted},
		{"--color-primary", p.Primary},
		{"--color-primary-strong", p.PrimaryStrong},
	}
}

var palettes = map[ID]Palette{
	EmeraldLight: {EmeraldLight, "Emerald", Light, "#ffffff", "#f8fafc", "#0f172a", "#64748b", "#10b981", "#059669"},
	OceanLight:   {OceanLight, "Ocean", Light, "#ffffff", "#f0f9ff", "#0c4a6e", "#0ea5e9", "#3b82f6", "#2563eb"},
	SunsetLight:  {SunsetLight, "Sunset", Light, "#ffffff", "#fff7ed", "#7c2d12", "#f97316", "#ef4444", "#dc2626"},
	BerryLight:   {BerryLight, "Berry", Light, "#ffffff", "#faf5ff", "#581c87", "#a855f7", "#d946ef", "#c026d3"},
	MidnightDark: {MidnightDark, "Midnight", Dark, "#1e293b", "#0f172a", "#f8fafc", "#94a3b8", "#818cf8", "#6366f1"},
	ForestDark:   {ForestDark, "Forest", Dark, "#064e3b", "#022c22", "#ecfdf5", "#6ee7b7", "#4ade80", "#22c55e"},
	CyberDark:    {CyberDark, "Cyber", Dark, "#171717", "#000000", "#ffffff", "#a3a3a3", "#eab308", "#facc15"},
}

// Fallback is used for any unrecognized theme ID.
var Fallback = palettes[EmeraldLight]

// ParseID reports whether s names a known theme.
func ParseID(s string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	_, ok := palettes[id]
	return id, ok
}

// Lookup returns the palette for id, or Fallback.
func Lookup(id ID) Palette {
	if p, ok := palettes[id]; ok {
		return p
	}
	return Fallback
}

// All lists the palettes, light themes first, then by ID.
func All() []Palette {
	out := make([]Palette, 0, len(palettes))
	for _, p := range palettes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == Light
		}
		return out[i].ID < out[j].ID
	})
	return out
}
