// Package template holds the compiled-in report layout templates.
// Templates are immutable package-level values; Get returns copies so
// callers can never mutate the registry.
package template

import "github.com/heliograph/heliograph/pkg/errors"

// SectionKind selects how a section body is produced
type SectionKind string

const (
	// KindText renders free text (report body or a directive value)
	KindText SectionKind = "text"
	// KindData renders stat lines resolved from the snapshot
	KindData SectionKind = "data"
)

// Slot tags the text sections with their content source.
// Text sections are bound by slot, not by title matching.
type Slot string

const (
	// SlotNone marks sections with no bound text source
	SlotNone Slot = ""
	// SlotSummary binds the cleaned report body text
	SlotSummary Slot = "summary"
	// SlotRecommendations binds the recomendaciones directive value
	SlotRecommendations Slot = "recommendations"
)

// Section is one entry in a template layout
type Section struct {
	// Title is drawn in the accent style above the section body
	Title string
	// Kind selects text or data rendering
	Kind SectionKind
	// DataKey is the dotted snapshot path for data sections
	DataKey string
	// Slot binds text sections to their content source
	Slot Slot
}

// Template is a full report layout
type Template struct {
	// Name is the registry key
	Name string
	// Title is the document heading
	Title string
	// HeaderColor is the default accent color as #RRGGBB
	HeaderColor string
	// Sections in drawing order
	Sections []Section
}

// Registry names
const (
	Basic    = "basic"
	Detailed = "detailed"
)

var basicTemplate = Template{
	Name:        Basic,
	Title:       "Solar Plant Report",
	HeaderColor: "#1A73E8",
	Sections: []Section{
		{Title: "Executive Summary", Kind: KindText, Slot: SlotSummary},
		{Title: "Irradiance", Kind: KindData, DataKey: "irradiance"},
		{Title: "Power Output", Kind: KindData, DataKey: "power"},
	},
}

var detailedTemplate = Template{
	Name:        Detailed,
	Title:       "Solar Plant Detailed Report",
	HeaderColor: "#0B5394",
	Sections: []Section{
		{Title: "Executive Summary", Kind: KindText, Slot: SlotSummary},
		{Title: "Irradiance", Kind: KindData, DataKey: "irradiance"},
		{Title: "Power Output", Kind: KindData, DataKey: "power"},
		{Title: "Environment", Kind: KindData, DataKey: "environment"},
		{Title: "Hourly Energy", Kind: KindData, DataKey: "energy_by_hour"},
		{Title: "Recommendations", Kind: KindText, Slot: SlotRecommendations},
	},
}

// Get returns the template registered under name.
// Section slices are copied so callers cannot mutate the registry.
func Get(name string) (Template, error) {
	var tpl Template
	switch name {
	case Basic:
		tpl = basicTemplate
	case Detailed:
		tpl = detailedTemplate
	default:
		return Template{}, errors.ErrUnknownTemplate(name)
	}

	out := tpl
	out.Sections = append([]Section(nil), tpl.Sections...)
	return out, nil
}

// Names returns the registered template names
func Names() []string {
	return []string{Basic, Detailed}
}
