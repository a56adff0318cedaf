package model

import (
	"time"

	"gorm.io/gorm"
)

// ReportVariant distinguishes the two report families.
// The variant is an explicit tag on the record; it is never derived
// from the artifact name.
type ReportVariant string

const (
	// ReportVariantPlain is a text-only report
	ReportVariantPlain ReportVariant = "plain"
	// ReportVariantChart is a report augmented with chart images
	ReportVariantChart ReportVariant = "chart"
)

// Valid reports whether the variant is one of the known values
func (v ReportVariant) Valid() bool {
	return v == ReportVariantPlain || v == ReportVariantChart
}

// ReportRecord is a persisted generated report.
// Data freezes the telemetry snapshot used at generation time; upgrades
// re-compose from this frozen snapshot, never from live telemetry.
type ReportRecord struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Name is the sequential artifact name, e.g. "Report_3.pdf"
	Name string `gorm:"size:255;not null;index" json:"name"`

	// Version starts at 1 and increments on every upgrade
	Version int `gorm:"not null;default:1" json:"version"`

	// Template is the layout template name the report was built with
	Template string `gorm:"size:100;not null" json:"template"`

	// Variant selects the plain or chart-augmented composition
	Variant ReportVariant `gorm:"size:20;not null;default:plain;index" json:"variant"`

	// Content is the report body text after directive extraction
	Content string `gorm:"type:text" json:"content"`

	// Directives holds the parsed [key:value] overrides from the source text
	Directives JSONMap `gorm:"type:json" json:"directives,omitempty"`

	// Data is the frozen telemetry snapshot captured at generation time
	Data SnapshotColumn `gorm:"type:json;not null" json:"data"`

	// ArtifactPath is the path of the last written PDF artifact,
	// relative to the output directory
	ArtifactPath string `gorm:"size:1024" json:"artifact_path,omitempty"`
}

// DirectiveMap converts the stored JSON directives back to a string map
func (r *ReportRecord) DirectiveMap() map[string]string {
	if len(r.Directives) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(r.Directives))
	for k, v := range r.Directives {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// DirectivesFromMap converts a string map to the storable JSON form
func DirectivesFromMap(m map[string]string) JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
