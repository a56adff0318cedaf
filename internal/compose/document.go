// Package compose turns a report record into a paginated PDF document.
// Composition runs in two stages: Layout builds a deterministic page
// structure from the record, and Render draws it with go-pdf/fpdf.
// Splitting the stages keeps pagination testable without parsing PDFs.
package compose

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/heliograph/heliograph/internal/directive"
	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/internal/template"
	"github.com/heliograph/heliograph/pkg/errors"
)

// Page geometry in millimeters (A4 portrait)
const (
	pageTopMargin    = 20.0
	pageLeftMargin   = 20.0
	pageContentWidth = 170.0

	// Sections start a new page once the cursor passes this line.
	// Word-wrapped text blocks may still overrun it; only the
	// between-section check guards the bottom of the page.
	pageBreakThreshold = 250.0

	// Band occupied by the document title at the top of page one.
	// Layout seeds the first page's cursor past it so pagination and
	// rendering agree on where blocks sit.
	documentTitleHeight = 16.0

	titleHeight    = 10.0
	textLineHeight = 6.0
	statLineHeight = 7.0
	sectionPadding = 4.0

	chartSlotWidth  = 82.0
	chartSlotHeight = 58.0
	chartRowHeight  = chartSlotHeight + 10.0

	baseFontSize      = 11.0
	largeTextIncrease = 2.0
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// RGB is a drawable color
type RGB struct {
	R, G, B int
}

var defaultTextColor = RGB{R: 44, G: 62, B: 80}

// BlockKind tags the drawable block types
type BlockKind string

const (
	// BlockTitle is a section heading in the accent style
	BlockTitle BlockKind = "title"
	// BlockTextLine is one word-wrapped line of body text
	BlockTextLine BlockKind = "text"
	// BlockStatLine is a min/max/avg metric line
	BlockStatLine BlockKind = "stat"
	// BlockChartRow holds up to two chart slots side by side
	BlockChartRow BlockKind = "charts"
)

// ChartSlot is one chart placement inside a chart row
type ChartSlot struct {
	Name    string
	Caption string
	Series  model.MetricSeries
}

// Block is one drawable unit on a page
type Block struct {
	Kind   BlockKind
	Text   string
	Charts []ChartSlot
	Height float64
}

// Page is an ordered list of blocks
type Page struct {
	Blocks []Block
}

// Document is the paginated layout ready for rendering.
// Same record, directives and charts always produce the same Document.
type Document struct {
	Title       string
	Accent      RGB
	TextColor   RGB
	FontSize    float64
	GeneratedAt time.Time
	LongDate    bool
	Pages       []Page
}

// layoutState tracks the cursor while blocks are appended
type layoutState struct {
	doc    *Document
	cursor float64
}

func newLayoutState(doc *Document) *layoutState {
	doc.Pages = []Page{{}}
	return &layoutState{doc: doc, cursor: pageTopMargin + documentTitleHeight}
}

func (s *layoutState) page() *Page {
	return &s.doc.Pages[len(s.doc.Pages)-1]
}

// breakIfNeeded starts a new page when the cursor passed the threshold
func (s *layoutState) breakIfNeeded() {
	if s.cursor > pageBreakThreshold {
		s.doc.Pages = append(s.doc.Pages, Page{})
		s.cursor = pageTopMargin
	}
}

func (s *layoutState) append(b Block) {
	s.page().Blocks = append(s.page().Blocks, b)
	s.cursor += b.Height
}

// Layout builds the paginated document structure for a record.
// charts supplies the series for the chart-augmented variant; plain
// records ignore it. MissingChartData is returned when the chart
// variant is laid out without all chart series present.
func Layout(record *model.ReportRecord, tpl template.Template, directives map[string]string, charts model.ChartSet) (*Document, error) {
	doc := &Document{
		Title:       tpl.Title,
		Accent:      parseHexColor(tpl.HeaderColor, defaultTextColor),
		TextColor:   defaultTextColor,
		FontSize:    baseFontSize,
		GeneratedAt: time.Now(),
	}

	// Global presentation overrides, applied before any drawing
	if directives[directive.KeyLargeText] == "true" {
		doc.FontSize += largeTextIncrease
	}
	if color, ok := directives[directive.KeyTextColor]; ok && hexColorPattern.MatchString(color) {
		// Malformed values fall back to the theme default
		doc.TextColor = parseHexColor(color, defaultTextColor)
	}
	doc.LongDate = directives[directive.KeyDateFormat] == directive.DateFormatLong

	if record.Variant == model.ReportVariantChart {
		for _, name := range model.AllChartNames() {
			if _, ok := charts[name]; !ok {
				return nil, errors.ErrMissingChartData()
			}
		}
	}

	state := newLayoutState(doc)
	lineWidth := maxLineChars(doc.FontSize)

	for _, section := range tpl.Sections {
		state.breakIfNeeded()
		state.append(Block{Kind: BlockTitle, Text: section.Title, Height: titleHeight})

		switch section.Kind {
		case template.KindText:
			body := textForSlot(section.Slot, record, directives)
			for _, line := range wrapText(body, lineWidth) {
				state.append(Block{Kind: BlockTextLine, Text: line, Height: textLineHeight})
			}
		case template.KindData:
			lines, err := statLines(record, section.DataKey)
			if err != nil {
				return nil, err
			}
			for _, line := range lines {
				state.append(Block{Kind: BlockStatLine, Text: line, Height: statLineHeight})
			}
		}
		state.cursor += sectionPadding
	}

	if record.Variant == model.ReportVariantChart {
		layoutChartRows(state, charts)
	}

	return doc, nil
}

// textForSlot resolves a text section's body from its slot binding
func textForSlot(slot template.Slot, record *model.ReportRecord, directives map[string]string) string {
	switch slot {
	case template.SlotSummary:
		return record.Content
	case template.SlotRecommendations:
		// Without the directive the section keeps its title and no body
		return directives[directive.KeyRecommendations]
	}
	return ""
}

// statLines builds the stat line(s) for a data section.
// A single series yields one line; a group yields one labeled line per
// sub-metric in name order.
func statLines(record *model.ReportRecord, dataKey string) ([]string, error) {
	resolved, ok := record.Data.Resolve(dataKey)
	if !ok {
		return nil, errors.ErrUnknownMetricPath(dataKey)
	}

	if resolved.Series != nil {
		return []string{formatStatLine(*resolved.Series)}, nil
	}

	names := make([]string, 0, len(resolved.Group))
	for name := range resolved.Group {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, formatStatLine(resolved.Group[name])))
	}
	return lines, nil
}

// formatStatLine renders the min/max/avg display for one series
func formatStatLine(series model.MetricSeries) string {
	min, max, avg, ok := series.Stats()
	if !ok {
		return "no data"
	}
	return fmt.Sprintf("Min: %s | Max: %s | Avg: %s",
		formatValue(min, series.Unit),
		formatValue(max, series.Unit),
		formatValue(avg, series.Unit),
	)
}

// formatValue prints a stat value with up to two decimals and its unit
func formatValue(v float64, unit string) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// chartCaptions maps chart names to their display captions
var chartCaptions = map[string]string{
	model.ChartIrradianceVsPower:  "Irradiance vs Power",
	model.ChartPowerHistogram:     "Power Distribution",
	model.ChartTemperatureVsPower: "Temperature vs Power",
	model.ChartWindVsTemperature:  "Wind vs Temperature",
	model.ChartPowerAnomalies:     "Power Anomalies",
	model.ChartEnergyByHour:       "Energy by Hour",
}

// layoutChartRows places the six charts two per row
func layoutChartRows(state *layoutState, charts model.ChartSet) {
	names := model.AllChartNames()
	for i := 0; i < len(names); i += 2 {
		state.breakIfNeeded()
		row := Block{Kind: BlockChartRow, Height: chartRowHeight}
		for _, name := range names[i:minInt(i+2, len(names))] {
			row.Charts = append(row.Charts, ChartSlot{
				Name:    name,
				Caption: chartCaptions[name],
				Series:  charts[name],
			})
		}
		state.append(row)
	}
}

// maxLineChars approximates how many characters fit one content line
func maxLineChars(fontSize float64) int {
	chars := int(pageContentWidth / (fontSize * 0.21))
	if chars < 20 {
		chars = 20
	}
	return chars
}

// wrapText word-wraps text to width characters per line.
// Words longer than the width are hard-split.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		for len(word) > width {
			if line.Len() > 0 {
				lines = append(lines, line.String())
				line.Reset()
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case line.Len() == 0:
			line.WriteString(word)
		case line.Len()+1+len(word) <= width:
			line.WriteByte(' ')
			line.WriteString(word)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// parseHexColor parses #RRGGBB, returning fallback on malformed input
func parseHexColor(s string, fallback RGB) RGB {
	if !hexColorPattern.MatchString(s) {
		return fallback
	}
	var c RGB
	fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B)
	return c
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
