package compose

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/internal/template"
	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/logger"
	"github.com/heliograph/heliograph/pkg/telemetry"
)

// Composer assembles report PDFs from records
type Composer struct {
	rasterizer Rasterizer
}

// New returns a composer that rasterizes charts with the given rasterizer
func New(rasterizer Rasterizer) *Composer {
	return &Composer{rasterizer: rasterizer}
}

// Compose lays out and renders a record into PDF bytes.
// The record's frozen snapshot supplies all metric data, so the same
// record composes to the same layout regardless of live plant state.
func (c *Composer) Compose(record *model.ReportRecord, directives map[string]string) ([]byte, error) {
	tpl, err := template.Get(record.Template)
	if err != nil {
		return nil, err
	}

	doc, err := Layout(record, tpl, directives, record.Data.Charts)
	if err != nil {
		return nil, err
	}

	return c.Render(doc)
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var spanishWeekdays = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// footerDate formats the generation date for the page footer
func footerDate(t time.Time, long bool) string {
	if !long {
		return t.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s, %d de %s de %d",
		spanishWeekdays[t.Weekday()], t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// Render draws a laid-out document into PDF bytes.
// A chart that fails to rasterize leaves its slot blank and the render
// continues; only structural failures abort.
func (c *Composer) Render(doc *Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageLeftMargin, pageTopMargin, pageLeftMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	footer := fmt.Sprintf("%s  |  Página %%d de {nb}", footerDate(doc.GeneratedAt, doc.LongDate))
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf(footer, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	for pageIdx, page := range doc.Pages {
		pdf.AddPage()
		y := pageTopMargin

		if pageIdx == 0 {
			pdf.SetFont("Arial", "B", 18)
			pdf.SetTextColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
			pdf.SetXY(pageLeftMargin, y)
			pdf.CellFormat(pageContentWidth, 12, tr(doc.Title), "", 1, "L", false, 0, "")
			y += documentTitleHeight
		}

		for _, block := range page.Blocks {
			switch block.Kind {
			case BlockTitle:
				pdf.SetFont("Arial", "B", doc.FontSize+3)
				pdf.SetTextColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
				pdf.SetXY(pageLeftMargin, y)
				pdf.CellFormat(pageContentWidth, block.Height, tr(block.Text), "", 1, "L", false, 0, "")
				pdf.SetDrawColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
				pdf.Line(pageLeftMargin, y+block.Height-1, pageLeftMargin+pageContentWidth, y+block.Height-1)
			case BlockTextLine:
				pdf.SetFont("Arial", "", doc.FontSize)
				pdf.SetTextColor(doc.TextColor.R, doc.TextColor.G, doc.TextColor.B)
				pdf.SetXY(pageLeftMargin, y)
				pdf.CellFormat(pageContentWidth, block.Height, tr(block.Text), "", 1, "L", false, 0, "")
			case BlockStatLine:
				pdf.SetFont("Arial", "", doc.FontSize)
				pdf.SetTextColor(doc.TextColor.R, doc.TextColor.G, doc.TextColor.B)
				pdf.SetFillColor(245, 247, 250)
				pdf.SetXY(pageLeftMargin, y)
				pdf.CellFormat(pageContentWidth, block.Height, tr("  "+block.Text), "", 1, "L", true, 0, "")
			case BlockChartRow:
				c.renderChartRow(pdf, tr, doc, block, y)
			}
			y += block.Height
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "pdf output failed", err)
	}
	return buf.Bytes(), nil
}

// renderChartRow rasterizes and places up to two charts side by side
func (c *Composer) renderChartRow(pdf *fpdf.Fpdf, tr func(string) string, doc *Document, block Block, y float64) {
	slotGap := pageContentWidth - 2*chartSlotWidth
	for i, slot := range block.Charts {
		x := pageLeftMargin + float64(i)*(chartSlotWidth+slotGap)

		png, err := c.rasterizer.Render(slot.Caption, slot.Series)
		telemetry.GetMetrics().RecordChartRender(context.Background(), slot.Name, err == nil)
		if err != nil {
			// Leave the slot blank and keep going
			logger.Warn("chart rasterization failed",
				zap.String("chart", slot.Name),
				zap.Error(errors.ErrChartRenderingFailed(slot.Name, err)))
		} else {
			name := fmt.Sprintf("chart-%d-%s", pdf.PageNo(), slot.Name)
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
			pdf.ImageOptions(name, x, y, chartSlotWidth, chartSlotHeight, false, opts, 0, "")
		}

		pdf.SetFont("Arial", "I", doc.FontSize-2)
		pdf.SetTextColor(doc.TextColor.R, doc.TextColor.G, doc.TextColor.B)
		pdf.SetXY(x, y+chartSlotHeight+1)
		pdf.CellFormat(chartSlotWidth, 6, tr(slot.Caption), "", 0, "C", false, 0, "")
	}
}
