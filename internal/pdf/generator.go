package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/money"
	"github.com/nurpe/seminar-quote/internal/quote"
)

const fontName = "Helvetica"

type Generator struct {
	orientation string
}

func NewGenerator() (*Generator, error) {
	return &Generator{orientation: "P"}, nil
}

// Generate renders the booking document. Texts go through the cp1252
// translator so umlauts survive the core font.
func (g *Generator) Generate(doc model.BookingDocument) ([]byte, error) {
	pdf := gofpdf.New(g.orientation, "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle("Seminaranfrage "+doc.Reference.String(), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	sel := doc.Booking.Selection
	q := doc.Quote

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, tr("Seminaranfrage: "+q.Kind.Label()), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Referenz %s vom %s", doc.Reference, formatTimestamp(doc.SubmittedAt))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if strings.TrimSpace(doc.Intro) != "" {
		pdf.SetFont(fontName, "", 11)
		pdf.MultiCell(0, 5, tr(doc.Intro), "", "L", false)
		pdf.Ln(3)
	}

	section(pdf, tr, "Kontakt")
	contact := doc.Booking.Contact
	lines := []string{
		safeValue(contact.Company),
		contact.Name,
		joinNonEmpty(", ", contact.Street, strings.TrimSpace(contact.Zip+" "+contact.City)),
		joinNonEmpty(" · ", contact.Email, contact.Phone),
	}
	pdf.SetFont(fontName, "", 10)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(3)

	section(pdf, tr, "Seminar")
	details := [][2]string{
		{"Termin", seminarDates(sel)},
		{"Teilnehmer", fmt.Sprintf("%d", q.Headcount)},
		{"Dauer", duration(q)},
		{"Raum", safeValue(q.RoomSuggestion)},
		{"Bestuhlung", safeValue(doc.Booking.Seating)},
		{"Verpflegung", safeValue(doc.Booking.CateringPackage)},
	}
	if !sel.IsSingleDay() {
		details = append(details, [2]string{"Zimmer", fmt.Sprintf("%d EZ / %d DZ", sel.SingleRooms.Int(), sel.DoubleRooms.Int())})
	}
	if len(doc.Booking.EquipmentNotes) > 0 {
		details = append(details, [2]string{"Technik", strings.Join(doc.Booking.EquipmentNotes, ", ")})
	}
	if len(doc.Booking.ActivityNotes) > 0 {
		details = append(details, [2]string{"Rahmenprogramm", strings.Join(doc.Booking.ActivityNotes, ", ")})
	}
	if strings.TrimSpace(doc.Booking.Notes) != "" {
		details = append(details, [2]string{"Anmerkungen", doc.Booking.Notes})
	}
	for _, detail := range details {
		pdf.SetFont(fontName, "B", 10)
		pdf.CellFormat(40, 6, tr(detail[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 6, tr(detail[1]), "", "L", false)
	}
	pdf.Ln(3)

	section(pdf, tr, "Kosten")
	widths := []float64{120, 54}
	drawTableRow(pdf, tr, []string{"Position", "Betrag"}, widths, true)
	for _, line := range costLines(q.Breakdown) {
		drawTableRow(pdf, tr, []string{line.label, money.FormatEUR(line.amount)}, widths, false)
	}
	pdf.Ln(2)

	totals := [][2]string{
		{"Netto", money.FormatEUR(q.Net)},
		{fmt.Sprintf("USt %.0f%%", quote.ReducedVATRate*100), money.FormatEUR(q.VATReduced)},
		{fmt.Sprintf("USt %.0f%%", quote.StandardVATRate*100), money.FormatEUR(q.VATStandard)},
	}
	if q.StatutoryTax > 0 {
		totals = append(totals, [2]string{"Nächtigungsabgabe", money.FormatEUR(q.StatutoryTax)})
	}
	totals = append(totals, [2]string{"Gesamt brutto", money.FormatEUR(q.Gross)})
	if q.Headcount > 0 {
		totals = append(totals, [2]string{"pro Person", money.FormatEUR(q.PerPerson)})
	}
	for i, total := range totals {
		style := ""
		if i == len(totals)-1 || total[0] == "Gesamt brutto" {
			style = "B"
		}
		pdf.SetFont(fontName, style, 10)
		pdf.CellFormat(widths[0], 6, tr(total[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(total[1]), "", 1, "R", false, 0, "")
	}

	if strings.TrimSpace(doc.Closing) != "" {
		pdf.Ln(6)
		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 5, tr(doc.Closing), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the attachment name used for a booking document.
func FileName(doc model.BookingDocument) string {
	return fmt.Sprintf("seminaranfrage_%s.pdf", doc.Reference.String()[:8])
}

type costLine struct {
	label  string
	amount float64
}

func costLines(b model.Breakdown) []costLine {
	candidates := []costLine{
		{"Seminarpauschale", b.Package},
		{"Übernachtung", b.Lodging},
		{"Verpflegung", b.Catering},
		{"Technik und Räume", b.Equipment},
		{"Rahmenprogramm", b.Activities},
		{"Nächtigungsabgabe", b.Statutory},
	}
	lines := make([]costLine, 0, len(candidates))
	for _, line := range candidates {
		if line.amount != 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

func seminarDates(sel model.Selection) string {
	if sel.IsSingleDay() {
		return safeValue(formatDate(sel.Date))
	}
	start, end := formatDate(sel.StartDate), formatDate(sel.EndDate)
	if start == "" && end == "" {
		return safeValue("")
	}
	return fmt.Sprintf("%s bis %s", safeValue(start), safeValue(end))
}

func duration(q model.Quote) string {
	if q.Kind == model.SeminarKindSingleDay {
		return "1 Tag"
	}
	days := "Tage"
	if q.Days == 1 {
		days = "Tag"
	}
	nights := "Nächte"
	if q.Nights == 1 {
		nights = "Nacht"
	}
	return fmt.Sprintf("%d %s, %d %s", q.Days, days, q.Nights, nights)
}

func formatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("02.01.2006")
		}
	}
	return raw
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006 15:04")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, strings.TrimSpace(part))
		}
	}
	return strings.Join(kept, sep)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
