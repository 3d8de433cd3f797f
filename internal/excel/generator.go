package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/money"
	"github.com/nurpe/seminar-quote/internal/quote"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// QuoteWorkbook writes the cost breakdown and the selection it came from.
func (g *Generator) QuoteWorkbook(q model.Quote, sel model.Selection) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Übersicht"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeQuoteSummary(file, summarySheet, q)

	selectionSheet := "Auswahl"
	if _, err := file.NewSheet(selectionSheet); err != nil {
		return nil, err
	}
	g.writeSelection(file, selectionSheet, sel)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeQuoteSummary(file *excelize.File, sheet string, q model.Quote) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Seminarart")
	set("B1", q.Kind.Label())
	set("A2", "Teilnehmer")
	set("B2", q.Headcount)
	set("A3", "Tage")
	set("B3", q.Days)
	set("A4", "Nächte")
	set("B4", q.Nights)
	set("A5", "Raum")
	set("B5", q.RoomSuggestion)

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Position")
	set(fmt.Sprintf("B%d", tableRow), "Betrag (EUR)")

	rows := []struct {
		label  string
		amount float64
	}{
		{"Seminarpauschale", q.Breakdown.Package},
		{"Übernachtung", q.Breakdown.Lodging},
		{"Verpflegung", q.Breakdown.Catering},
		{"Technik und Räume", q.Breakdown.Equipment},
		{"Rahmenprogramm", q.Breakdown.Activities},
		{"Nächtigungsabgabe", q.Breakdown.Statutory},
		{"", 0},
		{"Netto", q.Net},
		{fmt.Sprintf("USt %.0f%%", quote.ReducedVATRate*100), q.VATReduced},
		{fmt.Sprintf("USt %.0f%%", quote.StandardVATRate*100), q.VATStandard},
		{"Gesamt brutto", q.Gross},
		{"pro Person", q.PerPerson},
	}
	for i, row := range rows {
		if row.label == "" {
			continue
		}
		r := tableRow + 1 + i
		set(fmt.Sprintf("A%d", r), row.label)
		set(fmt.Sprintf("B%d", r), money.Round(row.amount))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 18)
}

func (g *Generator) writeSelection(file *excelize.File, sheet string, sel model.Selection) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	row := 1
	add := func(label string, value interface{}) {
		set(fmt.Sprintf("A%d", row), label)
		set(fmt.Sprintf("B%d", row), value)
		row++
	}

	if sel.IsSingleDay() {
		add("Datum", sel.Date)
	} else {
		add("Anreise", sel.StartDate)
		add("Abreise", sel.EndDate)
		add("Einzelzimmer", sel.SingleRooms.Int())
		add("Doppelzimmer", sel.DoubleRooms.Int())
		add("Vormittagspause", sel.Catering.MorningBreak)
		add("Nachmittagspause", sel.Catering.AfternoonBreak)
		add("Mittagessen", strings.Join(sel.Catering.Lunch, ", "))
		add("Abendessen", sel.Catering.Dinner)
		add("Raumgarantie", yesNo(sel.RoomGuarantee))
		add("Gruppenraum", yesNo(sel.BreakoutRoom))
	}

	row++
	set(fmt.Sprintf("A%d", row), "Technik")
	set(fmt.Sprintf("B%d", row), "Anzahl")
	row++
	for _, line := range sel.Equipment {
		add(line.Key, line.Quantity.Int())
	}

	if len(sel.Activities) > 0 {
		row++
		set(fmt.Sprintf("A%d", row), "Rahmenprogramm")
		set(fmt.Sprintf("B%d", row), "Abrechnung")
		row++
		for _, activity := range sel.Activities {
			basis := "pro Person"
			if activity.Flat {
				basis = "pauschal"
			}
			add(activity.Key, basis)
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 24)
}

// PriceTableWorkbook lists every price once on a combined sheet and again
// on one sheet per top-level section.
func (g *Generator) PriceTableWorkbook(table model.PriceTable, origin string, resolvedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	allSheet := "Alle Preise"
	if err := file.SetSheetName("Sheet1", allSheet); err != nil {
		return nil, err
	}

	set := func(sheet, cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set(allSheet, "A1", "Quelle")
	set(allSheet, "B1", origin)
	set(allSheet, "A2", "Stand")
	set(allSheet, "B2", formatDateTime(resolvedAt))
	set(allSheet, "A4", "Schlüssel")
	set(allSheet, "B4", "Preis (EUR)")

	entries := table.Entries()
	sections := make(map[string][]model.PriceEntry)
	var order []string
	for i, entry := range entries {
		set(allSheet, fmt.Sprintf("A%d", 5+i), entry.Path)
		set(allSheet, fmt.Sprintf("B%d", 5+i), entry.Price)

		section, rest, found := strings.Cut(entry.Path, ".")
		if !found {
			continue
		}
		if _, seen := sections[section]; !seen {
			order = append(order, section)
		}
		sections[section] = append(sections[section], model.PriceEntry{Path: rest, Price: entry.Price})
	}
	_ = file.SetColWidth(allSheet, "A", "A", 36)
	_ = file.SetColWidth(allSheet, "B", "B", 14)

	usedNames := map[string]struct{}{allSheet: {}}
	for _, section := range order {
		sheetName := buildSheetName(section, usedNames)
		usedNames[sheetName] = struct{}{}
		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		set(sheetName, "A1", "Position")
		set(sheetName, "B1", "Preis (EUR)")
		for i, entry := range sections[section] {
			set(sheetName, fmt.Sprintf("A%d", 2+i), entry.Path)
			set(sheetName, fmt.Sprintf("B%d", 2+i), entry.Price)
		}
		_ = file.SetColWidth(sheetName, "A", "A", 32)
		_ = file.SetColWidth(sheetName, "B", "B", 14)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > 31 {
		base = base[:31]
	}

	candidate := base
	counter := 2
	for {
		if _, exists := used[candidate]; !exists {
			return candidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		candidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Preise"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Preise"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func yesNo(v bool) string {
	if v {
		return "ja"
	}
	return "nein"
}
