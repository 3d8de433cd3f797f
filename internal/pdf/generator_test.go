package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/seminar-quote/internal/model"
)

func sampleDocument(kind model.SeminarKind) model.BookingDocument {
	return model.BookingDocument{
		Reference:   uuid.MustParse("6f1c2b9e-4a57-4c8e-9d0b-3f6a2e1d7c55"),
		SubmittedAt: time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		Booking: model.Booking{
			Contact: model.Contact{
				Company: "Grüner Weg GmbH",
				Name:    "Jörg Maier",
				Email:   "joerg@example.test",
				City:    "Graz",
			},
			Selection: model.Selection{
				Kind:        kind,
				Headcount:   10,
				Date:        "2026-06-12",
				StartDate:   "2026-06-12",
				EndDate:     "2026-06-14",
				SingleRooms: 2,
				DoubleRooms: 1,
			},
			Seating:        "U-Form",
			EquipmentNotes: []string{"Flipchart", "Beamer"},
			Notes:          "Vegetarisches Mittagessen für 3 Personen",
		},
		Quote: model.Quote{
			Kind:           kind,
			Headcount:      10,
			Days:           3,
			Nights:         2,
			Gross:          1250,
			Net:            1100,
			VATReduced:     90,
			VATStandard:    50,
			StatutoryTax:   10,
			PerPerson:      125,
			RoomSuggestion: "40m² Raum (inkludiert)",
			Breakdown: model.Breakdown{
				Lodging:   840,
				Catering:  360,
				Equipment: 40,
				Statutory: 10,
			},
		},
		Intro:   "Vielen Dank für Ihre Anfrage, Jörg Maier.",
		Closing: "Wir melden uns innerhalb von zwei Werktagen.",
	}
}

func TestGenerateProducesPDF(t *testing.T) {
	gen, err := NewGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	for _, kind := range []model.SeminarKind{model.SeminarKindSingleDay, model.SeminarKindMultiDay} {
		content, err := gen.Generate(sampleDocument(kind))
		if err != nil {
			t.Fatalf("generate %s: %v", kind, err)
		}
		if !bytes.HasPrefix(content, []byte("%PDF")) {
			t.Fatalf("expected pdf header for %s", kind)
		}
	}
}

func TestFileNameUsesReferencePrefix(t *testing.T) {
	name := FileName(sampleDocument(model.SeminarKindSingleDay))
	if name != "seminaranfrage_6f1c2b9e.pdf" {
		t.Fatalf("unexpected file name %s", name)
	}
}

func TestCostLinesSkipEmptyCategories(t *testing.T) {
	lines := costLines(model.Breakdown{Package: 740, Equipment: 30})
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	if lines[0].label != "Seminarpauschale" || lines[1].amount != 30 {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestSeminarDates(t *testing.T) {
	single := model.Selection{Kind: model.SeminarKindSingleDay, Date: "2026-06-12"}
	if got := seminarDates(single); got != "12.06.2026" {
		t.Fatalf("unexpected single-day date %q", got)
	}
	multi := model.Selection{Kind: model.SeminarKindMultiDay, StartDate: "2026-06-12"}
	if got := seminarDates(multi); !strings.HasPrefix(got, "12.06.2026 bis") {
		t.Fatalf("unexpected range %q", got)
	}
	if got := seminarDates(model.Selection{Kind: model.SeminarKindMultiDay}); got != "-" {
		t.Fatalf("expected placeholder, got %q", got)
	}
}
