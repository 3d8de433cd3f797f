package mail

import (
	"fmt"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/money"
)

// Templates are the texts of the booking document and both mails. They use
// {{placeholder}} tags; unknown tags are left in place.
type Templates struct {
	DocumentIntro   string
	DocumentClosing string
	OperatorSubject string
	OperatorBody    string
	GuestSubject    string
	GuestBody       string
}

func DefaultTemplates() Templates {
	return Templates{
		DocumentIntro: "Anfrage von {{name}} ({{company}}) für ein {{kind}} " +
			"am {{dates}} mit {{headcount}} Teilnehmenden.",
		DocumentClosing: "Alle Preise inkl. USt. Die Reservierung wird erst mit unserer " +
			"schriftlichen Bestätigung verbindlich.",
		OperatorSubject: "Neue Seminaranfrage: {{kind}}, {{headcount}} Personen ({{name}})",
		OperatorBody: "Neue Seminaranfrage {{reference}}\n\n" +
			"Firma: {{company}}\nKontakt: {{name}}\nE-Mail: {{email}}\nTelefon: {{phone}}\n\n" +
			"Seminar: {{kind}}\nTermin: {{dates}}\nTeilnehmer: {{headcount}}\nRaum: {{room}}\n\n" +
			"Netto: {{net}}\nBrutto: {{gross}}\npro Person: {{per_person}}\n\n" +
			"Anmerkungen:\n{{notes}}\n",
		GuestSubject: "Ihre Seminaranfrage ({{kind}}, {{dates}})",
		GuestBody: "Guten Tag {{name}},\n\n" +
			"vielen Dank für Ihre Anfrage. Im Anhang finden Sie die Zusammenfassung " +
			"mit einem voraussichtlichen Gesamtbetrag von {{gross}}.\n\n" +
			"Wir melden uns in Kürze mit einer verbindlichen Bestätigung.\n\n" +
			"Referenz: {{reference}}\n",
	}
}

// Render substitutes the booking's values into text.
func Render(text string, doc model.BookingDocument) string {
	return fasttemplate.ExecuteStringStd(text, "{{", "}}", Values(doc))
}

// Values is the placeholder set for a booking. Every value is a string.
func Values(doc model.BookingDocument) map[string]interface{} {
	contact := doc.Booking.Contact
	sel := doc.Booking.Selection
	q := doc.Quote

	return map[string]interface{}{
		"reference":  doc.Reference.String(),
		"company":    orDash(contact.Company),
		"name":       strings.TrimSpace(contact.Name),
		"email":      strings.TrimSpace(contact.Email),
		"phone":      orDash(contact.Phone),
		"kind":       q.Kind.Label(),
		"dates":      dates(sel),
		"headcount":  fmt.Sprintf("%d", q.Headcount),
		"days":       fmt.Sprintf("%d", q.Days),
		"nights":     fmt.Sprintf("%d", q.Nights),
		"room":       orDash(q.RoomSuggestion),
		"seating":    orDash(doc.Booking.Seating),
		"gross":      money.FormatEUR(q.Gross),
		"net":        money.FormatEUR(q.Net),
		"per_person": money.FormatEUR(q.PerPerson),
		"notes":      orDash(doc.Booking.Notes),
	}
}

func dates(sel model.Selection) string {
	if sel.IsSingleDay() {
		return orDash(sel.Date)
	}
	start, end := strings.TrimSpace(sel.StartDate), strings.TrimSpace(sel.EndDate)
	switch {
	case start == "" && end == "":
		return "-"
	case end == "" || end == start:
		return orDash(start)
	default:
		return orDash(start) + " bis " + end
	}
}

func orDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}
