package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/seminar-quote/internal/config"
	"github.com/nurpe/seminar-quote/internal/model"
)

func sampleDocument() model.BookingDocument {
	return model.BookingDocument{
		Reference: uuid.MustParse("0b7e3f0a-9a4d-4f43-8d7e-5b1c6a2f9e10"),
		Booking: model.Booking{
			Contact: model.Contact{Name: " Lena Huber ", Email: "lena@example.test"},
			Selection: model.Selection{
				Kind:      model.SeminarKindMultiDay,
				StartDate: "2026-09-01",
				EndDate:   "2026-09-03",
			},
		},
		Quote: model.Quote{
			Kind:      model.SeminarKindMultiDay,
			Headcount: 12,
			Gross:     2345.5,
		},
	}
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	got := Render("{{name}} / {{company}} / {{dates}} / {{headcount}} / {{gross}}", sampleDocument())
	want := "Lena Huber / - / 2026-09-01 bis 2026-09-03 / 12 / 2.345,50 EUR"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderKeepsUnknownTags(t *testing.T) {
	got := Render("Hallo {{name}}, {{unknown}}", sampleDocument())
	if got != "Hallo Lena Huber, {{unknown}}" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestDefaultTemplatesRenderWithoutLeftovers(t *testing.T) {
	tpl := DefaultTemplates()
	for _, text := range []string{
		tpl.DocumentIntro, tpl.DocumentClosing,
		tpl.OperatorSubject, tpl.OperatorBody,
		tpl.GuestSubject, tpl.GuestBody,
	} {
		if rendered := Render(text, sampleDocument()); strings.Contains(rendered, "{{") {
			t.Fatalf("unrendered placeholder in %q", rendered)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	msg := model.Message{
		To:      []string{"office@example.test"},
		ReplyTo: "lena@example.test",
		Subject: "Neue Seminaranfrage",
		Body:    "Hallo",
		Attachments: []model.Attachment{
			{FileName: "anfrage.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.3")},
		},
	}

	m := buildMessage("noreply@example.test", msg)
	if got := m.GetHeader("Reply-To"); len(got) != 1 || got[0] != "lena@example.test" {
		t.Fatalf("unexpected reply-to %v", got)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	if !strings.Contains(buf.String(), "anfrage.pdf") {
		t.Fatalf("expected attachment in message")
	}
}

func TestNewSenderWithoutHostLogs(t *testing.T) {
	sender := NewSender(config.MailConfig{}, zerolog.Nop())
	if _, ok := sender.(*LogSender); !ok {
		t.Fatalf("expected log sender, got %T", sender)
	}
	if err := sender.Send(context.Background(), model.Message{Subject: "x"}); err != nil {
		t.Fatalf("log sender failed: %v", err)
	}
}

func TestSMTPSenderRejectsEmptyRecipients(t *testing.T) {
	sender := NewSMTPSender(config.MailConfig{Host: "127.0.0.1", Port: 1})
	if err := sender.Send(context.Background(), model.Message{Subject: "x"}); err == nil {
		t.Fatalf("expected error without recipients")
	}
}
