package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/seminar-quote/internal/config"
	"github.com/nurpe/seminar-quote/internal/excel"
	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pdf"
	"github.com/nurpe/seminar-quote/internal/pricing"
	"github.com/nurpe/seminar-quote/internal/repository"
)

type fakeResolver struct {
	res       pricing.Resolution
	refreshes int
}

func (f *fakeResolver) Resolve(context.Context) pricing.Resolution { return f.res }

func (f *fakeResolver) Refresh(context.Context) pricing.Resolution {
	f.refreshes++
	return f.res
}

func resolverWith(origin pricing.Origin) *fakeResolver {
	return &fakeResolver{res: pricing.Resolution{
		Table:      pricing.DefaultTable(),
		Origin:     origin,
		ResolvedAt: time.Now(),
	}}
}

type recordingSender struct {
	mu       sync.Mutex
	messages []model.Message
	failOn   int
}

func (s *recordingSender) Send(_ context.Context, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if s.failOn > 0 && len(s.messages) == s.failOn {
		return errors.New("smtp: 554 rejected")
	}
	return nil
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Archive(_ context.Context, key, _ string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "https://files.example.test/" + key, nil
}

type bookingFixture struct {
	service *BookingService
	repo    *repository.MemoryBookingRepository
	sender  *recordingSender
	archive *fakeArchive
}

func newBookingFixture(t *testing.T, failOn int) bookingFixture {
	t.Helper()
	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		t.Fatalf("pdf generator: %v", err)
	}
	cfg := &config.Config{}
	cfg.Mail.OperatorTo = []string{"office@example.test"}

	fx := bookingFixture{
		repo:    repository.NewMemoryBookingRepository(),
		sender:  &recordingSender{failOn: failOn},
		archive: &fakeArchive{},
	}
	fx.service = NewBookingService(
		resolverWith(pricing.OriginRemote),
		fx.repo,
		pdfGenerator,
		excel.NewGenerator(),
		fx.sender,
		fx.archive,
		cfg,
		zerolog.Nop(),
	)
	return fx
}

func validBooking() model.Booking {
	return model.Booking{
		Contact: model.Contact{Name: "Eva Koller", Email: "Eva Koller <eva@example.test>", Company: "Koller KG"},
		Selection: model.Selection{
			Kind:      "1tag",
			Headcount: 10,
			Date:      "2026-06-12",
		},
		ClientGross: 700,
	}
}

var operator = model.Principal{UserID: "ops", Role: model.UserRoleOperator}

func TestSubmitDeliversBothMails(t *testing.T) {
	fx := newBookingFixture(t, 0)

	result, err := fx.service.Submit(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Quote.Gross != 740 {
		t.Fatalf("expected server-side gross 740, got %f", result.Quote.Gross)
	}

	if len(fx.sender.messages) != 2 {
		t.Fatalf("expected two messages, got %d", len(fx.sender.messages))
	}
	operatorMsg, guestMsg := fx.sender.messages[0], fx.sender.messages[1]
	if operatorMsg.ReplyTo != "eva@example.test" || operatorMsg.To[0] != "office@example.test" {
		t.Fatalf("unexpected operator addressing %+v", operatorMsg)
	}
	if len(operatorMsg.Attachments) != 2 {
		t.Fatalf("expected pdf and xlsx for operator, got %d", len(operatorMsg.Attachments))
	}
	if !strings.Contains(operatorMsg.Subject, "Eva Koller") {
		t.Fatalf("expected rendered subject, got %q", operatorMsg.Subject)
	}
	if guestMsg.To[0] != "eva@example.test" || len(guestMsg.Attachments) != 1 {
		t.Fatalf("unexpected guest message %+v", guestMsg)
	}
	if !strings.HasPrefix(string(guestMsg.Attachments[0].Content), "%PDF") {
		t.Fatalf("expected pdf attachment")
	}

	record, err := fx.service.Get(context.Background(), operator, result.Reference)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Status != model.BookingStatusDelivered || record.PriceOrigin != "remote" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.ArchiveURL == nil || len(fx.archive.keys) != 1 {
		t.Fatalf("expected archived document")
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]func(*model.Booking){
		"missing name":   func(b *model.Booking) { b.Contact.Name = "  " },
		"invalid email":  func(b *model.Booking) { b.Contact.Email = "not-an-email" },
		"zero headcount": func(b *model.Booking) { b.Selection.Headcount = 0 },
		"unknown kind":   func(b *model.Booking) { b.Selection.Kind = "weekend" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			fx := newBookingFixture(t, 0)
			booking := validBooking()
			mutate(&booking)
			if _, err := fx.service.Submit(context.Background(), booking); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if len(fx.sender.messages) != 0 {
				t.Fatalf("expected no mail for invalid booking")
			}
		})
	}
}

func TestSubmitDeliveryFailureMarksBooking(t *testing.T) {
	for _, failOn := range []int{1, 2} {
		fx := newBookingFixture(t, failOn)

		_, err := fx.service.Submit(context.Background(), validBooking())
		if !errors.Is(err, ErrDelivery) {
			t.Fatalf("failOn=%d: expected delivery error, got %v", failOn, err)
		}

		status := model.BookingStatusFailed
		failed, _ := fx.service.List(context.Background(), operator, &status, 0)
		if len(failed) != 1 || failed[0].FailureReason == nil {
			t.Fatalf("failOn=%d: expected one failed record, got %+v", failOn, failed)
		}
	}
}

func TestSubmitSurvivesArchiveFailure(t *testing.T) {
	fx := newBookingFixture(t, 0)
	fx.archive.err = errors.New("bucket unavailable")

	result, err := fx.service.Submit(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	record, _ := fx.service.Get(context.Background(), operator, result.Reference)
	if record.ArchiveURL != nil {
		t.Fatalf("expected no archive url")
	}
}

func TestBookingLogRequiresOperator(t *testing.T) {
	fx := newBookingFixture(t, 0)
	guest := model.Principal{UserID: "guest", Role: "GUEST"}

	if _, err := fx.service.Get(context.Background(), guest, uuid.New()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if _, err := fx.service.List(context.Background(), guest, nil, 10); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if _, err := fx.service.Get(context.Background(), operator, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
