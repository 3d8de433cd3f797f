package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/seminar-quote/internal/config"
	"github.com/nurpe/seminar-quote/internal/excel"
	mailer "github.com/nurpe/seminar-quote/internal/mail"
	"github.com/nurpe/seminar-quote/internal/model"
	"github.com/nurpe/seminar-quote/internal/pdf"
	"github.com/nurpe/seminar-quote/internal/quote"
	"github.com/nurpe/seminar-quote/internal/storage"
)

type PDFGenerator interface {
	Generate(doc model.BookingDocument) ([]byte, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, record model.BookingRecord) error
	MarkDelivered(ctx context.Context, reference uuid.UUID, archiveURL *string, deliveredAt time.Time) error
	MarkFailed(ctx context.Context, reference uuid.UUID, reason string) error
	GetBooking(ctx context.Context, reference uuid.UUID) (*model.BookingRecord, error)
	ListBookings(ctx context.Context, status *model.BookingStatus, limit int) ([]model.BookingRecord, error)
}

type BookingService struct {
	resolver   PriceResolver
	repo       BookingRepository
	pdf        PDFGenerator
	excel      ExcelGenerator
	sender     mailer.Sender
	archive    storage.Archiver
	templates  mailer.Templates
	operatorTo []string
	log        zerolog.Logger
	now        func() time.Time
}

type SubmitResult struct {
	Reference uuid.UUID
	Quote     model.Quote
}

// NewBookingService wires the submission workflow. archive may be nil.
func NewBookingService(
	resolver PriceResolver,
	repo BookingRepository,
	pdfGenerator PDFGenerator,
	excelGenerator ExcelGenerator,
	sender mailer.Sender,
	archive storage.Archiver,
	cfg *config.Config,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		resolver:   resolver,
		repo:       repo,
		pdf:        pdfGenerator,
		excel:      excelGenerator,
		sender:     sender,
		archive:    archive,
		templates:  mailer.DefaultTemplates(),
		operatorTo: cfg.Mail.OperatorTo,
		log:        log.With().Str("component", "booking_service").Logger(),
		now:        time.Now,
	}
}

// Submit prices the booking server-side, renders the document and the
// breakdown workbook and notifies the operator and the guest.
func (s *BookingService) Submit(ctx context.Context, booking model.Booking) (*SubmitResult, error) {
	booking, err := validateBooking(booking)
	if err != nil {
		return nil, err
	}

	res := s.resolver.Resolve(ctx)
	q := quote.Round(quote.Compute(booking.Selection, res.Table))
	if booking.ClientGross > 0 && math.Abs(booking.ClientGross-q.Gross) > 0.01 {
		s.log.Warn().
			Float64("client_gross", booking.ClientGross).
			Float64("server_gross", q.Gross).
			Str("origin", string(res.Origin)).
			Msg("client total differs from server quote")
	}

	doc := model.BookingDocument{
		Reference:   uuid.New(),
		SubmittedAt: s.now(),
		Booking:     booking,
		Quote:       q,
	}
	doc.Intro = mailer.Render(s.templates.DocumentIntro, doc)
	doc.Closing = mailer.Render(s.templates.DocumentClosing, doc)

	record := model.BookingRecord{
		Reference:    doc.Reference,
		Status:       model.BookingStatusReceived,
		SeminarKind:  q.Kind,
		Company:      booking.Contact.Company,
		ContactName:  booking.Contact.Name,
		ContactEmail: booking.Contact.Email,
		Headcount:    q.Headcount,
		Days:         q.Days,
		Nights:       q.Nights,
		TotalGross:   q.Gross,
		TotalNet:     q.Net,
		PriceOrigin:  string(res.Origin),
		SubmittedAt:  doc.SubmittedAt,
	}
	if err := s.repo.CreateBooking(ctx, record); err != nil {
		s.log.Error().Err(err).Str("reference", doc.Reference.String()).Msg("failed to record booking")
	}

	document, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, s.fail(ctx, doc.Reference, fmt.Errorf("render document: %w", err))
	}
	workbook, err := s.excel.QuoteWorkbook(q, booking.Selection)
	if err != nil {
		return nil, s.fail(ctx, doc.Reference, fmt.Errorf("render workbook: %w", err))
	}

	pdfAttachment := model.Attachment{FileName: pdf.FileName(doc), ContentType: "application/pdf", Content: document}
	xlsxAttachment := model.Attachment{
		FileName:    strings.TrimSuffix(pdfAttachment.FileName, ".pdf") + ".xlsx",
		ContentType: excel.ContentType,
		Content:     workbook,
	}

	archiveURL := s.archiveDocument(ctx, doc, pdfAttachment)

	operatorMsg := model.Message{
		To:          s.operatorTo,
		ReplyTo:     booking.Contact.Email,
		Subject:     mailer.Render(s.templates.OperatorSubject, doc),
		Body:        mailer.Render(s.templates.OperatorBody, doc),
		Attachments: []model.Attachment{pdfAttachment, xlsxAttachment},
	}
	if err := s.sender.Send(ctx, operatorMsg); err != nil {
		return nil, s.fail(ctx, doc.Reference, fmt.Errorf("%w: operator notification: %v", ErrDelivery, err))
	}

	guestMsg := model.Message{
		To:          []string{booking.Contact.Email},
		Subject:     mailer.Render(s.templates.GuestSubject, doc),
		Body:        mailer.Render(s.templates.GuestBody, doc),
		Attachments: []model.Attachment{pdfAttachment},
	}
	if len(s.operatorTo) > 0 {
		guestMsg.ReplyTo = s.operatorTo[0]
	}
	if err := s.sender.Send(ctx, guestMsg); err != nil {
		return nil, s.fail(ctx, doc.Reference, fmt.Errorf("%w: guest confirmation: %v", ErrDelivery, err))
	}

	if err := s.repo.MarkDelivered(ctx, doc.Reference, archiveURL, s.now()); err != nil {
		s.log.Error().Err(err).Str("reference", doc.Reference.String()).Msg("failed to mark booking delivered")
	}

	s.log.Info().
		Str("reference", doc.Reference.String()).
		Str("kind", string(q.Kind)).
		Int("headcount", q.Headcount).
		Float64("gross", q.Gross).
		Msg("booking delivered")

	return &SubmitResult{Reference: doc.Reference, Quote: q}, nil
}

func (s *BookingService) Get(ctx context.Context, principal model.Principal, reference uuid.UUID) (*model.BookingRecord, error) {
	if !principal.CanViewBookings() {
		return nil, ErrPermissionDenied
	}
	record, err := s.repo.GetBooking(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *BookingService) List(
	ctx context.Context,
	principal model.Principal,
	status *model.BookingStatus,
	limit int,
) ([]model.BookingRecord, error) {
	if !principal.CanViewBookings() {
		return nil, ErrPermissionDenied
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListBookings(ctx, status, limit)
}

func (s *BookingService) archiveDocument(ctx context.Context, doc model.BookingDocument, attachment model.Attachment) *string {
	if s.archive == nil {
		return nil
	}
	key := fmt.Sprintf("bookings/%s/%s.pdf", doc.SubmittedAt.Format("2006/01"), doc.Reference)
	url, err := s.archive.Archive(ctx, key, attachment.ContentType, attachment.Content)
	if err != nil {
		s.log.Warn().Err(err).Str("reference", doc.Reference.String()).Msg("failed to archive booking document")
		return nil
	}
	return &url
}

func (s *BookingService) fail(ctx context.Context, reference uuid.UUID, err error) error {
	if markErr := s.repo.MarkFailed(ctx, reference, err.Error()); markErr != nil {
		s.log.Error().Err(markErr).Str("reference", reference.String()).Msg("failed to mark booking failed")
	}
	s.log.Error().Err(err).Str("reference", reference.String()).Msg("booking submission failed")
	return err
}

func validateBooking(booking model.Booking) (model.Booking, error) {
	booking.Contact.Name = strings.TrimSpace(booking.Contact.Name)
	booking.Contact.Email = strings.TrimSpace(booking.Contact.Email)

	if booking.Contact.Name == "" {
		return booking, fmt.Errorf("%w: contact name is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(booking.Contact.Email)
	if err != nil {
		return booking, fmt.Errorf("%w: contact email is invalid", ErrInvalidInput)
	}
	booking.Contact.Email = addr.Address

	sel, err := normalizeSelection(booking.Selection)
	if err != nil {
		return booking, err
	}
	if sel.Headcount.Int() <= 0 {
		return booking, fmt.Errorf("%w: headcount must be positive", ErrInvalidInput)
	}
	booking.Selection = sel
	return booking, nil
}
