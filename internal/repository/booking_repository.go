package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/seminar-quote/internal/model"
)

const bookingColumns = `
	reference,
	status,
	seminar_kind,
	company,
	contact_name,
	contact_email,
	headcount,
	days,
	nights,
	total_gross,
	total_net,
	price_origin,
	archive_url,
	failure_reason,
	submitted_at,
	delivered_at
`

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, record model.BookingRecord) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO booking_request (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.Reference,
		record.Status,
		record.SeminarKind,
		record.Company,
		record.ContactName,
		record.ContactEmail,
		record.Headcount,
		record.Days,
		record.Nights,
		record.TotalGross,
		record.TotalNet,
		record.PriceOrigin,
		record.ArchiveURL,
		record.FailureReason,
		record.SubmittedAt,
		record.DeliveredAt,
	).Error
}

// MarkDelivered closes a booking after both mails went out.
func (r *BookingRepository) MarkDelivered(
	ctx context.Context,
	reference uuid.UUID,
	archiveURL *string,
	deliveredAt time.Time,
) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE booking_request
		SET
			status = ?,
			archive_url = ?,
			delivered_at = ?,
			failure_reason = NULL
		WHERE reference = ?
	`, model.BookingStatusDelivered, archiveURL, deliveredAt, reference).Error
}

func (r *BookingRepository) MarkFailed(ctx context.Context, reference uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE booking_request
		SET
			status = ?,
			failure_reason = ?
		WHERE reference = ?
	`, model.BookingStatusFailed, reason, reference).Error
}

func (r *BookingRepository) GetBooking(ctx context.Context, reference uuid.UUID) (*model.BookingRecord, error) {
	var record model.BookingRecord
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+bookingColumns+`
		FROM booking_request
		WHERE reference = ?
		LIMIT 1
	`, reference).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.Reference == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

// ListBookings returns the newest bookings first, optionally by status.
func (r *BookingRepository) ListBookings(
	ctx context.Context,
	status *model.BookingStatus,
	limit int,
) ([]model.BookingRecord, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_request`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY submitted_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var records []model.BookingRecord
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
