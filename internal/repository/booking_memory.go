package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/seminar-quote/internal/model"
)

// MemoryBookingRepository keeps booking records in process memory. The
// service falls back to it when no database is configured.
type MemoryBookingRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]model.BookingRecord
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{records: make(map[uuid.UUID]model.BookingRecord)}
}

func (r *MemoryBookingRepository) CreateBooking(_ context.Context, record model.BookingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.Reference] = record
	return nil
}

func (r *MemoryBookingRepository) MarkDelivered(
	_ context.Context,
	reference uuid.UUID,
	archiveURL *string,
	deliveredAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[reference]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = model.BookingStatusDelivered
	record.ArchiveURL = archiveURL
	record.DeliveredAt = &deliveredAt
	record.FailureReason = nil
	r.records[reference] = record
	return nil
}

func (r *MemoryBookingRepository) MarkFailed(_ context.Context, reference uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[reference]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = model.BookingStatusFailed
	record.FailureReason = &reason
	r.records[reference] = record
	return nil
}

func (r *MemoryBookingRepository) GetBooking(_ context.Context, reference uuid.UUID) (*model.BookingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[reference]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

func (r *MemoryBookingRepository) ListBookings(
	_ context.Context,
	status *model.BookingStatus,
	limit int,
) ([]model.BookingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]model.BookingRecord, 0, len(r.records))
	for _, record := range r.records {
		if status != nil && record.Status != *status {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmittedAt.After(records[j].SubmittedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
