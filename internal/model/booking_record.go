package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusReceived  BookingStatus = "RECEIVED"
	BookingStatusDelivered BookingStatus = "DELIVERED"
	BookingStatusFailed    BookingStatus = "FAILED"
)

// BookingRecord is the persisted trace of one submitted booking request.
type BookingRecord struct {
	Reference     uuid.UUID     `json:"reference"`
	Status        BookingStatus `json:"status"`
	SeminarKind   SeminarKind   `json:"seminar_kind"`
	Company       string        `json:"company,omitempty"`
	ContactName   string        `json:"contact_name"`
	ContactEmail  string        `json:"contact_email"`
	Headcount     int           `json:"headcount"`
	Days          int           `json:"days"`
	Nights        int           `json:"nights"`
	TotalGross    float64       `json:"total_gross"`
	TotalNet      float64       `json:"total_net"`
	PriceOrigin   string        `json:"price_origin"`
	ArchiveURL    *string       `json:"archive_url,omitempty"`
	FailureReason *string       `json:"failure_reason,omitempty"`
	SubmittedAt   time.Time     `json:"submitted_at"`
	DeliveredAt   *time.Time    `json:"delivered_at,omitempty"`
}
