package model

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	Company string `json:"company"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
}

// Booking is a submitted seminar request as sent by the form.
type Booking struct {
	Contact         Contact   `json:"contact"`
	Selection       Selection `json:"selection"`
	Seating         string    `json:"seating"`
	CateringPackage string    `json:"catering_package"`
	EquipmentNotes  []string  `json:"equipment_notes"`
	ActivityNotes   []string  `json:"activity_notes"`
	Notes           string    `json:"notes"`
	ClientGross     float64   `json:"total_gross"`
	ClientNet       float64   `json:"total_net"`
}

// BookingDocument is everything rendered into the generated document and
// the notification mails.
type BookingDocument struct {
	Reference   uuid.UUID
	SubmittedAt time.Time
	Booking     Booking
	Quote       Quote
	Intro       string
	Closing     string
}

type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []Attachment
}
