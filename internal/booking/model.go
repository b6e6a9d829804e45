package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCheckedIn Status = "checked_in"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Live reports whether a status still holds slot capacity.
func (s Status) Live() bool {
	return s == StatusPending || s == StatusCheckedIn
}

// ParseStatus normalizes the wire vocabulary, including the legacy
// aliases older clients still send.
func ParseStatus(raw string) (Status, bool) {
	switch raw {
	case "pending", "booked":
		return StatusPending, true
	case "checked_in", "arrived":
		return StatusCheckedIn, true
	case "cancelled":
		return StatusCancelled, true
	case "completed":
		return StatusCompleted, true
	default:
		return "", false
	}
}

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBlocked   SlotStatus = "blocked"
)

type Patient struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	NationalID *string
}

type Doctor struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	DepartmentID *uuid.UUID
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Slot is one bookable (doctor, date, time-range) capacity unit.
// Occupancy is only ever changed through guarded reserve/release
// updates; the status label is informational.
type Slot struct {
	ID           uuid.UUID
	DoctorID     uuid.UUID
	DepartmentID *uuid.UUID
	Date         string // YYYY-MM-DD
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	Capacity     int
	Occupancy    int
	Status       SlotStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Detail is the denormalized display payload carried with a booking
// so listings need no joins. It round-trips through the detail JSONB
// column untouched.
type Detail struct {
	Symptoms       string `json:"symptoms,omitempty"`
	DoctorName     string `json:"doctorName,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
	PatientName    string `json:"patientName,omitempty"`
}

type Booking struct {
	ID           uuid.UUID
	PatientID    *uuid.UUID
	SlotID       *uuid.UUID
	BookingAt    string // "YYYY-MM-DD HH:MM"
	Status       Status
	Detail       Detail
	DisplayToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Date returns the date half of the combined booking_at string.
func (b *Booking) Date() string {
	d, _ := splitBookingAt(b.BookingAt)
	return d
}

// Time returns the time half of the combined booking_at string.
func (b *Booking) Time() string {
	_, t := splitBookingAt(b.BookingAt)
	return t
}

func splitBookingAt(at string) (date, tm string) {
	parts := strings.SplitN(strings.TrimSpace(at), " ", 2)
	if len(parts) == 0 {
		return "", ""
	}
	date = parts[0]
	if len(parts) > 1 {
		tm = parts[1]
	}
	return date, tm
}

func joinBookingAt(date, tm string) string {
	return strings.TrimSpace(date + " " + tm)
}
