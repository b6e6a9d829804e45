package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")

	ErrSlotFull      = errors.New("slot is full")
	ErrSlotNotHeld   = errors.New("slot has no occupancy to release")
	ErrSlotInUse     = errors.New("slot has live bookings")
	ErrDuplicateSlot = errors.New("slot already exists for this doctor and time")

	ErrInvalidCapacity    = errors.New("capacity must be a positive integer")
	ErrMissingBookingInfo = errors.New("missing booking information")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// Repository contains all DB interactions needed by the slot manager
// and the booking service. WithinTx hands the callback a repository
// whose writes are committed together or not at all.
type Repository interface {
	WithinTx(ctx context.Context, fn func(r Repository) error) error

	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	FindDoctorByName(ctx context.Context, fullName string) (*Doctor, error)

	CreateSlot(ctx context.Context, s *Slot) error
	GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	FindSlotByDoctorTime(ctx context.Context, doctorID uuid.UUID, date, startTime string) (*Slot, error)
	ListSlotsByDoctor(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, error)

	// ReserveSlot is an atomic check-and-increment: it succeeds only
	// while occupancy < capacity. ReleaseSlot is the mirror guarded
	// decrement and fails with ErrSlotNotHeld at zero occupancy.
	ReserveSlot(ctx context.Context, id uuid.UUID) error
	ReleaseSlot(ctx context.Context, id uuid.UUID) error
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	CountLiveBookingsForSlot(ctx context.Context, slotID uuid.UUID) (int, error)

	CreateBooking(ctx context.Context, b *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateBooking(ctx context.Context, b *Booking) error
	ListBookings(ctx context.Context) ([]Booking, error)
	GetLiveBookingForPatient(ctx context.Context, patientID uuid.UUID) (*Booking, error)
	FindLiveBookingByToken(ctx context.Context, identityToken string) (*Booking, error)
}
