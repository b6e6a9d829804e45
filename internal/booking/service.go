package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/clinicqueue/booking-backend/internal/redis"
)

var (
	ErrSlotBusy = errors.New("slot is currently being booked, please retry")
)

// Service orchestrates the booking lifecycle on top of the slot
// manager's reserve/release primitives. Every multi-step write runs
// under the per-slot locks and a single transaction so a failure at
// any step leaves both the bookings and the occupancy counters as
// they were.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

type CreateBookingInput struct {
	PatientID      uuid.UUID
	SlotID         *uuid.UUID
	DoctorName     string
	Date           string // YYYY-MM-DD, required when SlotID is absent
	Time           string // HH:MM, required when SlotID is absent
	Symptoms       string
	DepartmentName string
	PatientName    string
}

type UpdateBookingInput struct {
	SlotID         *uuid.UUID
	Date           *string
	Time           *string
	DoctorName     *string
	DepartmentName *string
	Symptoms       *string
	PatientName    *string
	Status         *Status
}

func (in UpdateBookingInput) empty() bool {
	return in.SlotID == nil && in.Date == nil && in.Time == nil &&
		in.DoctorName == nil && in.DepartmentName == nil &&
		in.Symptoms == nil && in.PatientName == nil && in.Status == nil
}

// Create reserves a slot for a patient and persists a pending booking.
// A patient holds at most one live booking: any prior pending or
// checked-in booking is cancelled, and its slot released, as part of
// the same transaction.
func (s *Service) Create(ctx context.Context, in CreateBookingInput) (*Booking, error) {
	patient, err := s.repo.GetPatientByID(ctx, in.PatientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	slot, doctor, err := s.resolveSlot(ctx, in)
	if err != nil {
		return nil, err
	}

	// Lock the target slot plus the slot the patient's prior booking
	// holds, so supersede-and-reserve is one critical section.
	lockIDs := []uuid.UUID{slot.ID}
	if prior, err := s.repo.GetLiveBookingForPatient(ctx, in.PatientID); err == nil && prior.SlotID != nil {
		lockIDs = append(lockIDs, *prior.SlotID)
	} else if err != nil && !errors.Is(err, ErrBookingNotFound) {
		return nil, fmt.Errorf("check prior booking: %w", err)
	}

	detail := Detail{
		Symptoms:       in.Symptoms,
		DoctorName:     in.DoctorName,
		DepartmentName: in.DepartmentName,
		PatientName:    in.PatientName,
	}
	if detail.DoctorName == "" && doctor != nil {
		detail.DoctorName = doctor.FullName()
	}
	if detail.PatientName == "" {
		detail.PatientName = patient.FirstName + " " + patient.LastName
	}

	date := in.Date
	tm := in.Time
	if date == "" {
		date = slot.Date
	}
	if tm == "" {
		tm = slot.StartTime
	}

	token := displayToken(patient)

	var created *Booking
	err = s.locker.WithSlotLocks(ctx, lockIDs, func(lockCtx context.Context) error {
		return s.repo.WithinTx(lockCtx, func(r Repository) error {
			// Supersede the prior live booking, if any.
			prior, err := r.GetLiveBookingForPatient(lockCtx, in.PatientID)
			if err != nil && !errors.Is(err, ErrBookingNotFound) {
				return fmt.Errorf("check prior booking: %w", err)
			}
			if prior != nil {
				if prior.SlotID != nil && !lockHeld(lockIDs, *prior.SlotID) {
					// The prior booking moved onto a slot outside the
					// held lock set; retry under the right locks.
					return ErrSlotBusy
				}
				if prior.SlotID != nil {
					if err := r.ReleaseSlot(lockCtx, *prior.SlotID); err != nil {
						return fmt.Errorf("release superseded slot: %w", err)
					}
				}
				prior.Status = StatusCancelled
				prior.UpdatedAt = time.Now()
				if err := r.UpdateBooking(lockCtx, prior); err != nil {
					return fmt.Errorf("cancel superseded booking: %w", err)
				}
			}

			if err := r.ReserveSlot(lockCtx, slot.ID); err != nil {
				return err
			}

			now := time.Now()
			b := &Booking{
				ID:           uuid.New(),
				PatientID:    &in.PatientID,
				SlotID:       &slot.ID,
				BookingAt:    joinBookingAt(date, tm),
				Status:       StatusPending,
				Detail:       detail,
				DisplayToken: token,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := r.CreateBooking(lockCtx, b); err != nil {
				return err
			}

			created = b
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	s.log.Info().
		Str("booking_id", created.ID.String()).
		Str("patient_id", in.PatientID.String()).
		Str("slot_id", slot.ID.String()).
		Msg("booking created")

	return created, nil
}

// Reschedule updates a booking's slot, date-time, detail fields, or
// status. When the slot changes, the new slot is reserved before the
// old one is released, so a full new slot aborts the whole operation
// with the original booking untouched.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, in UpdateBookingInput) (*Booking, error) {
	if in.empty() {
		return nil, ErrNoFieldsToUpdate
	}

	current, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(ctx, current, in)
	if err != nil {
		return nil, err
	}

	var lockIDs []uuid.UUID
	if current.SlotID != nil {
		lockIDs = append(lockIDs, *current.SlotID)
	}
	if target != nil {
		lockIDs = append(lockIDs, target.ID)
	}

	var updated *Booking
	apply := func(lockCtx context.Context) error {
		return s.repo.WithinTx(lockCtx, func(r Repository) error {
			b, err := r.GetBookingByID(lockCtx, id)
			if err != nil {
				return err
			}

			finalStatus := b.Status
			if in.Status != nil {
				finalStatus = *in.Status
			}
			if b.Status == StatusCancelled && finalStatus != StatusCancelled {
				return ErrInvalidTransition
			}

			switch {
			case b.Status.Live() && finalStatus == StatusCancelled:
				if b.SlotID != nil {
					if err := r.ReleaseSlot(lockCtx, *b.SlotID); err != nil {
						return fmt.Errorf("release cancelled slot: %w", err)
					}
				}
			case target != nil && b.Status.Live() && (b.SlotID == nil || *b.SlotID != target.ID):
				// Reserve new before releasing old: fail closed when
				// the new slot has no capacity instead of vacating the
				// held one first.
				if err := r.ReserveSlot(lockCtx, target.ID); err != nil {
					return err
				}
				if b.SlotID != nil {
					if err := r.ReleaseSlot(lockCtx, *b.SlotID); err != nil {
						return fmt.Errorf("release previous slot: %w", err)
					}
				}
				slotID := target.ID
				b.SlotID = &slotID
			}

			date, tm := splitBookingAt(b.BookingAt)
			if target != nil && in.SlotID != nil {
				date, tm = target.Date, target.StartTime
			}
			if in.Date != nil {
				date = *in.Date
			}
			if in.Time != nil {
				tm = *in.Time
			}
			b.BookingAt = joinBookingAt(date, tm)

			if in.DoctorName != nil {
				b.Detail.DoctorName = *in.DoctorName
			}
			if in.DepartmentName != nil {
				b.Detail.DepartmentName = *in.DepartmentName
			}
			if in.Symptoms != nil {
				b.Detail.Symptoms = *in.Symptoms
			}
			if in.PatientName != nil {
				b.Detail.PatientName = *in.PatientName
			}

			b.Status = finalStatus
			b.UpdatedAt = time.Now()

			if err := r.UpdateBooking(lockCtx, b); err != nil {
				return err
			}
			updated = b
			return nil
		})
	}

	if len(lockIDs) == 0 {
		err = apply(ctx)
	} else {
		err = s.locker.WithSlotLocks(ctx, lockIDs, apply)
	}
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	return updated, nil
}

// Cancel releases the booking's slot and marks it cancelled. Calling
// it on an already cancelled booking is a no-op.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	current, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusCancelled {
		return current, nil
	}

	var lockIDs []uuid.UUID
	if current.SlotID != nil {
		lockIDs = append(lockIDs, *current.SlotID)
	}

	var cancelled *Booking
	apply := func(lockCtx context.Context) error {
		return s.repo.WithinTx(lockCtx, func(r Repository) error {
			b, err := r.GetBookingByID(lockCtx, id)
			if err != nil {
				return err
			}
			if b.Status == StatusCancelled {
				cancelled = b
				return nil
			}
			if b.Status.Live() && b.SlotID != nil {
				if err := r.ReleaseSlot(lockCtx, *b.SlotID); err != nil {
					return fmt.Errorf("release slot: %w", err)
				}
			}
			b.Status = StatusCancelled
			b.UpdatedAt = time.Now()
			if err := r.UpdateBooking(lockCtx, b); err != nil {
				return err
			}
			cancelled = b
			return nil
		})
	}

	if len(lockIDs) == 0 {
		err = apply(ctx)
	} else {
		err = s.locker.WithSlotLocks(ctx, lockIDs, apply)
	}
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	s.log.Info().Str("booking_id", id.String()).Msg("booking cancelled")
	return cancelled, nil
}

// CheckIn moves a pending booking to checked-in. The slot stays held
// through service completion.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case StatusCheckedIn:
		return b, nil
	case StatusPending:
		b.Status = StatusCheckedIn
		b.UpdatedAt = time.Now()
		if err := s.repo.UpdateBooking(ctx, b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, ErrInvalidTransition
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Booking, error) {
	return s.repo.ListBookings(ctx)
}

// VerifyByIdentityToken returns the most recent live booking for the
// patient whose identity document matches the token.
func (s *Service) VerifyByIdentityToken(ctx context.Context, token string) (*Booking, error) {
	return s.repo.FindLiveBookingByToken(ctx, token)
}

// resolveSlot turns the create request into a concrete slot: either
// the given slot id, or a (doctor name, date, time) lookup.
func (s *Service) resolveSlot(ctx context.Context, in CreateBookingInput) (*Slot, *Doctor, error) {
	if in.SlotID != nil {
		slot, err := s.repo.GetSlotByID(ctx, *in.SlotID)
		if err != nil {
			return nil, nil, err
		}
		doctor, err := s.repo.GetDoctorByID(ctx, slot.DoctorID)
		if err != nil {
			return nil, nil, err
		}
		return slot, doctor, nil
	}

	if in.DoctorName == "" || in.Date == "" || in.Time == "" {
		return nil, nil, ErrMissingBookingInfo
	}

	doctor, err := s.repo.FindDoctorByName(ctx, in.DoctorName)
	if err != nil {
		return nil, nil, err
	}

	slot, err := s.repo.FindSlotByDoctorTime(ctx, doctor.ID, in.Date, in.Time)
	if err != nil {
		return nil, nil, err
	}
	return slot, doctor, nil
}

// resolveTarget works out which slot a reschedule moves the booking
// onto, or nil when the update does not touch the slot.
func (s *Service) resolveTarget(ctx context.Context, current *Booking, in UpdateBookingInput) (*Slot, error) {
	if in.SlotID != nil {
		return s.repo.GetSlotByID(ctx, *in.SlotID)
	}

	if in.Date == nil && in.Time == nil && in.DoctorName == nil {
		return nil, nil
	}

	date, tm := splitBookingAt(current.BookingAt)
	if in.Date != nil {
		date = *in.Date
	}
	if in.Time != nil {
		tm = *in.Time
	}

	doctorName := current.Detail.DoctorName
	if in.DoctorName != nil {
		doctorName = *in.DoctorName
	}
	if doctorName != "" {
		doctor, err := s.repo.FindDoctorByName(ctx, doctorName)
		if err != nil {
			return nil, err
		}
		return s.repo.FindSlotByDoctorTime(ctx, doctor.ID, date, tm)
	}

	// No doctor name anywhere; fall back to the held slot's doctor so
	// a date or time change still moves occupancy onto a real slot.
	if current.SlotID == nil {
		return nil, nil
	}
	held, err := s.repo.GetSlotByID(ctx, *current.SlotID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindSlotByDoctorTime(ctx, held.DoctorID, date, tm)
}

func lockHeld(ids []uuid.UUID, id uuid.UUID) bool {
	for _, held := range ids {
		if held == id {
			return true
		}
	}
	return false
}

func displayToken(p *Patient) string {
	if p.NationalID != nil && *p.NationalID != "" {
		return *p.NationalID
	}
	return randomDigits(10)
}

func randomDigits(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}
