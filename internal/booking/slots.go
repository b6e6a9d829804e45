package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SlotManager is the sole authority over slot lifecycle and occupancy.
type SlotManager struct {
	repo Repository
	log  zerolog.Logger
}

func NewSlotManager(repo Repository, log zerolog.Logger) *SlotManager {
	return &SlotManager{repo: repo, log: log}
}

type CreateSlotInput struct {
	DoctorID  uuid.UUID
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Capacity  int
}

// CreateSlot registers a new bookable unit with occupancy zero. The
// department is taken from the doctor's record. A second slot for the
// same (doctor, date, start) is rejected.
func (m *SlotManager) CreateSlot(ctx context.Context, in CreateSlotInput) (*Slot, error) {
	if in.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if in.Date == "" || in.StartTime == "" || in.EndTime == "" {
		return nil, ErrMissingBookingInfo
	}

	doc, err := m.repo.GetDoctorByID(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	slot := &Slot{
		ID:           uuid.New(),
		DoctorID:     doc.ID,
		DepartmentID: doc.DepartmentID,
		Date:         in.Date,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Capacity:     in.Capacity,
		Occupancy:    0,
		Status:       SlotAvailable,
	}

	if err := m.repo.CreateSlot(ctx, slot); err != nil {
		return nil, err
	}

	m.log.Info().
		Str("slot_id", slot.ID.String()).
		Str("doctor_id", doc.ID.String()).
		Str("date", slot.Date).
		Str("start", slot.StartTime).
		Int("capacity", slot.Capacity).
		Msg("slot created")

	return slot, nil
}

func (m *SlotManager) GetSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	return m.repo.GetSlotByID(ctx, id)
}

// FindSlot resolves a (doctor, date, start) request into a slot when
// the caller has no slot id.
func (m *SlotManager) FindSlot(ctx context.Context, doctorID uuid.UUID, date, startTime string) (*Slot, error) {
	return m.repo.FindSlotByDoctorTime(ctx, doctorID, date, startTime)
}

func (m *SlotManager) ListDoctorSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, error) {
	return m.repo.ListSlotsByDoctor(ctx, doctorID, date)
}

// DeleteSlot removes a slot. Deletion is refused while any live
// booking still references it.
func (m *SlotManager) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return m.repo.WithinTx(ctx, func(r Repository) error {
		n, err := r.CountLiveBookingsForSlot(ctx, id)
		if err != nil {
			return fmt.Errorf("count live bookings: %w", err)
		}
		if n > 0 {
			return ErrSlotInUse
		}
		return r.DeleteSlot(ctx, id)
	})
}
