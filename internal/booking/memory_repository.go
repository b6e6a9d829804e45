package booking

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository with the same guarded
// reserve/release semantics as the Postgres implementation. It backs
// tests and local development without a database.
type MemoryRepository struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*Patient
	doctors  map[uuid.UUID]*Doctor
	slots    map[uuid.UUID]*Slot
	bookings map[uuid.UUID]*Booking
	inTx     bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		patients: make(map[uuid.UUID]*Patient),
		doctors:  make(map[uuid.UUID]*Doctor),
		slots:    make(map[uuid.UUID]*Slot),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

// AddPatient seeds a patient record.
func (m *MemoryRepository) AddPatient(p Patient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patients[p.ID] = &p
}

// AddDoctor seeds a doctor record.
func (m *MemoryRepository) AddDoctor(d Doctor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doctors[d.ID] = &d
}

// WithinTx serializes against all other repository access and rolls
// slot and booking state back when fn fails, mirroring a database
// transaction.
func (m *MemoryRepository) WithinTx(ctx context.Context, fn func(r Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapSlots := cloneMap(m.slots)
	snapBookings := cloneMap(m.bookings)

	txRepo := &MemoryRepository{
		patients: m.patients,
		doctors:  m.doctors,
		slots:    m.slots,
		bookings: m.bookings,
		inTx:     true,
	}

	if err := fn(txRepo); err != nil {
		m.slots = snapSlots
		m.bookings = snapBookings
		return err
	}
	return nil
}

func cloneMap[T any](src map[uuid.UUID]*T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(src))
	for k, v := range src {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (m *MemoryRepository) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	defer m.lock()()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	defer m.lock()()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepository) FindDoctorByName(ctx context.Context, fullName string) (*Doctor, error) {
	defer m.lock()()
	for _, d := range m.doctors {
		if d.FullName() == fullName {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (m *MemoryRepository) CreateSlot(ctx context.Context, s *Slot) error {
	defer m.lock()()
	for _, existing := range m.slots {
		if existing.DoctorID == s.DoctorID && existing.Date == s.Date && existing.StartTime == s.StartTime {
			return ErrDuplicateSlot
		}
	}
	cp := *s
	m.slots[s.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	defer m.lock()()
	return m.getSlot(id)
}

func (m *MemoryRepository) getSlot(id uuid.UUID) (*Slot, error) {
	s, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryRepository) FindSlotByDoctorTime(ctx context.Context, doctorID uuid.UUID, date, startTime string) (*Slot, error) {
	defer m.lock()()
	for _, s := range m.slots {
		if s.DoctorID == doctorID && s.Date == date && s.StartTime == startTime {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrSlotNotFound
}

func (m *MemoryRepository) ListSlotsByDoctor(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, error) {
	defer m.lock()()
	var result []Slot
	for _, s := range m.slots {
		if s.DoctorID != doctorID {
			continue
		}
		if date != "" && s.Date != date {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *MemoryRepository) ReserveSlot(ctx context.Context, id uuid.UUID) error {
	defer m.lock()()
	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	if s.Occupancy >= s.Capacity {
		return ErrSlotFull
	}
	s.Occupancy++
	return nil
}

func (m *MemoryRepository) ReleaseSlot(ctx context.Context, id uuid.UUID) error {
	defer m.lock()()
	s, ok := m.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	if s.Occupancy <= 0 {
		return ErrSlotNotHeld
	}
	s.Occupancy--
	return nil
}

func (m *MemoryRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	defer m.lock()()
	if _, ok := m.slots[id]; !ok {
		return ErrSlotNotFound
	}
	delete(m.slots, id)
	return nil
}

func (m *MemoryRepository) CountLiveBookingsForSlot(ctx context.Context, slotID uuid.UUID) (int, error) {
	defer m.lock()()
	n := 0
	for _, b := range m.bookings {
		if b.SlotID != nil && *b.SlotID == slotID && b.Status.Live() {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) CreateBooking(ctx context.Context, b *Booking) error {
	defer m.lock()()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	defer m.lock()()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MemoryRepository) UpdateBooking(ctx context.Context, b *Booking) error {
	defer m.lock()()
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrBookingNotFound
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListBookings(ctx context.Context) ([]Booking, error) {
	defer m.lock()()
	var result []Booking
	for _, b := range m.bookings {
		result = append(result, *b)
	}
	return result, nil
}

func (m *MemoryRepository) GetLiveBookingForPatient(ctx context.Context, patientID uuid.UUID) (*Booking, error) {
	defer m.lock()()
	var latest *Booking
	for _, b := range m.bookings {
		if b.PatientID == nil || *b.PatientID != patientID || !b.Status.Live() {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return nil, ErrBookingNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryRepository) FindLiveBookingByToken(ctx context.Context, identityToken string) (*Booking, error) {
	defer m.lock()()
	var latest *Booking
	for _, b := range m.bookings {
		if b.PatientID == nil || !b.Status.Live() {
			continue
		}
		p, ok := m.patients[*b.PatientID]
		if !ok || p.NationalID == nil || *p.NationalID != identityToken {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return nil, ErrBookingNotFound
	}
	cp := *latest
	return &cp, nil
}
