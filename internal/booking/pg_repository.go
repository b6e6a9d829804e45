package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same
// query methods serve pooled reads and transactional writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool, q: pool}
}

// WithinTx runs fn against a repository bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// so multi-step booking operations are all-or-nothing.
func (r *PgRepository) WithinTx(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PgRepository{pool: r.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.NationalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.DepartmentID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.Capacity,
		&s.Occupancy,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var detail []byte

	err := row.Scan(
		&b.ID,
		&b.PatientID,
		&b.SlotID,
		&b.BookingAt,
		&b.Status,
		&detail,
		&b.DisplayToken,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &b.Detail); err != nil {
			return nil, fmt.Errorf("decode booking detail: %w", err)
		}
	}
	return &b, nil
}

const slotColumns = `id, doctor_id, department_id, slot_date::text, start_time, end_time, capacity, occupancy, status, created_at, updated_at`

const bookingColumns = `id, patient_id, slot_id, booking_at, status, detail, display_token, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, first_name, last_name, national_id
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, first_name, last_name, department_id
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) FindDoctorByName(ctx context.Context, fullName string) (*Doctor, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, first_name, last_name, department_id
		FROM doctors
		WHERE trim(first_name || ' ' || last_name) = trim($1)
	`, fullName)
	return scanDoctor(row)
}

func (r *PgRepository) CreateSlot(ctx context.Context, s *Slot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO appointment_slots
			(id, doctor_id, department_id, slot_date, start_time, end_time, capacity, occupancy, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, now(), now())
	`, s.ID, s.DoctorID, s.DepartmentID, s.Date, s.StartTime, s.EndTime, s.Capacity, s.Occupancy, s.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM appointment_slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) FindSlotByDoctorTime(ctx context.Context, doctorID uuid.UUID, date, startTime string) (*Slot, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM appointment_slots
		WHERE doctor_id = $1 AND slot_date = $2::date AND start_time = $3
	`, doctorID, date, startTime)
	return scanSlot(row)
}

func (r *PgRepository) ListSlotsByDoctor(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM appointment_slots
		WHERE doctor_id = $1`
	args := []any{doctorID}
	if date != "" {
		query += ` AND slot_date = $2::date`
		args = append(args, date)
	}
	query += ` ORDER BY slot_date, start_time`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *PgRepository) ReserveSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE appointment_slots
		SET occupancy = occupancy + 1,
		    updated_at = now()
		WHERE id = $1
		  AND occupancy < capacity
	`, id)
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetSlotByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotFull
	}
	return nil
}

func (r *PgRepository) ReleaseSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE appointment_slots
		SET occupancy = occupancy - 1,
		    updated_at = now()
		WHERE id = $1
		  AND occupancy > 0
	`, id)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetSlotByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotNotHeld
	}
	return nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM appointment_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (r *PgRepository) CountLiveBookingsForSlot(ctx context.Context, slotID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*)
		FROM bookings
		WHERE slot_id = $1 AND status IN ($2, $3)
	`, slotID, StatusPending, StatusCheckedIn).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PgRepository) CreateBooking(ctx context.Context, b *Booking) error {
	detail, err := json.Marshal(b.Detail)
	if err != nil {
		return fmt.Errorf("encode booking detail: %w", err)
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO bookings
			(id, patient_id, slot_id, booking_at, status, detail, display_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, b.ID, b.PatientID, b.SlotID, b.BookingAt, b.Status, detail, b.DisplayToken, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PgRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) UpdateBooking(ctx context.Context, b *Booking) error {
	detail, err := json.Marshal(b.Detail)
	if err != nil {
		return fmt.Errorf("encode booking detail: %w", err)
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE bookings
		SET slot_id = $2,
		    booking_at = $3,
		    status = $4,
		    detail = $5,
		    updated_at = $6
		WHERE id = $1
	`, b.ID, b.SlotID, b.BookingAt, b.Status, detail, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *PgRepository) ListBookings(ctx context.Context) ([]Booking, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetLiveBookingForPatient(ctx context.Context, patientID uuid.UUID) (*Booking, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE patient_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, patientID, StatusPending, StatusCheckedIn)
	return scanBooking(row)
}

func (r *PgRepository) FindLiveBookingByToken(ctx context.Context, identityToken string) (*Booking, error) {
	row := r.q.QueryRow(ctx, `
		SELECT b.id, b.patient_id, b.slot_id, b.booking_at, b.status, b.detail, b.display_token, b.created_at, b.updated_at
		FROM bookings b
		JOIN patients p ON b.patient_id = p.id
		WHERE p.national_id = $1 AND b.status IN ($2, $3)
		ORDER BY b.created_at DESC
		LIMIT 1
	`, identityToken, StatusPending, StatusCheckedIn)
	return scanBooking(row)
}
