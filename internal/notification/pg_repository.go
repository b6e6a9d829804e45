package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicqueue/booking-backend/internal/booking"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) RecentLogins(ctx context.Context) ([]LoginRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, last_login_at
		FROM patients
		WHERE last_login_at IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LoginRecord
	for rows.Next() {
		var l LoginRecord
		if err := rows.Scan(&l.PatientID, &l.FirstName, &l.LastName, &l.LoggedIn); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (r *PgRepository) ActiveBookings(ctx context.Context) ([]BookingRecord, error) {
	return r.queryBookings(ctx, `
		SELECT patient_id, booking_at, status, detail, created_at, updated_at
		FROM bookings
		WHERE status NOT IN ($1, $2)
	`, booking.StatusCancelled, booking.StatusCompleted)
}

func (r *PgRepository) CancelledBookings(ctx context.Context) ([]BookingRecord, error) {
	return r.queryBookings(ctx, `
		SELECT patient_id, booking_at, status, detail, created_at, updated_at
		FROM bookings
		WHERE status = $1
	`, booking.StatusCancelled)
}

func (r *PgRepository) queryBookings(ctx context.Context, query string, args ...any) ([]BookingRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BookingRecord
	for rows.Next() {
		b, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func scanRecord(row pgx.Row) (*BookingRecord, error) {
	var b BookingRecord
	var detail []byte

	err := row.Scan(&b.PatientID, &b.BookingAt, &b.Status, &detail, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &b.Detail); err != nil {
			return nil, fmt.Errorf("decode booking detail: %w", err)
		}
	}
	return &b, nil
}
