package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients
			(id, first_name, last_name, email, phone, national_id, birth_date, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, now(), now())
	`, p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.NationalID, p.BirthDate, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PgRepository) FindPatientByIdentifier(ctx context.Context, identifier string) (*Patient, string, error) {
	var p Patient
	var hash string
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, national_id, birth_date::text, last_login_at, password_hash, created_at, updated_at
		FROM patients
		WHERE phone = $1 OR national_id = $1
	`, identifier).Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.NationalID,
		&p.BirthDate,
		&p.LastLoginAt,
		&hash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	return &p, hash, nil
}

func (r *PgRepository) PatientExists(ctx context.Context, email, phone string) (bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM patients WHERE email = $1 OR phone = $2
	`, email, phone).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PgRepository) StampPatientLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET last_login_at = $2, updated_at = now() WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("stamp patient login: %w", err)
	}
	return nil
}

func (r *PgRepository) FindStaffByUsername(ctx context.Context, username string) (*StaffAccount, string, error) {
	var s StaffAccount
	var hash string
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, username, role, password_hash, created_at
		FROM staff
		WHERE username = $1
	`, username).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Username, &s.Role, &hash, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	return &s, hash, nil
}
