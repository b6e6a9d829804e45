package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// A migration is applied at most once, inside its own transaction.
// Steps are additive only: new tables, new columns, new indexes.
type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "create_departments",
		SQL: `
			CREATE TABLE IF NOT EXISTS departments (
				id         UUID PRIMARY KEY,
				code       TEXT NOT NULL UNIQUE,
				name       TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		Version: 2,
		Name:    "create_doctors",
		SQL: `
			CREATE TABLE IF NOT EXISTS doctors (
				id            UUID PRIMARY KEY,
				first_name    TEXT NOT NULL,
				last_name     TEXT NOT NULL DEFAULT '',
				employee_code TEXT,
				department_id UUID REFERENCES departments(id),
				specialty     TEXT,
				status        TEXT NOT NULL DEFAULT 'available',
				schedule      TEXT,
				image_url     TEXT,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		Version: 3,
		Name:    "create_patients",
		SQL: `
			CREATE TABLE IF NOT EXISTS patients (
				id            UUID PRIMARY KEY,
				first_name    TEXT NOT NULL,
				last_name     TEXT NOT NULL DEFAULT '',
				email         TEXT NOT NULL UNIQUE,
				phone         TEXT NOT NULL UNIQUE,
				national_id   TEXT,
				birth_date    DATE,
				password_hash TEXT NOT NULL,
				last_login_at TIMESTAMPTZ,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		Version: 4,
		Name:    "create_staff",
		SQL: `
			CREATE TABLE IF NOT EXISTS staff (
				id            UUID PRIMARY KEY,
				first_name    TEXT NOT NULL,
				last_name     TEXT NOT NULL DEFAULT '',
				employee_code TEXT,
				username      TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				contact       TEXT,
				role          TEXT NOT NULL DEFAULT 'staff',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		Version: 5,
		Name:    "create_appointment_slots",
		SQL: `
			CREATE TABLE IF NOT EXISTS appointment_slots (
				id            UUID PRIMARY KEY,
				doctor_id     UUID NOT NULL REFERENCES doctors(id),
				department_id UUID REFERENCES departments(id),
				slot_date     DATE NOT NULL,
				start_time    TEXT NOT NULL,
				end_time      TEXT NOT NULL,
				capacity      INTEGER NOT NULL CHECK (capacity > 0),
				occupancy     INTEGER NOT NULL DEFAULT 0 CHECK (occupancy >= 0 AND occupancy <= capacity),
				status        TEXT NOT NULL DEFAULT 'available',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (doctor_id, slot_date, start_time)
			)`,
	},
	{
		Version: 6,
		Name:    "create_bookings",
		SQL: `
			CREATE TABLE IF NOT EXISTS bookings (
				id            UUID PRIMARY KEY,
				patient_id    UUID REFERENCES patients(id),
				slot_id       UUID REFERENCES appointment_slots(id),
				booking_at    TEXT NOT NULL DEFAULT '',
				status        TEXT NOT NULL,
				detail        JSONB NOT NULL DEFAULT '{}'::jsonb,
				display_token TEXT NOT NULL DEFAULT '',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		Version: 7,
		Name:    "index_bookings_patient_status",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_bookings_patient_status
				ON bookings (patient_id, status)`,
	},
	{
		Version: 8,
		Name:    "index_bookings_slot",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_bookings_slot
				ON bookings (slot_id)`,
	},
}

// Migrate brings the schema up to date. Already-applied versions are
// skipped via the schema_migrations ledger.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := isApplied(ctx, pool, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := apply(ctx, pool, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

func isApplied(ctx context.Context, pool *pgxpool.Pool, version int) (bool, error) {
	var v int
	err := pool.QueryRow(ctx, `SELECT version FROM schema_migrations WHERE version = $1`, version).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check migration %d: %w", version, err)
	}
	return true, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, m migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
