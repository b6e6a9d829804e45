package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicqueue/booking-backend/internal/db"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Str("service", "seed").Logger()

var departments = []struct {
	Code string
	Name string
}{
	{"med", "Internal Medicine"},
	{"dent", "Dentistry"},
	{"ortho", "Orthopedic Surgery"},
	{"pedia", "Pediatrics"},
}

func main() {
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, 4)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	gofakeit.Seed(time.Now().UnixNano())

	// One bcrypt hash shared by all seeded accounts keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash seed password")
	}

	deptIDs, err := seedDepartments(context.Background(), pool)
	if err != nil {
		log.Fatal().Err(err).Msg("seed departments")
	}
	doctorIDs, err := seedDoctors(context.Background(), pool, deptIDs, 40)
	if err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(context.Background(), pool, string(hash), 500); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedStaff(context.Background(), pool, string(hash)); err != nil {
		log.Fatal().Err(err).Msg("seed staff")
	}
	if err := seedSlots(context.Background(), pool, doctorIDs, 14); err != nil {
		log.Fatal().Err(err).Msg("seed slots")
	}

	log.Info().Msg("seed complete")
}

func seedDepartments(ctx context.Context, pool *pgxpool.Pool) (map[string]uuid.UUID, error) {
	log.Info().Int("count", len(departments)).Msg("seeding departments")

	ids := make(map[string]uuid.UUID, len(departments))
	for _, d := range departments {
		id := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO departments (id, code, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO NOTHING
		`, id, d.Code, d.Name)
		if err != nil {
			return nil, err
		}

		// Re-read in case the department already existed.
		var existing uuid.UUID
		if err := pool.QueryRow(ctx, `SELECT id FROM departments WHERE code = $1`, d.Code).Scan(&existing); err != nil {
			return nil, err
		}
		ids[d.Code] = existing
	}
	return ids, nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, deptIDs map[string]uuid.UUID, count int) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding doctors")

	specialties := []string{
		"General Practice",
		"Cardiology",
		"Dermatology",
		"Orthopedics",
		"Pediatrics",
		"Endodontics",
		"Neurology",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var ids []uuid.UUID
	for i := 0; i < count; i++ {
		id := uuid.New()
		dept := departments[gofakeit.Number(0, len(departments)-1)]
		deptID := deptIDs[dept.Code]
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]
		code := fmt.Sprintf("DOC-%04d", i+1)

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, first_name, last_name, employee_code, department_id, specialty, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'available')
		`, id, gofakeit.FirstName(), gofakeit.LastName(), code, deptID, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("doctors seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 100

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			nationalID := fmt.Sprintf("%013d", gofakeit.Number(1000000000000, 9999999999999))

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, first_name, last_name, email, phone, national_id, password_hash)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, id, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Email(), gofakeit.Phone(), nationalID, passwordHash)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Info().Int("done", end).Int("total", count).Msg("patients seeded")
	}

	return nil
}

func seedStaff(ctx context.Context, pool *pgxpool.Pool, passwordHash string) error {
	log.Info().Msg("seeding staff")

	_, err := pool.Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, employee_code, username, password_hash, role)
		VALUES ($1, $2, $3, 'EMP-0001', 'admin', $4, 'admin')
		ON CONFLICT (username) DO NOTHING
	`, uuid.New(), gofakeit.FirstName(), gofakeit.LastName(), passwordHash)
	return err
}

// seedSlots lays out a morning-and-afternoon grid of half-hour slots
// for each doctor over the coming days.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID, days int) error {
	log.Info().Int("doctors", len(doctorIDs)).Int("days", days).Msg("seeding slots")

	starts := []string{"09:00", "09:30", "10:00", "10:30", "13:00", "13:30", "14:00", "14:30"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, docID := range doctorIDs {
		var deptID *uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT department_id FROM doctors WHERE id = $1`, docID).Scan(&deptID); err != nil {
			return err
		}

		for day := 0; day < days; day++ {
			date := time.Now().AddDate(0, 0, day).Format("2006-01-02")
			for _, start := range starts {
				end, err := addHalfHour(start)
				if err != nil {
					return err
				}
				capacity := gofakeit.Number(1, 3)

				_, err = tx.Exec(ctx, `
					INSERT INTO appointment_slots (id, doctor_id, department_id, slot_date, start_time, end_time, capacity, occupancy, status)
					VALUES ($1, $2, $3, $4::date, $5, $6, $7, 0, 'available')
					ON CONFLICT (doctor_id, slot_date, start_time) DO NOTHING
				`, uuid.New(), docID, deptID, date, start, end, capacity)
				if err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Msg("slots seeded")
	return nil
}

func addHalfHour(start string) (string, error) {
	t, err := time.Parse("15:04", start)
	if err != nil {
		return "", fmt.Errorf("parse start time %q: %w", start, err)
	}
	return t.Add(30 * time.Minute).Format("15:04"), nil
}
