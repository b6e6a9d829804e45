package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

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

const doctorColumns = `id, first_name, last_name, employee_code, department_id, specialty, status, schedule, image_url, created_at, updated_at`

const staffColumns = `id, first_name, last_name, employee_code, username, contact, role, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.EmployeeCode,
		&d.DepartmentID,
		&d.Specialty,
		&d.Status,
		&d.Schedule,
		&d.ImageURL,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.EmployeeCode,
		&s.Username,
		&s.Contact,
		&s.Role,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PgRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, created_at, updated_at
		FROM departments
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetDepartmentByCode(ctx context.Context, code string) (*Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, name, created_at, updated_at
		FROM departments
		WHERE code = $1
	`, code).Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PgRepository) ListDoctors(ctx context.Context, departmentCode, specialty string) ([]Doctor, error) {
	query := `
		SELECT ` + prefixed("d", doctorColumns) + `
		FROM doctors d`
	var args []any

	switch {
	case departmentCode != "":
		query += `
		JOIN departments dep ON d.department_id = dep.id
		WHERE dep.code = $1`
		args = append(args, departmentCode)
	case specialty != "":
		query += `
		WHERE d.specialty = $1`
		args = append(args, specialty)
	}
	query += `
		ORDER BY d.last_name, d.first_name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors
			(id, first_name, last_name, employee_code, department_id, specialty, status, schedule, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	`, d.ID, d.FirstName, d.LastName, d.EmployeeCode, d.DepartmentID, d.Specialty, d.Status, d.Schedule, d.ImageURL)
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, id uuid.UUID, u DoctorUpdate) (*Doctor, error) {
	set, args := buildSet(map[string]any{
		"first_name":    strPtrArg(u.FirstName),
		"last_name":     strPtrArg(u.LastName),
		"employee_code": strPtrArg(u.EmployeeCode),
		"department_id": uuidPtrArg(u.DepartmentID),
		"specialty":     strPtrArg(u.Specialty),
		"status":        strPtrArg(u.Status),
		"schedule":      strPtrArg(u.Schedule),
		"image_url":     strPtrArg(u.ImageURL),
	})
	if len(args) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE doctors
		SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING `+doctorColumns, set, len(args))

	return scanDoctor(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgRepository) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *PgRepository) CreateStaff(ctx context.Context, s *Staff, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff
			(id, first_name, last_name, employee_code, username, password_hash, contact, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, s.ID, s.FirstName, s.LastName, s.EmployeeCode, s.Username, passwordHash, s.Contact, s.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateStaff(ctx context.Context, id uuid.UUID, u StaffUpdate) (*Staff, error) {
	set, args := buildSet(map[string]any{
		"first_name":    strPtrArg(u.FirstName),
		"last_name":     strPtrArg(u.LastName),
		"employee_code": strPtrArg(u.EmployeeCode),
		"username":      strPtrArg(u.Username),
		"password_hash": strPtrArg(u.PasswordHash),
		"contact":       strPtrArg(u.Contact),
		"role":          strPtrArg(u.Role),
	})
	if len(args) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE staff
		SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING `+staffColumns, set, len(args))

	s, err := scanStaff(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return s, nil
}

func (r *PgRepository) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaffNotFound
	}
	return nil
}

// buildSet turns the non-nil columns into "col = $n" clauses with
// positional args, preserving a stable column order.
func buildSet(cols map[string]any) (string, []any) {
	keys := make([]string, 0, len(cols))
	for k, v := range cols {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var clauses []string
	var args []any
	for _, k := range keys {
		args = append(args, cols[k])
		clauses = append(clauses, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	return strings.Join(clauses, ", "), args
}

func strPtrArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func uuidPtrArg(p *uuid.UUID) any {
	if p == nil {
		return nil
	}
	return *p
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
