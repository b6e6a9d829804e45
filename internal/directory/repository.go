package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrStaffNotFound      = errors.New("staff member not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
)

type DoctorUpdate struct {
	FirstName    *string
	LastName     *string
	EmployeeCode *string
	DepartmentID *uuid.UUID
	Specialty    *string
	Status       *string
	Schedule     *string
	ImageURL     *string
}

func (u DoctorUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.EmployeeCode == nil &&
		u.DepartmentID == nil && u.Specialty == nil && u.Status == nil &&
		u.Schedule == nil && u.ImageURL == nil
}

type StaffUpdate struct {
	FirstName    *string
	LastName     *string
	EmployeeCode *string
	Username     *string
	PasswordHash *string
	Contact      *string
	Role         *string
}

func (u StaffUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.EmployeeCode == nil &&
		u.Username == nil && u.PasswordHash == nil && u.Contact == nil && u.Role == nil
}

type Repository interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartmentByCode(ctx context.Context, code string) (*Department, error)

	ListDoctors(ctx context.Context, departmentCode, specialty string) ([]Doctor, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	CreateDoctor(ctx context.Context, d *Doctor) error
	UpdateDoctor(ctx context.Context, id uuid.UUID, u DoctorUpdate) (*Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error

	ListStaff(ctx context.Context) ([]Staff, error)
	CreateStaff(ctx context.Context, s *Staff, passwordHash string) error
	UpdateStaff(ctx context.Context, id uuid.UUID, u StaffUpdate) (*Staff, error)
	DeleteStaff(ctx context.Context, id uuid.UUID) error
}
