package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var ErrMissingFields = errors.New("missing required fields")

// Service owns the doctor, department, and staff directory. It has no
// slot or booking invariants of its own.
type Service struct {
	repo       Repository
	bcryptCost int
	log        zerolog.Logger
}

func NewService(repo Repository, bcryptCost int, log zerolog.Logger) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost, log: log}
}

func (s *Service) ListDoctors(ctx context.Context, departmentCode, specialty string) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx, departmentCode, specialty)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.repo.ListDepartments(ctx)
}

type CreateDoctorInput struct {
	FirstName      string
	LastName       string
	FullName       string // split into first/last when first is empty
	EmployeeCode   *string
	DepartmentCode string
	Specialty      *string
	Status         string
	Schedule       *string
	ImageURL       *string
}

func (s *Service) CreateDoctor(ctx context.Context, in CreateDoctorInput) (*Doctor, error) {
	first, last := in.FirstName, in.LastName
	if first == "" && in.FullName != "" {
		first, last = SplitName(in.FullName)
	}
	if first == "" {
		return nil, ErrMissingFields
	}

	var deptID *uuid.UUID
	if in.DepartmentCode != "" {
		dept, err := s.repo.GetDepartmentByCode(ctx, in.DepartmentCode)
		if err != nil {
			return nil, err
		}
		deptID = &dept.ID
	}

	status := in.Status
	if status == "" {
		status = "available"
	}

	d := &Doctor{
		ID:           uuid.New(),
		FirstName:    first,
		LastName:     last,
		EmployeeCode: in.EmployeeCode,
		DepartmentID: deptID,
		Specialty:    in.Specialty,
		Status:       status,
		Schedule:     in.Schedule,
		ImageURL:     in.ImageURL,
	}
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return nil, err
	}

	s.log.Info().Str("doctor_id", d.ID.String()).Str("name", d.FullName()).Msg("doctor created")
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, u DoctorUpdate) (*Doctor, error) {
	if u.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	return s.repo.UpdateDoctor(ctx, id, u)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDoctor(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context) ([]Staff, error) {
	return s.repo.ListStaff(ctx)
}

type CreateStaffInput struct {
	FirstName    string
	LastName     string
	FullName     string
	EmployeeCode *string
	Username     string
	Password     string
	Contact      *string
	Role         string
}

func (s *Service) CreateStaff(ctx context.Context, in CreateStaffInput) (*Staff, error) {
	first, last := in.FirstName, in.LastName
	if first == "" && in.FullName != "" {
		first, last = SplitName(in.FullName)
	}
	if first == "" || in.Username == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = "staff"
	}

	st := &Staff{
		ID:           uuid.New(),
		FirstName:    first,
		LastName:     last,
		EmployeeCode: in.EmployeeCode,
		Username:     in.Username,
		Contact:      in.Contact,
		Role:         role,
	}
	if err := s.repo.CreateStaff(ctx, st, string(hash)); err != nil {
		return nil, err
	}

	s.log.Info().Str("staff_id", st.ID.String()).Str("username", st.Username).Msg("staff created")
	return st, nil
}

type UpdateStaffInput struct {
	StaffUpdate
	FullName *string
	Password *string
}

func (s *Service) UpdateStaff(ctx context.Context, id uuid.UUID, in UpdateStaffInput) (*Staff, error) {
	u := in.StaffUpdate
	if in.FullName != nil {
		first, last := SplitName(*in.FullName)
		u.FirstName = &first
		u.LastName = &last
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hashed := string(hash)
		u.PasswordHash = &hashed
	}
	if u.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	return s.repo.UpdateStaff(ctx, id, u)
}

func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteStaff(ctx, id)
}
