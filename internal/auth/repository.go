package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("email or phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing required fields")
)

type Repository interface {
	CreatePatient(ctx context.Context, p *Patient, passwordHash string) error
	// FindPatientByIdentifier matches phone or national id.
	FindPatientByIdentifier(ctx context.Context, identifier string) (*Patient, string, error)
	PatientExists(ctx context.Context, email, phone string) (bool, error)
	StampPatientLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	FindStaffByUsername(ctx context.Context, username string) (*StaffAccount, string, error)
}
