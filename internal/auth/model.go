package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	NationalID  *string
	BirthDate   *string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type StaffAccount struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Username  string
	Role      string
	CreatedAt time.Time
}

func (s *StaffAccount) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
