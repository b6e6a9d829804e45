package directory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID        uuid.UUID
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	EmployeeCode *string
	DepartmentID *uuid.UUID
	Specialty    *string
	Status       string
	Schedule     *string
	ImageURL     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (d *Doctor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

type Staff struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	EmployeeCode *string
	Username     string
	Contact      *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// SplitName breaks a display name into first/last on the first space,
// the way admin clients submit combined names.
func SplitName(full string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
