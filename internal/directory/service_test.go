package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type fakeDirectoryRepo struct {
	departments map[string]*Department
	doctors     map[uuid.UUID]*Doctor
	staff       map[uuid.UUID]*Staff
	staffHashes map[uuid.UUID]string
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{
		departments: make(map[string]*Department),
		doctors:     make(map[uuid.UUID]*Doctor),
		staff:       make(map[uuid.UUID]*Staff),
		staffHashes: make(map[uuid.UUID]string),
	}
}

func (f *fakeDirectoryRepo) ListDepartments(ctx context.Context) ([]Department, error) {
	var out []Department
	for _, d := range f.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDirectoryRepo) GetDepartmentByCode(ctx context.Context, code string) (*Department, error) {
	d, ok := f.departments[code]
	if !ok {
		return nil, ErrDepartmentNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDirectoryRepo) ListDoctors(ctx context.Context, departmentCode, specialty string) ([]Doctor, error) {
	var out []Doctor
	for _, d := range f.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDirectoryRepo) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDirectoryRepo) CreateDoctor(ctx context.Context, d *Doctor) error {
	cp := *d
	f.doctors[d.ID] = &cp
	return nil
}

func (f *fakeDirectoryRepo) UpdateDoctor(ctx context.Context, id uuid.UUID, u DoctorUpdate) (*Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	if u.FirstName != nil {
		d.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		d.LastName = *u.LastName
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDirectoryRepo) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	delete(f.doctors, id)
	return nil
}

func (f *fakeDirectoryRepo) ListStaff(ctx context.Context) ([]Staff, error) {
	var out []Staff
	for _, s := range f.staff {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeDirectoryRepo) CreateStaff(ctx context.Context, s *Staff, passwordHash string) error {
	for _, existing := range f.staff {
		if existing.Username == s.Username {
			return ErrDuplicateUsername
		}
	}
	cp := *s
	f.staff[s.ID] = &cp
	f.staffHashes[s.ID] = passwordHash
	return nil
}

func (f *fakeDirectoryRepo) UpdateStaff(ctx context.Context, id uuid.UUID, u StaffUpdate) (*Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, ErrStaffNotFound
	}
	if u.FirstName != nil {
		s.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		s.LastName = *u.LastName
	}
	if u.PasswordHash != nil {
		f.staffHashes[id] = *u.PasswordHash
	}
	cp := *s
	return &cp, nil
}

func (f *fakeDirectoryRepo) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.staff[id]; !ok {
		return ErrStaffNotFound
	}
	delete(f.staff, id)
	return nil
}

func newTestDirectory() (*fakeDirectoryRepo, *Service) {
	repo := newFakeDirectoryRepo()
	return repo, NewService(repo, bcrypt.MinCost, zerolog.Nop())
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full        string
		first, last string
	}{
		{"Alice Chan", "Alice", "Chan"},
		{"Alice", "Alice", ""},
		{"Alice van der Berg", "Alice", "van der Berg"},
		{"  Alice Chan  ", "Alice", "Chan"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.full)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.full, first, last, tt.first, tt.last)
		}
	}
}

func TestCreateDoctor(t *testing.T) {
	repo, svc := newTestDirectory()
	ctx := context.Background()

	dept := &Department{ID: uuid.New(), Code: "dent", Name: "Dental"}
	repo.departments["dent"] = dept

	d, err := svc.CreateDoctor(ctx, CreateDoctorInput{
		FullName:       "Alice Chan",
		DepartmentCode: "dent",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.FirstName != "Alice" || d.LastName != "Chan" {
		t.Errorf("name = %q %q", d.FirstName, d.LastName)
	}
	if d.DepartmentID == nil || *d.DepartmentID != dept.ID {
		t.Errorf("department = %v, want %s", d.DepartmentID, dept.ID)
	}
	if d.Status != "available" {
		t.Errorf("default status = %q", d.Status)
	}

	if _, err := svc.CreateDoctor(ctx, CreateDoctorInput{}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("empty input err = %v, want ErrMissingFields", err)
	}
	if _, err := svc.CreateDoctor(ctx, CreateDoctorInput{FullName: "Bob Wu", DepartmentCode: "nope"}); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("unknown department err = %v, want ErrDepartmentNotFound", err)
	}
}

func TestUpdateDoctor_RequiresFields(t *testing.T) {
	_, svc := newTestDirectory()

	if _, err := svc.UpdateDoctor(context.Background(), uuid.New(), DoctorUpdate{}); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Fatalf("err = %v, want ErrNoFieldsToUpdate", err)
	}
}

func TestCreateStaff_HashesPassword(t *testing.T) {
	repo, svc := newTestDirectory()
	ctx := context.Background()

	st, err := svc.CreateStaff(ctx, CreateStaffInput{
		FullName: "Ann Ops",
		Username: "annops",
		Password: "topsecret",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.Role != "staff" {
		t.Errorf("default role = %q", st.Role)
	}

	hash := repo.staffHashes[st.ID]
	if hash == "topsecret" {
		t.Fatal("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("topsecret")) != nil {
		t.Fatal("stored hash does not match password")
	}

	if _, err := svc.CreateStaff(ctx, CreateStaffInput{FullName: "Other One", Username: "annops", Password: "pw"}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("duplicate username err = %v, want ErrDuplicateUsername", err)
	}
	if _, err := svc.CreateStaff(ctx, CreateStaffInput{Username: "nobody"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("missing fields err = %v, want ErrMissingFields", err)
	}
}

func TestUpdateStaff(t *testing.T) {
	repo, svc := newTestDirectory()
	ctx := context.Background()

	st, err := svc.CreateStaff(ctx, CreateStaffInput{FullName: "Ann Ops", Username: "annops", Password: "pw"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	full := "Anna Operations"
	updated, err := svc.UpdateStaff(ctx, st.ID, UpdateStaffInput{FullName: &full})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Anna" || updated.LastName != "Operations" {
		t.Errorf("name = %q %q", updated.FirstName, updated.LastName)
	}

	pw := "newsecret"
	if _, err := svc.UpdateStaff(ctx, st.ID, UpdateStaffInput{Password: &pw}); err != nil {
		t.Fatalf("password update: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.staffHashes[st.ID]), []byte("newsecret")) != nil {
		t.Fatal("updated hash does not match new password")
	}

	if _, err := svc.UpdateStaff(ctx, st.ID, UpdateStaffInput{}); !errors.Is(err, ErrNoFieldsToUpdate) {
		t.Fatalf("empty update err = %v, want ErrNoFieldsToUpdate", err)
	}
}
