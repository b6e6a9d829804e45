package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type memAuthRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*Patient
	hashes   map[uuid.UUID]string
	staff    map[string]*StaffAccount
	staffPw  map[string]string
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{
		patients: make(map[uuid.UUID]*Patient),
		hashes:   make(map[uuid.UUID]string),
		staff:    make(map[string]*StaffAccount),
		staffPw:  make(map[string]string),
	}
}

func (m *memAuthRepo) CreatePatient(ctx context.Context, p *Patient, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.patients[p.ID] = &cp
	m.hashes[p.ID] = passwordHash
	return nil
}

func (m *memAuthRepo) FindPatientByIdentifier(ctx context.Context, identifier string) (*Patient, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.patients {
		if p.Phone == identifier || (p.NationalID != nil && *p.NationalID == identifier) {
			cp := *p
			return &cp, m.hashes[id], nil
		}
	}
	return nil, "", ErrUserNotFound
}

func (m *memAuthRepo) PatientExists(ctx context.Context, email, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.Email == email || p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAuthRepo) StampPatientLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return ErrUserNotFound
	}
	stamp := at
	p.LastLoginAt = &stamp
	return nil
}

func (m *memAuthRepo) FindStaffByUsername(ctx context.Context, username string) (*StaffAccount, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.staff[username]
	if !ok {
		return nil, "", ErrUserNotFound
	}
	cp := *st
	return &cp, m.staffPw[username], nil
}

func newTestAuth(t *testing.T) (*memAuthRepo, *Service) {
	t.Helper()
	repo := newMemAuthRepo()
	svc := NewService(repo, "test-secret", time.Hour, bcrypt.MinCost, zerolog.Nop())
	return repo, svc
}

func TestRegisterAndLoginPatient(t *testing.T) {
	repo, svc := newTestAuth(t)
	ctx := context.Background()

	nid := "1234567890123"
	p, err := svc.RegisterPatient(ctx, RegisterInput{
		FirstName:  "Bob",
		LastName:   "Lee",
		Email:      "bob@example.com",
		Phone:      "0812345678",
		NationalID: &nid,
		Password:   "changeme123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("patient id not assigned")
	}

	// Login by phone.
	got, token, err := svc.LoginPatient(ctx, "0812345678", "changeme123")
	if err != nil {
		t.Fatalf("login by phone: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("login returned patient %s, want %s", got.ID, p.ID)
	}
	if got.LastLoginAt == nil {
		t.Error("last login not stamped")
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != p.ID.String() {
		t.Errorf("token subject = %q, want %s", claims.Subject, p.ID)
	}
	if claims.Role != "patient" {
		t.Errorf("token role = %q, want patient", claims.Role)
	}

	// Login by national id.
	if _, _, err := svc.LoginPatient(ctx, nid, "changeme123"); err != nil {
		t.Fatalf("login by national id: %v", err)
	}

	// The hash stored is never the plain password.
	if repo.hashes[p.ID] == "changeme123" {
		t.Fatal("password stored in plain text")
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	_, svc := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.RegisterPatient(ctx, RegisterInput{Email: "a@b.c"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}

	in := RegisterInput{FirstName: "Bob", Email: "bob@example.com", Phone: "0812345678", Password: "pw"}
	if _, err := svc.RegisterPatient(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.RegisterPatient(ctx, in); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateUser", err)
	}
}

func TestLoginPatient_BadCredentials(t *testing.T) {
	_, svc := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.RegisterPatient(ctx, RegisterInput{
		Email: "bob@example.com", Phone: "0812345678", Password: "changeme123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.LoginPatient(ctx, "0812345678", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.LoginPatient(ctx, "0000000000", "changeme123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown identifier err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.LoginPatient(ctx, "", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("empty input err = %v, want ErrMissingFields", err)
	}
}

func TestLoginStaff(t *testing.T) {
	repo, svc := newTestAuth(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("adminpw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &StaffAccount{ID: uuid.New(), FirstName: "Ann", LastName: "Ops", Username: "admin", Role: "admin"}
	repo.staff["admin"] = admin
	repo.staffPw["admin"] = string(hash)

	st, token, err := svc.LoginStaff(ctx, "admin", "adminpw")
	if err != nil {
		t.Fatalf("staff login: %v", err)
	}
	if st.ID != admin.ID {
		t.Errorf("staff = %s, want %s", st.ID, admin.ID)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}

	if _, _, err := svc.LoginStaff(ctx, "admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestParseToken_RejectsForgedAndExpired(t *testing.T) {
	_, svc := newTestAuth(t)

	if _, err := svc.ParseToken("not.a.token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("garbage token err = %v, want ErrInvalidCredentials", err)
	}

	// Token signed with a different secret.
	other := NewService(newMemAuthRepo(), "other-secret", time.Hour, bcrypt.MinCost, zerolog.Nop())
	forged, err := other.issueToken(uuid.New(), "patient")
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}
	if _, err := svc.ParseToken(forged); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("forged token err = %v, want ErrInvalidCredentials", err)
	}

	// Expired token.
	expiring := NewService(newMemAuthRepo(), "test-secret", -time.Hour, bcrypt.MinCost, zerolog.Nop())
	expired, err := expiring.issueToken(uuid.New(), "patient")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, err := svc.ParseToken(expired); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired token err = %v, want ErrInvalidCredentials", err)
	}
}
