package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Service verifies credentials against bcrypt hashes and issues signed
// login tokens. Passwords are never stored or compared in plain text.
type Service struct {
	repo       Repository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	log        zerolog.Logger
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration, bcryptCost int, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	NationalID *string
	BirthDate  *string // YYYY-MM-DD
	Password   string
}

func (s *Service) RegisterPatient(ctx context.Context, in RegisterInput) (*Patient, error) {
	if in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.PatientExists(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("check existing patient: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Patient{
		ID:         uuid.New(),
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		NationalID: in.NationalID,
		BirthDate:  in.BirthDate,
	}
	if err := s.repo.CreatePatient(ctx, p, string(hash)); err != nil {
		return nil, err
	}

	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient registered")
	return p, nil
}

// LoginPatient authenticates by phone or national id, stamps
// last_login_at, and returns a signed token.
func (s *Service) LoginPatient(ctx context.Context, identifier, password string) (*Patient, string, error) {
	if identifier == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	p, hash, err := s.repo.FindPatientByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find patient: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.repo.StampPatientLogin(ctx, p.ID, now); err != nil {
		return nil, "", err
	}
	p.LastLoginAt = &now

	token, err := s.issueToken(p.ID, "patient")
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient logged in")
	return p, token, nil
}

func (s *Service) LoginStaff(ctx context.Context, username, password string) (*StaffAccount, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	st, hash, err := s.repo.FindStaffByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find staff: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(st.ID, st.Role)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("staff_id", st.ID.String()).Str("username", st.Username).Msg("staff logged in")
	return st, token, nil
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) issueToken(subject uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a login token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}
