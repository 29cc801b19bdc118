package users

import (
	"context"
	"errors"
	"strings"

	"github.com/recipebox/recipebox/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 5

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("enter a valid email address")
	ErrPasswordTooShort = errors.New("password must be at least 5 characters")
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// NormalizeEmail lowercases the domain part of an address; the local part is
// preserved as entered.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Register creates a new account with a bcrypt-hashed password.
// Returns ErrDuplicateEmail when the address is already taken.
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = NormalizeEmail(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:       models.NewID("usr"),
		Email:    email,
		Name:     name,
		Password: string(hash),
	}
	return s.repo.Create(ctx, u)
}

// Authenticate verifies email+password credentials. Returns (nil, nil) when
// the credentials do not match any account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, nil
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes name and/or password for an existing account.
// Nil fields are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, id string, name, password *string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if name != nil {
		u.Name = *name
	}
	if password != nil {
		if len(*password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hash)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
