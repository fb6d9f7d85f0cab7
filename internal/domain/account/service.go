package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicindia/api/internal/platform/auth"
)

// ErrInvalidCredentials covers both unknown email and wrong password so a
// caller cannot probe which emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 8

type Service struct {
	users  UserRepository
	hasher auth.Hasher
	tokens *auth.TokenService
}

func NewService(users UserRepository, hasher auth.Hasher, tokens *auth.TokenService) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}
	if in.Role == "" {
		in.Role = auth.RolePatient
	}
	if !auth.ValidRole(in.Role) {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.respond(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(in.Email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return s.respond(u)
}

func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// Refresh issues a fresh token for an already-verified identity. The user is
// re-read so a deleted account stops refreshing even before its token expires.
func (s *Service) Refresh(ctx context.Context, ident auth.Identity) (*AuthResponse, error) {
	u, err := s.users.GetByID(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	return s.respond(u)
}

// UpdateProfile changes the caller's name and phone. Email and role are
// immutable through this path.
func (s *Service) UpdateProfile(ctx context.Context, ident auth.Identity, in UpdateProfileInput) (*User, error) {
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required")
	}

	u, err := s.users.GetByID(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Phone = in.Phone
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword re-verifies the current password before storing a new
// hash. A wrong current password gets the same collapsed error as login.
func (s *Service) ChangePassword(ctx context.Context, ident auth.Identity, in ChangePasswordInput) error {
	if len(in.NewPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	u, err := s.users.GetByID(ctx, ident.ID)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(in.CurrentPassword, u.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return s.users.Update(ctx, u)
}

func (s *Service) respond(u *User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: u}, nil
}
