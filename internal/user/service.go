package user

import (
	"context"
	"strings"

	"github.com/alexedwards/argon2id"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
)

type storeProvider interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateRequest is the payload for creating a user.
type CreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin manager viewer"`
	Password string `json:"password" validate:"required,min=8"`
	IsActive bool   `json:"isActive"`
}

// UpdateRequest is the payload for updating a user. An empty password keeps
// the current hash.
type UpdateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin manager viewer"`
	Password string `json:"password" validate:"omitempty,min=8"`
	IsActive bool   `json:"isActive"`
}

// Service manages staff accounts. Passwords are stored as argon2id hashes;
// there is no session or token handling here.
type Service struct {
	store    storeProvider
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(store storeProvider, validate *validator.Validate) *Service {
	return &Service{store: store, validate: validate}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.store.Get(ctx, id)
}

// Create validates, hashes the password and stores the account.
func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	if err := s.validateStruct(req); err != nil {
		return User{}, err
	}
	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return User{}, common.Internal(err)
	}
	return s.store.Create(ctx, User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         req.Role,
		PasswordHash: hash,
		IsActive:     req.IsActive,
	})
}

// Update overwrites the account, rehashing only when a new password is sent.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (User, error) {
	if err := s.validateStruct(req); err != nil {
		return User{}, err
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	hash := existing.PasswordHash
	if req.Password != "" {
		hash, err = argon2id.CreateHash(req.Password, argon2id.DefaultParams)
		if err != nil {
			return User{}, common.Internal(err)
		}
	}
	return s.store.Update(ctx, User{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         req.Role,
		PasswordHash: hash,
		IsActive:     req.IsActive,
	})
}

// Delete removes the account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) validateStruct(v any) error {
	if s.validate == nil {
		return nil
	}
	if err := s.validate.Struct(v); err != nil {
		return common.Validation("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}
