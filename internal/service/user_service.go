package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/inventory-crud-api/internal/domain"
	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
)

type CreateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

func (in CreateUserInput) validate() error {
	for _, v := range []*string{in.Username, in.Email, in.Password} {
		if v == nil || strings.TrimSpace(*v) == "" {
			return ErrMissingRequiredFields
		}
	}
	return nil
}

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	cache    *ListCache
}

func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher, cache *ListCache) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher, cache: cache}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	start := time.Now()
	outcome := "success"
	defer func() { recordUserOperation(ctx, "list", outcome, start) }()

	users, err := cachedList(ctx, s.cache, listNamespaceUsers, s.userRepo.List)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	start := time.Now()
	outcome := "success"
	defer func() { recordUserOperation(ctx, "get", outcome, start) }()

	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		outcome = userOutcome(err)
		return nil, err
	}
	return u, nil
}

// Create stores the user with an argon2id hash in place of the plaintext
// password. The returned user has PasswordHash cleared.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	start := time.Now()
	outcome := "success"
	defer func() { recordUserOperation(ctx, "create", outcome, start) }()

	if err := input.validate(); err != nil {
		outcome = "bad_request"
		return nil, err
	}
	hash, err := s.hasher.Hash(*input.Password)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Username: *input.Username, Email: *input.Email, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, u); err != nil {
		outcome = "error"
		return nil, err
	}
	u.PasswordHash = ""
	s.invalidate(ctx)
	return u, nil
}

func (s *UserService) DeleteByID(ctx context.Context, id uint) error {
	start := time.Now()
	outcome := "success"
	defer func() { recordUserOperation(ctx, "delete", outcome, start) }()

	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		outcome = userOutcome(err)
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *UserService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, listNamespaceUsers); err != nil {
		slog.WarnContext(ctx, "user list cache invalidation failed", "error", err)
	}
}

func userOutcome(err error) string {
	if errors.Is(err, repository.ErrUserNotFound) {
		return "not_found"
	}
	return "error"
}

func recordUserOperation(ctx context.Context, operation, outcome string, start time.Time) {
	observability.RecordUserOperation(ctx, operation, outcome)
	observability.RecordUserOperationDuration(ctx, operation, outcome, time.Since(start))
}
