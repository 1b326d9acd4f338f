package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"urban-match/internal/domain"
	"urban-match/internal/repository"
)

const (
	// DefaultListLimit is used when a caller does not ask for a page size.
	DefaultListLimit = 10
	// MaxListLimit caps the page size of List.
	MaxListLimit = 100
)

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, skip, limit int) ([]domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Gender = strings.TrimSpace(user.Gender)
	user.Email = strings.TrimSpace(user.Email)
	user.City = strings.TrimSpace(user.City)
	user.Interests = cleanInterests(user.Interests)

	if err := validateUser(user); err != nil {
		return nil, err
	}

	user.ID = 0
	if _, err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(id, err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	if skip < 0 {
		return nil, invalid("skip", "must be non-negative")
	}
	if limit < 0 {
		return nil, invalid("limit", "must be non-negative")
	}
	if limit == 0 {
		return []domain.User{}, nil
	}
	limit = min(limit, MaxListLimit)
	return s.users.List(ctx, skip, limit)
}

func (s *userService) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	patch = trimPatch(patch)
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, id)
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, userLookupError(id, err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return userLookupError(id, err)
	}
	return nil
}

func userLookupError(id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	return err
}

func validateUser(u domain.User) error {
	switch {
	case u.Name == "":
		return invalid("name", "is required")
	case u.Age < 0:
		return invalid("age", "must be non-negative")
	case u.Gender == "":
		return invalid("gender", "is required")
	case u.Email == "":
		return invalid("email", "is required")
	case u.City == "":
		return invalid("city", "is required")
	}
	return nil
}

func validatePatch(p domain.UserPatch) error {
	switch {
	case p.Name != nil && *p.Name == "":
		return invalid("name", "must not be blank")
	case p.Age != nil && *p.Age < 0:
		return invalid("age", "must be non-negative")
	case p.Gender != nil && *p.Gender == "":
		return invalid("gender", "must not be blank")
	case p.Email != nil && *p.Email == "":
		return invalid("email", "must not be blank")
	case p.City != nil && *p.City == "":
		return invalid("city", "must not be blank")
	}
	return nil
}

func trimPatch(p domain.UserPatch) domain.UserPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	p.Name = trim(p.Name)
	p.Gender = trim(p.Gender)
	p.Email = trim(p.Email)
	p.City = trim(p.City)
	if p.Interests != nil {
		p.Interests = cleanInterests(p.Interests)
	}
	return p
}

// cleanInterests trims entries and drops blanks and case-insensitive duplicates.
func cleanInterests(interests []string) []string {
	trimmed := make([]string, 0, len(interests))
	for _, interest := range interests {
		trimmed = append(trimmed, strings.TrimSpace(interest))
	}
	return domain.UnionInterests(nil, trimmed)
}
