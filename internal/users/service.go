package users

import (
	"context"
	"errors"

	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// CreateUser persists a new record and returns it with its internal id.
func (s *Service) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("nil user")
	}
	return s.repo.Create(ctx, u)
}

// UpdateUser overwrites the mutable fields of the record owned by externalID.
// A nil user with a nil error means nothing matched.
func (s *Service) UpdateUser(ctx context.Context, externalID string, upd models.UserUpdate) (*models.User, error) {
	return s.repo.UpdateByExternalID(ctx, externalID, upd)
}

// DeleteUser removes the record owned by externalID. Deleting a record that
// is already gone returns (nil, nil).
func (s *Service) DeleteUser(ctx context.Context, externalID string) (*models.User, error) {
	return s.repo.DeleteByExternalID(ctx, externalID)
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.repo.GetByExternalID(ctx, externalID)
}

// Ping checks the backing store when it supports health checks.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
