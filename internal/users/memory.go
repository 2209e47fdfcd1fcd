package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryUserRepository keeps users in process memory. It is used when no
// MongoDB is configured and by tests; it enforces the same unique keys.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	schema *Schema
	byExt  map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{schema: UserSchema(), byExt: make(map[string]*models.User)}
}

func (m *MemoryUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	rec := *u
	m.schema.Apply(&rec)
	if err := m.schema.Validate(&rec); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(&rec, ""); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec.ID = primitive.NewObjectID().Hex()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.byExt[rec.ExternalID] = &rec
	out := rec
	return &out, nil
}

func (m *MemoryUserRepository) UpdateByExternalID(ctx context.Context, externalID string, upd models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byExt[externalID]
	if !ok {
		return nil, nil
	}
	next := *cur
	next.FirstName = upd.FirstName
	next.LastName = upd.LastName
	next.Username = upd.Username
	next.PhotoURL = upd.PhotoURL
	if err := m.checkUnique(&next, externalID); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	m.byExt[externalID] = &next
	out := next
	return &out, nil
}

func (m *MemoryUserRepository) DeleteByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byExt[externalID]
	if !ok {
		return nil, nil
	}
	delete(m.byExt, externalID)
	return cur, nil
}

func (m *MemoryUserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byExt[externalID]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

// Ping always succeeds.
func (m *MemoryUserRepository) Ping(ctx context.Context) error { return nil }

// checkUnique must be called with mu held. self names the record being
// replaced, if any.
func (m *MemoryUserRepository) checkUnique(u *models.User, self string) error {
	for ext, other := range m.byExt {
		if ext == self {
			continue
		}
		switch {
		case other.ExternalID == u.ExternalID:
			return fmt.Errorf("%w: externalId %q", ErrDuplicate, u.ExternalID)
		case other.Email == u.Email:
			return fmt.Errorf("%w: email %q", ErrDuplicate, u.Email)
		case other.Username == u.Username:
			return fmt.Errorf("%w: username %q", ErrDuplicate, u.Username)
		}
	}
	return nil
}
