package usersync

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/gogotex/backend/user-sync/internal/clerk"
	"github.com/gogotex/gogotex/backend/user-sync/internal/events"
	"github.com/gogotex/gogotex/backend/user-sync/internal/models"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
)

// Rejections. Each maps to a 400 at the HTTP boundary and guarantees that no
// store call was made.
var (
	ErrMissingName    = errors.New("usersync: first and last name are required")
	ErrMissingUserID  = errors.New("usersync: user id is required")
	ErrUnhandledEvent = errors.New("usersync: unhandled event type")
)

// Store is the persistence surface the syncer writes through.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, externalID string, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, externalID string) (*models.User, error)
}

// Outcome is what a delivery did to the store.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeDeleted Outcome = "deleted"
	// OutcomeNoop marks an update or delete that matched no record.
	OutcomeNoop    Outcome = "noop"
	OutcomeIgnored Outcome = "ignored"
)

// Result of applying one event.
type Result struct {
	Outcome Outcome
	User    *models.User
}

// Syncer applies provider events to the local user store.
type Syncer struct {
	store     Store
	metadata  clerk.MetadataUpdater
	publisher events.Publisher
}

// NewSyncer wires a syncer. A nil publisher disables event fan-out.
func NewSyncer(store Store, metadata clerk.MetadataUpdater, publisher events.Publisher) *Syncer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Syncer{store: store, metadata: metadata, publisher: publisher}
}

// Apply dispatches evt on its type. Rejections are returned as the sentinel
// errors above; any other error comes from a downstream call.
func (s *Syncer) Apply(ctx context.Context, evt *clerk.Event) (Result, error) {
	switch p := evt.Payload.(type) {
	case clerk.SessionEvent:
		return Result{Outcome: OutcomeIgnored}, nil
	case clerk.UserCreated:
		return s.created(ctx, p)
	case clerk.UserUpdated:
		return s.updated(ctx, p)
	case clerk.UserDeleted:
		return s.deleted(ctx, p)
	default:
		return Result{}, ErrUnhandledEvent
	}
}

func (s *Syncer) created(ctx context.Context, p clerk.UserCreated) (Result, error) {
	if !hasNames(p.UserData) {
		return Result{}, ErrMissingName
	}
	u, err := s.store.CreateUser(ctx, createdRecord(p.UserData))
	if err != nil {
		return Result{}, fmt.Errorf("create user %s: %w", p.ID, err)
	}
	if u != nil && s.metadata != nil {
		md := clerk.Metadata{Public: map[string]any{"userId": u.ID}}
		if err := s.metadata.UpdateUserMetadata(ctx, p.ID, md); err != nil {
			return Result{}, fmt.Errorf("store internal id on %s: %w", p.ID, err)
		}
	}
	s.publish(ctx, events.UserCreated, p.ID, u)
	return Result{Outcome: OutcomeCreated, User: u}, nil
}

func (s *Syncer) updated(ctx context.Context, p clerk.UserUpdated) (Result, error) {
	u, err := s.store.UpdateUser(ctx, p.ID, updatedFields(p.UserData))
	if err != nil {
		return Result{}, fmt.Errorf("update user %s: %w", p.ID, err)
	}
	if u == nil {
		logger.WithContext(ctx).Warnf("user.updated for %q matched no local record", p.ID)
		return Result{Outcome: OutcomeNoop}, nil
	}
	s.publish(ctx, events.UserUpdated, p.ID, u)
	return Result{Outcome: OutcomeUpdated, User: u}, nil
}

func (s *Syncer) deleted(ctx context.Context, p clerk.UserDeleted) (Result, error) {
	id := valueOr(p.ID, "")
	if id == "" {
		return Result{}, ErrMissingUserID
	}
	u, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("delete user %s: %w", id, err)
	}
	if u == nil {
		return Result{Outcome: OutcomeNoop}, nil
	}
	s.publish(ctx, events.UserDeleted, id, u)
	return Result{Outcome: OutcomeDeleted, User: u}, nil
}

func (s *Syncer) publish(ctx context.Context, t events.EventType, externalID string, u *models.User) {
	evt := events.NewUserEvent(t, externalID, u)
	evt.DeliveryID = DeliveryIDFrom(ctx)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.WithContext(ctx).Warnf("publish %s for %s: %v", t, externalID, err)
	}
}

type deliveryIDKey struct{}

// ContextWithDeliveryID records the webhook message id for published events.
func ContextWithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryIDKey{}, id)
}

// DeliveryIDFrom returns the webhook message id stored in ctx, if any.
func DeliveryIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(deliveryIDKey{}).(string)
	return id
}
